package envmanager

import (
	"errors"
	"fmt"
)

// Build errors. Each BuildErrorKind matches one of these with errors.Is.
var (
	ErrNoProductionEnvironmentSet = errors.New("envmanager: no production environment set")
	ErrEnvironmentNotFound        = errors.New("envmanager: environment could not be found")
	ErrInvalidBaseURL             = errors.New("envmanager: unable to construct base url")
	ErrCSVParsing                 = errors.New("envmanager: tabular data parsing failed")
)

// Ingestion errors, joined with ErrCSVParsing or reported on their own.
var (
	ErrMissingColumn = errors.New("envmanager: header is missing a required column")
	ErrEmptyTabular  = errors.New("envmanager: tabular data is empty")
	ErrInvalidYAML   = errors.New("envmanager: invalid yaml definitions")
)

// Persistence errors wrap the underlying store failure.
var (
	ErrStoreUnavailable   = errors.New("envmanager: key/value store unavailable")
	ErrPersistSelection   = errors.New("envmanager: failed to persist selection")
	ErrPersistCustomEntry = errors.New("envmanager: failed to persist custom entry")
	ErrReadCustomEntries  = errors.New("envmanager: failed to read custom entries")
)

var (
	ErrEmptyName      = errors.New("envmanager: empty api name")
	ErrNoEnvironments = errors.New("envmanager: at least one environment is required")
	ErrUnknownAPI     = errors.New("envmanager: unknown api")

	// ErrProductionMode is returned when custom entries are added to a
	// registry built in production mode.
	ErrProductionMode = errors.New("envmanager: custom entries are disabled in production mode")
)

// BuildErrorKind classifies a BuildError.
type BuildErrorKind int

const (
	NoProductionEnvironmentSet BuildErrorKind = iota + 1
	EnvironmentCouldNotBeFound
	UnableToConstructBaseURL
	CSVParsingError
)

func (k BuildErrorKind) String() string {
	switch k {
	case NoProductionEnvironmentSet:
		return "no_production_environment_set"
	case EnvironmentCouldNotBeFound:
		return "environment_could_not_be_found"
	case UnableToConstructBaseURL:
		return "unable_to_construct_base_url"
	case CSVParsingError:
		return "csv_parsing_error"
	default:
		return "unknown"
	}
}

func (k BuildErrorKind) sentinel() error {
	switch k {
	case NoProductionEnvironmentSet:
		return ErrNoProductionEnvironmentSet
	case EnvironmentCouldNotBeFound:
		return ErrEnvironmentNotFound
	case UnableToConstructBaseURL:
		return ErrInvalidBaseURL
	case CSVParsingError:
		return ErrCSVParsing
	default:
		return nil
	}
}

// BuildError is returned by Builder.Build and the tabular ingestion methods.
// Service, Environment and URL carry the offending configuration when the
// kind has one.
type BuildError struct {
	Kind        BuildErrorKind
	Service     string
	Environment string
	URL         string
	Err         error
}

func (e *BuildError) Error() string {
	switch e.Kind {
	case NoProductionEnvironmentSet:
		return fmt.Sprintf("no production environment set for service '%s'", e.Service)
	case EnvironmentCouldNotBeFound:
		return fmt.Sprintf("environment '%s' could not be found for service '%s'", e.Environment, e.Service)
	case UnableToConstructBaseURL:
		return fmt.Sprintf("unable to construct base url '%s' for service '%s': %v", e.URL, e.Service, e.Err)
	case CSVParsingError:
		return fmt.Sprintf("tabular data parsing failed: %v", e.Err)
	default:
		return "build failed"
	}
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the kind, so errors.Is(err, ErrCSVParsing)
// works without unwrapping to *BuildError first.
func (e *BuildError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// IsBuildError reports whether err is a *BuildError of the given kind.
func IsBuildError(err error, kind BuildErrorKind) bool {
	var e *BuildError
	return errors.As(err, &e) && e.Kind == kind
}

// AsBuildError extracts the *BuildError wrapped in err.
func AsBuildError(err error) (*BuildError, bool) {
	var e *BuildError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
