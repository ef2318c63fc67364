package environment

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Variable is the process environment variable read by FromEnv.
const Variable = "APP_ENV"

// ErrUnknownEnvironment is returned by Parse for unrecognised names.
var ErrUnknownEnvironment = errors.New("environment: unknown environment")

// Environment represents the application stage.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps s to an Environment. Matching ignores case and surrounding
// spaces.
func Parse(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Development), "dev":
		return Development, nil
	case string(Staging), "stage":
		return Staging, nil
	case string(Production), "prod":
		return Production, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
}

// FromEnv reads Variable. Missing or unknown values yield Development.
func FromEnv() Environment {
	env, err := Parse(os.Getenv(Variable))
	if err != nil {
		return Development
	}
	return env
}

func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether e is Production. The method value fits
// envmanager.Builder.Production as a predicate.
func (e Environment) IsProduction() bool {
	return e == Production
}

func (e Environment) IsStaging() bool {
	return e == Staging
}

func (e Environment) IsDevelopment() bool {
	return e == Development
}
