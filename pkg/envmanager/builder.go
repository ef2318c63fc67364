package envmanager

import (
	"errors"
	"maps"

	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
)

// AssociateFunc returns opaque data attached to one environment of a service,
// or nil to attach nothing.
type AssociateFunc func(service, environment string) []byte

type environmentURL struct {
	environment string
	url         string
}

// Builder accumulates entries and validates them into a Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	order         []string
	pairs         map[string][]environmentURL
	productionMap map[string]string
	production    func() bool
	store         kvstore.Store
	associate     []AssociateFunc
	opts          []Option
	err           error
}

// NewBuilder creates an empty builder. opts are handed to the Registry and
// its components.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		pairs:         make(map[string][]environmentURL),
		productionMap: make(map[string]string),
		opts:          opts,
	}
}

// Add appends pairs to the environments accumulated for name.
// It panics when name is empty or no pair is given.
func (b *Builder) Add(name string, pairs ...entry.Pair) *Builder {
	if name == "" {
		panic("envmanager: Add requires a non-empty api name")
	}
	if len(pairs) == 0 {
		panic("envmanager: Add requires at least one environment pair for " + name)
	}

	for _, p := range pairs {
		raw := ""
		if p.BaseURL != nil {
			raw = p.BaseURL.String()
		}
		b.add(name, p.Environment, raw)
	}
	return b
}

// AddURL appends one environment given as a raw URL string. The URL is only
// validated by Build.
func (b *Builder) AddURL(name, environment, rawURL string) *Builder {
	if name == "" {
		panic("envmanager: AddURL requires a non-empty api name")
	}
	b.add(name, environment, rawURL)
	return b
}

func (b *Builder) add(name, environment, rawURL string) {
	if _, seen := b.pairs[name]; !seen {
		b.order = append(b.order, name)
	}
	b.pairs[name] = append(b.pairs[name], environmentURL{environment: environment, url: rawURL})
}

// ProductionMap merges m into the service to production environment map.
// Later calls overwrite colliding services.
func (b *Builder) ProductionMap(m map[string]string) *Builder {
	maps.Copy(b.productionMap, m)
	return b
}

// Production enables production mode. Without a predicate production mode is
// always on; otherwise pred is evaluated when Build runs.
func (b *Builder) Production(pred ...func() bool) *Builder {
	if len(pred) == 0 || pred[0] == nil {
		b.production = func() bool { return true }
		return b
	}
	b.production = pred[0]
	return b
}

// SetStore overrides the default durable store.
func (b *Builder) SetStore(store kvstore.Store) *Builder {
	b.store = store
	return b
}

// InMemory keeps selections and custom entries in a process-local store.
func (b *Builder) InMemory() *Builder {
	return b.SetStore(kvstore.NewMemoryStore())
}

// AssociateData registers fn to attach opaque data to every built environment.
// Functions run in registration order after validation; a later non-nil
// result replaces an earlier one.
func (b *Builder) AssociateData(fn AssociateFunc) *Builder {
	if fn != nil {
		b.associate = append(b.associate, fn)
	}
	return b
}

// Err returns the first ingestion error recorded by the builder.
func (b *Builder) Err() error {
	return b.err
}

// Build validates the accumulated configuration and assembles a Registry.
// Nothing is built when any check fails. Checks run in this order:
//
//   - an ingestion error recorded by AddTabular, AddTabularText or AddYAML
//     is returned as is
//   - in production mode every service needs an entry in the production map
//     (NoProductionEnvironmentSet) naming exactly one of its environments
//     (EnvironmentCouldNotBeFound); other environments are dropped
//   - every environment needs a name and an absolute base URL
//     (UnableToConstructBaseURL)
//   - the default FileStore must open when no store was set
//     (ErrStoreUnavailable)
//
// A registry built in production mode ignores custom entries.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	lists := make(map[string][]environmentURL, len(b.pairs))
	for _, name := range b.order {
		lists[name] = b.pairs[name]
	}

	production := b.production != nil && b.production()
	if production {
		for _, name := range b.order {
			target, ok := b.productionMap[name]
			if !ok {
				return nil, &BuildError{Kind: NoProductionEnvironmentSet, Service: name}
			}

			var matches []environmentURL
			for _, p := range lists[name] {
				if p.environment == target {
					matches = append(matches, p)
				}
			}
			if len(matches) != 1 {
				return nil, &BuildError{Kind: EnvironmentCouldNotBeFound, Service: name, Environment: target}
			}
			lists[name] = matches
		}
	}

	entries := make([]entry.Entry, 0, len(b.order))
	for _, name := range b.order {
		pairs := make([]entry.Pair, 0, len(lists[name]))
		for _, raw := range lists[name] {
			p, err := entry.NewPair(raw.environment, raw.url)
			if err != nil {
				return nil, &BuildError{
					Kind:        UnableToConstructBaseURL,
					Service:     name,
					Environment: raw.environment,
					URL:         raw.url,
					Err:         err,
				}
			}
			pairs = append(pairs, p)
		}
		entries = append(entries, b.associated(entry.New(name, pairs...)))
	}

	o := newOptions(b.opts...)
	store := b.store
	if store == nil {
		fs, err := kvstore.NewFileStore(o.appID, kvstore.WithDir(o.storeDir))
		if err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		store = fs
	}

	return newRegistry(entries, store, production, o), nil
}

func (b *Builder) associated(e entry.Entry) entry.Entry {
	for _, fn := range b.associate {
		for _, environment := range e.EnvironmentNames() {
			if data := fn(e.Name(), environment); data != nil {
				e = e.WithAssociatedData(environment, data)
			}
		}
	}
	return e
}

// fail records err unless an earlier error is already recorded.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
