package envmanager

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
	"github.com/dmitrymomot/envmanager/pkg/logger"
)

// Registry combines the built-in entries produced by a Builder with the
// user-defined CustomEntries and resolves URLs against the current selection.
// Lookups of unknown APIs report false instead of failing.
//
// A registry built in production mode exposes only the built-in production
// environments: persisted custom entries are ignored and cannot be added.
type Registry struct {
	mu         sync.RWMutex
	entries    []entry.Entry
	index      map[string]int
	store      kvstore.Store
	selection  *SelectionStore
	custom     *CustomEntries
	production bool
	logger     *slog.Logger
}

func newRegistry(entries []entry.Entry, store kvstore.Store, production bool, o *options) *Registry {
	r := &Registry{
		index:      make(map[string]int, len(entries)),
		store:      store,
		selection:  newSelectionStore(store, o),
		custom:     newCustomEntries(store, o),
		production: production,
		logger:     o.logger,
	}
	for _, e := range entries {
		r.addEntry(e)
	}
	return r
}

// addEntry appends e, merging it into a built-in entry of the same name.
func (r *Registry) addEntry(e entry.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[e.Name()]; ok {
		r.entries[i] = entry.Merge(r.entries[i], e)
		return
	}
	r.index[e.Name()] = len(r.entries)
	r.entries = append(r.entries, e)
}

func (r *Registry) builtins() []entry.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// APINames returns built-in API names in insertion order followed by the
// names of custom-only entries sorted alphabetically.
func (r *Registry) APINames() []string {
	entries := r.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

// Entries returns every entry, built-in ones merged with their custom
// environments, in APINames order.
func (r *Registry) Entries() []entry.Entry {
	if r.production {
		return r.builtins()
	}
	return entry.MergeAll(r.builtins(), r.custom.All())
}

// Production reports whether the registry was built in production mode.
func (r *Registry) Production() bool {
	return r.production
}

// Entry returns the merged entry of apiName. Built-in environments come
// first, so they win name conflicts.
func (r *Registry) Entry(apiName string) (entry.Entry, bool) {
	r.mu.RLock()
	i, builtin := r.index[apiName]
	var e entry.Entry
	if builtin {
		e = r.entries[i]
	}
	r.mu.RUnlock()

	if r.production {
		return e, builtin
	}

	custom, hasCustom := r.custom.Get(apiName)
	switch {
	case builtin && hasCustom:
		return entry.Merge(e, custom), true
	case builtin:
		return e, true
	case hasCustom:
		return custom, true
	default:
		return entry.Entry{}, false
	}
}

// EntryAt returns the entry at position i of Entries.
func (r *Registry) EntryAt(i int) (entry.Entry, bool) {
	entries := r.Entries()
	if i < 0 || i >= len(entries) {
		return entry.Entry{}, false
	}
	return entries[i], true
}

// CurrentEnvironment returns the selected environment of apiName.
func (r *Registry) CurrentEnvironment(apiName string) (string, bool) {
	e, ok := r.Entry(apiName)
	if !ok {
		return "", false
	}
	return r.selection.Current(e), true
}

// BaseURL returns the base URL of the selected environment of apiName.
func (r *Registry) BaseURL(apiName string) (*url.URL, bool) {
	e, ok := r.Entry(apiName)
	if !ok {
		return nil, false
	}
	return r.selection.BaseURL(e), true
}

// URLFor joins path onto the base URL of the selected environment of apiName.
func (r *Registry) URLFor(apiName, path string) (*url.URL, bool) {
	e, ok := r.Entry(apiName)
	if !ok {
		return nil, false
	}
	return r.selection.BuildURL(e, path), true
}

// Select makes environment current for apiName. Unknown APIs and unknown
// environments are ignored.
func (r *Registry) Select(apiName, environment string) error {
	e, ok := r.Entry(apiName)
	if !ok {
		r.logger.LogAttrs(context.Background(), slog.LevelDebug, "ignoring selection for unknown api",
			logger.Service(apiName),
			logger.Environment(environment),
		)
		return nil
	}
	return r.selection.Select(e, environment)
}

// SelectIndex selects the environment at position i of apiName.
func (r *Registry) SelectIndex(apiName string, i int) error {
	e, ok := r.Entry(apiName)
	if !ok {
		return nil
	}
	return r.selection.SelectIndex(e, i)
}

// Selection returns the selection store backing the registry.
func (r *Registry) Selection() *SelectionStore {
	return r.selection
}

// Custom returns the user-defined entries collection.
func (r *Registry) Custom() *CustomEntries {
	return r.custom
}

// Subscribe registers fn for change events.
func (r *Registry) Subscribe(fn Listener) *Subscription {
	return r.selection.Emitter().Subscribe(fn)
}

// Events streams change events until ctx is done.
func (r *Registry) Events(ctx context.Context, buffer int) <-chan ChangeEvent {
	return r.selection.Emitter().SubscribeChan(ctx, buffer)
}

// CreateCustomEntry persists e as a user-defined entry, replacing any custom
// entry of the same name. It fails with ErrProductionMode on a production
// registry.
func (r *Registry) CreateCustomEntry(e entry.Entry) error {
	if r.production {
		return ErrProductionMode
	}
	return r.custom.Set(e)
}

// AddCustomEnvironments appends pairs to the custom entry of apiName,
// creating it when needed. It fails with ErrProductionMode on a production
// registry.
func (r *Registry) AddCustomEnvironments(apiName string, pairs ...entry.Pair) (entry.Entry, error) {
	if r.production {
		return entry.Entry{}, ErrProductionMode
	}
	return r.custom.AddEnvironments(apiName, pairs...)
}

// RemoveCustomEntry deletes the custom entry of apiName. The persisted
// selection is forgotten when no built-in entry carries that name.
func (r *Registry) RemoveCustomEntry(apiName string) error {
	if err := r.custom.Remove(apiName); err != nil {
		return err
	}

	r.mu.RLock()
	_, builtin := r.index[apiName]
	r.mu.RUnlock()
	if builtin {
		return nil
	}
	return r.selection.Forget(apiName)
}

// Save flushes the underlying store when it buffers writes.
func (r *Registry) Save() error {
	if f, ok := r.store.(kvstore.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Store returns the key/value store backing the registry.
func (r *Registry) Store() kvstore.Store {
	return r.store
}
