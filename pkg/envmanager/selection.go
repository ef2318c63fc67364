package envmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
	"github.com/dmitrymomot/envmanager/pkg/logger"
)

// SelectionStore tracks the selected environment of every API and persists
// the whole service to environment map under one store key.
type SelectionStore struct {
	mu      sync.Mutex
	store   kvstore.Store
	key     string
	emitter *Emitter
	logger  *slog.Logger
}

// NewSelectionStore creates a selection store persisting into store.
func NewSelectionStore(store kvstore.Store, opts ...Option) *SelectionStore {
	o := newOptions(opts...)
	return newSelectionStore(store, o)
}

func newSelectionStore(store kvstore.Store, o *options) *SelectionStore {
	return &SelectionStore{
		store:   store,
		key:     o.selectionKey,
		emitter: o.emitter,
		logger:  o.logger,
	}
}

// Emitter returns the emitter change events are published on.
func (s *SelectionStore) Emitter() *Emitter {
	return s.emitter
}

// Current returns the selected environment of e. When nothing valid is
// persisted the first declared environment is returned.
func (s *SelectionStore) Current(e entry.Entry) string {
	selections, _ := s.read()
	return resolve(e, selections)
}

// SelectedIndex returns the position of Current(e) within e.
func (s *SelectionStore) SelectedIndex(e entry.Entry) int {
	i, ok := e.IndexOf(s.Current(e))
	if !ok {
		return 0
	}
	return i
}

// Select makes environment the current one for e. Unknown environments and
// the already selected one are ignored. A ChangeEvent is published once the
// new selection is persisted; a failed read or write publishes nothing and
// leaves the persisted selections untouched.
func (s *SelectionStore) Select(e entry.Entry, environment string) error {
	if !e.Has(environment) {
		return nil
	}

	s.mu.Lock()
	selections, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrPersistSelection, err)
	}
	previous := resolve(e, selections)
	if previous == environment {
		s.mu.Unlock()
		return nil
	}

	selections[e.Name()] = environment
	if err := s.store.Set(s.key, kvstore.Map(selections)); err != nil {
		s.mu.Unlock()
		s.logger.LogAttrs(context.Background(), slog.LevelError, "failed to persist environment selection",
			logger.Service(e.Name()),
			logger.Environment(environment),
			logger.Error(err),
		)
		return errors.Join(ErrPersistSelection, err)
	}
	s.mu.Unlock()

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "environment selected",
		logger.Service(e.Name()),
		slog.String("from", previous),
		slog.String("to", environment),
	)
	s.emitter.Publish(ChangeEvent{
		APIName:        e.Name(),
		OldEnvironment: previous,
		NewEnvironment: environment,
	})
	return nil
}

// SelectIndex selects the environment at position i. Out of range indexes
// are ignored.
func (s *SelectionStore) SelectIndex(e entry.Entry, i int) error {
	environment, ok := e.EnvironmentAt(i)
	if !ok {
		return nil
	}
	return s.Select(e, environment)
}

// BaseURL returns the base URL of the current environment of e.
func (s *SelectionStore) BaseURL(e entry.Entry) *url.URL {
	u, _ := e.BaseURL(s.Current(e))
	return u
}

// BuildURL joins path onto the base URL of the current environment of e.
func (s *SelectionStore) BuildURL(e entry.Entry, path string) *url.URL {
	u, _ := e.BuildURL(s.Current(e), path)
	return u
}

// Selections returns a copy of the persisted service to environment map.
// Values are not validated against any entry.
func (s *SelectionStore) Selections() map[string]string {
	selections, _ := s.read()
	return selections
}

// Forget drops the persisted selection of name so the next lookup falls
// back to the first environment.
func (s *SelectionStore) Forget(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	selections, err := s.read()
	if err != nil {
		return errors.Join(ErrPersistSelection, err)
	}
	if _, ok := selections[name]; !ok {
		return nil
	}
	delete(selections, name)
	if err := s.store.Set(s.key, kvstore.Map(selections)); err != nil {
		return errors.Join(ErrPersistSelection, err)
	}
	return nil
}

// read returns the persisted selections. A store failure yields an empty map
// together with the error, so callers must not write the map back.
// A value of the wrong kind is logged and treated as empty.
func (s *SelectionStore) read() (map[string]string, error) {
	v, ok, err := s.store.Get(s.key)
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to read environment selections",
			logger.Key(s.key),
			logger.Error(err),
		)
		return make(map[string]string), err
	}
	if !ok {
		return make(map[string]string), nil
	}

	m, ok := v.AsMap()
	if !ok {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "ignoring environment selections of unexpected kind",
			logger.Key(s.key),
			slog.String("kind", v.Kind().String()),
		)
		return make(map[string]string), nil
	}
	return m, nil
}

func resolve(e entry.Entry, selections map[string]string) string {
	if selected, ok := selections[e.Name()]; ok && e.Has(selected) {
		return selected
	}
	return e.First()
}
