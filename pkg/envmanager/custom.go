package envmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
	"github.com/dmitrymomot/envmanager/pkg/logger"
)

// CustomEntries is a store-backed collection of user-defined entries keyed
// by API name. Each entry is persisted in its delimited text form.
type CustomEntries struct {
	mu     sync.Mutex
	store  kvstore.Store
	key    string
	logger *slog.Logger
}

// NewCustomEntries creates a collection persisting into store.
func NewCustomEntries(store kvstore.Store, opts ...Option) *CustomEntries {
	return newCustomEntries(store, newOptions(opts...))
}

func newCustomEntries(store kvstore.Store, o *options) *CustomEntries {
	return &CustomEntries{
		store:  store,
		key:    o.customEntryKey,
		logger: o.logger,
	}
}

// All returns every readable custom entry sorted by name. Entries whose text
// cannot be parsed are logged and skipped.
func (c *CustomEntries) All() []entry.Entry {
	raw, err := c.read()
	if err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to read custom entries",
			logger.Key(c.key),
			logger.Error(err),
		)
		return nil
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make([]entry.Entry, 0, len(names))
	for _, name := range names {
		if e, ok := c.decode(name, raw[name]); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Names returns the names of all readable custom entries, sorted.
func (c *CustomEntries) Names() []string {
	all := c.All()
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name()
	}
	return names
}

// Get returns the custom entry called name.
func (c *CustomEntries) Get(name string) (entry.Entry, bool) {
	raw, err := c.read()
	if err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to read custom entries",
			logger.Key(c.key),
			logger.Service(name),
			logger.Error(err),
		)
		return entry.Entry{}, false
	}

	text, ok := raw[name]
	if !ok {
		return entry.Entry{}, false
	}
	return c.decode(name, text)
}

// Set stores e, replacing any custom entry with the same name.
func (c *CustomEntries) Set(e entry.Entry) error {
	if e.Name() == "" {
		return ErrEmptyName
	}
	if e.Len() == 0 {
		return ErrNoEnvironments
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.update(func(raw map[string]string) bool {
		raw[e.Name()] = e.DelimitedText()
		return true
	})
}

// Remove deletes the custom entry called name. Removing a missing entry is
// not an error.
func (c *CustomEntries) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.update(func(raw map[string]string) bool {
		if _, ok := raw[name]; !ok {
			return false
		}
		delete(raw, name)
		return true
	})
}

// RemoveEntry deletes the custom entry with the name of e.
func (c *CustomEntries) RemoveEntry(e entry.Entry) error {
	return c.Remove(e.Name())
}

// AddEnvironments appends pairs to the custom entry called name, creating
// the entry when it does not exist yet. The updated entry is returned.
func (c *CustomEntries) AddEnvironments(name string, pairs ...entry.Pair) (entry.Entry, error) {
	if name == "" {
		return entry.Entry{}, ErrEmptyName
	}
	if len(pairs) == 0 {
		return entry.Entry{}, ErrNoEnvironments
	}
	for _, p := range pairs {
		if p.Environment == "" {
			return entry.Entry{}, fmt.Errorf("%w for api %q", entry.ErrEmptyEnvironment, name)
		}
		if p.BaseURL == nil {
			return entry.Entry{}, fmt.Errorf("%w: environment %q has no base url", entry.ErrInvalidURL, p.Environment)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var updated entry.Entry
	err := c.update(func(raw map[string]string) bool {
		current, ok := entry.Entry{}, false
		if text, exists := raw[name]; exists {
			current, ok = c.decode(name, text)
		}

		if ok {
			for _, p := range pairs {
				current = current.WithEnvironment(p)
			}
			updated = current
		} else {
			updated = entry.New(name, pairs...)
		}
		raw[name] = updated.DelimitedText()
		return true
	})
	if err != nil {
		return entry.Entry{}, err
	}
	return updated, nil
}

// RemoveEnvironment drops environment from the custom entry called name.
// Removing the last environment removes the whole entry.
func (c *CustomEntries) RemoveEnvironment(name, environment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.update(func(raw map[string]string) bool {
		text, exists := raw[name]
		if !exists {
			return false
		}
		current, ok := c.decode(name, text)
		if !ok || !current.Has(environment) {
			return false
		}

		if current.Len() == 1 {
			delete(raw, name)
			return true
		}
		updated, _ := current.WithoutEnvironment(environment)
		raw[name] = updated.DelimitedText()
		return true
	})
}

// update applies fn to the persisted map and writes it back when fn reports
// a change. The caller holds c.mu.
func (c *CustomEntries) update(fn func(raw map[string]string) bool) error {
	raw, err := c.read()
	if err != nil {
		return errors.Join(ErrReadCustomEntries, err)
	}
	if !fn(raw) {
		return nil
	}
	if err := c.store.Set(c.key, kvstore.Map(raw)); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelError, "failed to persist custom entries",
			logger.Key(c.key),
			logger.Error(err),
		)
		return errors.Join(ErrPersistCustomEntry, err)
	}
	return nil
}

func (c *CustomEntries) read() (map[string]string, error) {
	v, ok, err := c.store.Get(c.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return make(map[string]string), nil
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, kvstore.ErrCorruptedValue
	}
	return m, nil
}

func (c *CustomEntries) decode(name, text string) (entry.Entry, bool) {
	e, ok := entry.Parse(text)
	if !ok || e.Name() != name {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "skipping malformed custom entry",
			logger.Service(name),
			slog.Int("lines", strings.Count(text, "\n")+1),
		)
		return entry.Entry{}, false
	}
	return e, true
}
