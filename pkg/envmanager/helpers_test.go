package envmanager_test

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/envmanager/pkg/envmanager"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
)

var errStoreDown = errors.New("store down")

// flakyStore wraps a MemoryStore and fails reads or writes while the
// matching flag is set.
type flakyStore struct {
	*kvstore.MemoryStore
	failWrites atomic.Bool
	failReads  atomic.Bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: kvstore.NewMemoryStore()}
}

func (s *flakyStore) Get(key string) (kvstore.Value, bool, error) {
	if s.failReads.Load() {
		return kvstore.Value{}, false, errStoreDown
	}
	return s.MemoryStore.Get(key)
}

func (s *flakyStore) Set(key string, v kvstore.Value) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.MemoryStore.Set(key, v)
}

func quiet() envmanager.Option {
	return envmanager.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// recorder collects change events.
type recorder struct {
	events []envmanager.ChangeEvent
}

func (r *recorder) listen(ev envmanager.ChangeEvent) {
	r.events = append(r.events, ev)
}
