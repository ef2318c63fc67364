package envmanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/envmanager"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
)

func service1() entry.Entry {
	return entry.New("Service1",
		mustPair("acc", "http://acc.api.service1.com"),
		mustPair("prod", "http://prod.api.service1.com"),
	)
}

func TestSelectionStore_Current(t *testing.T) {
	t.Parallel()

	t.Run("fresh store returns first environment", func(t *testing.T) {
		t.Parallel()

		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
		assert.Equal(t, "acc", s.Current(service1()))
		assert.Equal(t, 0, s.SelectedIndex(service1()))
		assert.Equal(t, "http://acc.api.service1.com", s.BaseURL(service1()).String())
	})

	t.Run("stale persisted value falls back", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(envmanager.DefaultSelectionKey, kvstore.Map(map[string]string{"Service1": "gone"})))

		s := envmanager.NewSelectionStore(store, quiet())
		assert.Equal(t, "acc", s.Current(service1()))
	})

	t.Run("value of unexpected kind falls back", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(envmanager.DefaultSelectionKey, kvstore.String("prod")))

		s := envmanager.NewSelectionStore(store, quiet())
		assert.Equal(t, "acc", s.Current(service1()))
	})

	t.Run("unreadable store falls back", func(t *testing.T) {
		t.Parallel()

		store := newFlakyStore()
		s := envmanager.NewSelectionStore(store, quiet())
		require.NoError(t, s.Select(service1(), "prod"))

		store.failReads.Store(true)
		assert.Equal(t, "acc", s.Current(service1()))
	})

	t.Run("persists across instances", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		require.NoError(t, envmanager.NewSelectionStore(store, quiet()).Select(service1(), "prod"))

		s := envmanager.NewSelectionStore(store, quiet())
		assert.Equal(t, "prod", s.Current(service1()))
		assert.Equal(t, 1, s.SelectedIndex(service1()))
		assert.Equal(t, map[string]string{"Service1": "prod"}, s.Selections())
	})

	t.Run("custom key", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore()
		s := envmanager.NewSelectionStore(store, quiet(), envmanager.WithSelectionKey("prefs.selected"))
		require.NoError(t, s.Select(service1(), "prod"))

		_, ok, err := store.Get("prefs.selected")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSelectionStore_Select(t *testing.T) {
	t.Parallel()

	t.Run("unknown environment is ignored", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
		s.Emitter().Subscribe(rec.listen)

		require.NoError(t, s.Select(service1(), "staging"))
		assert.Equal(t, "acc", s.Current(service1()))
		assert.Empty(t, rec.events)
	})

	t.Run("repeated selection notifies once", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
		s.Emitter().Subscribe(rec.listen)

		require.NoError(t, s.Select(service1(), "prod"))
		require.NoError(t, s.Select(service1(), "prod"))

		require.Len(t, rec.events, 1)
		assert.Equal(t, envmanager.ChangeEvent{
			APIName:        "Service1",
			OldEnvironment: "acc",
			NewEnvironment: "prod",
		}, rec.events[0])
	})

	t.Run("selecting the implicit default is a no-op", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
		s.Emitter().Subscribe(rec.listen)

		require.NoError(t, s.Select(service1(), "acc"))
		assert.Empty(t, rec.events)
	})

	t.Run("listener observes persisted selection", func(t *testing.T) {
		t.Parallel()

		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
		var seen string
		s.Emitter().Subscribe(func(envmanager.ChangeEvent) {
			seen = s.Current(service1())
		})

		require.NoError(t, s.Select(service1(), "prod"))
		assert.Equal(t, "prod", seen)
	})

	t.Run("failed write publishes nothing", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		store := newFlakyStore()
		store.failWrites.Store(true)
		s := envmanager.NewSelectionStore(store, quiet())
		s.Emitter().Subscribe(rec.listen)

		err := s.Select(service1(), "prod")
		assert.ErrorIs(t, err, envmanager.ErrPersistSelection)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Empty(t, rec.events)
		assert.Equal(t, "acc", s.Current(service1()))
	})

	t.Run("failed read keeps other selections", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		other := entry.New("Service2", mustPair("a", "http://a.example.com"), mustPair("b", "http://b.example.com"))
		store := newFlakyStore()
		s := envmanager.NewSelectionStore(store, quiet())
		require.NoError(t, s.Select(service1(), "prod"))
		s.Emitter().Subscribe(rec.listen)

		store.failReads.Store(true)
		err := s.Select(other, "b")
		assert.ErrorIs(t, err, envmanager.ErrPersistSelection)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Empty(t, rec.events)

		store.failReads.Store(false)
		assert.Equal(t, map[string]string{"Service1": "prod"}, s.Selections())
		assert.Equal(t, "a", s.Current(other))
	})

	t.Run("other services are kept", func(t *testing.T) {
		t.Parallel()

		other := entry.New("Service2", mustPair("a", "http://a.example.com"), mustPair("b", "http://b.example.com"))
		s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())

		require.NoError(t, s.Select(service1(), "prod"))
		require.NoError(t, s.Select(other, "b"))

		assert.Equal(t, "prod", s.Current(service1()))
		assert.Equal(t, "b", s.Current(other))
	})
}

func TestSelectionStore_SelectIndex(t *testing.T) {
	t.Parallel()

	s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())

	require.NoError(t, s.SelectIndex(service1(), 1))
	assert.Equal(t, "prod", s.Current(service1()))

	require.NoError(t, s.SelectIndex(service1(), 5))
	require.NoError(t, s.SelectIndex(service1(), -1))
	assert.Equal(t, 1, s.SelectedIndex(service1()))
}

func TestSelectionStore_BuildURL(t *testing.T) {
	t.Parallel()

	s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
	assert.Equal(t, "http://acc.api.service1.com/v1/quotes", s.BuildURL(service1(), "v1/quotes").String())

	require.NoError(t, s.Select(service1(), "prod"))
	assert.Equal(t, "http://prod.api.service1.com/v1/quotes", s.BuildURL(service1(), "/v1/quotes").String())
}

func TestSelectionStore_Forget(t *testing.T) {
	t.Parallel()

	s := envmanager.NewSelectionStore(kvstore.NewMemoryStore(), quiet())
	require.NoError(t, s.Select(service1(), "prod"))
	require.NoError(t, s.Forget("Service1"))
	require.NoError(t, s.Forget("Service1"))

	assert.Equal(t, "acc", s.Current(service1()))
	assert.Empty(t, s.Selections())
}

func TestSelectionStore_ForgetFailedRead(t *testing.T) {
	t.Parallel()

	other := entry.New("Service2", mustPair("a", "http://a.example.com"), mustPair("b", "http://b.example.com"))
	store := newFlakyStore()
	s := envmanager.NewSelectionStore(store, quiet())
	require.NoError(t, s.Select(service1(), "prod"))
	require.NoError(t, s.Select(other, "b"))

	store.failReads.Store(true)
	err := s.Forget("Service1")
	assert.ErrorIs(t, err, envmanager.ErrPersistSelection)

	store.failReads.Store(false)
	assert.Equal(t, map[string]string{"Service1": "prod", "Service2": "b"}, s.Selections())
}
