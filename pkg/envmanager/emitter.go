package envmanager

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ChangeEvent is published after a new selection has been persisted.
type ChangeEvent struct {
	APIName        string
	OldEnvironment string
	NewEnvironment string
}

// Listener receives change events synchronously, on the goroutine that
// called Select.
type Listener func(ChangeEvent)

type listener struct {
	id uuid.UUID
	fn Listener
}

// Emitter fans change events out to its listeners in subscription order.
// Listeners registered after an event was published never see it.
// All methods are safe for concurrent use.
type Emitter struct {
	mu        sync.RWMutex
	listeners []listener
}

// NewEmitter creates an emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscription identifies one registered listener.
type Subscription struct {
	id      uuid.UUID
	emitter *Emitter
	once    sync.Once
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Cancel removes the listener. It is safe to call Cancel more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.emitter == nil {
		return
	}
	s.once.Do(func() {
		s.emitter.remove(s.id)
	})
}

// Subscribe registers fn. A nil fn is ignored and yields an inert subscription.
func (e *Emitter) Subscribe(fn Listener) *Subscription {
	if fn == nil {
		return &Subscription{}
	}

	id := uuid.New()
	e.mu.Lock()
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	e.mu.Unlock()

	return &Subscription{id: id, emitter: e}
}

// SubscribeChan delivers events on a buffered channel until ctx is done,
// then closes it. Events are dropped for a consumer whose buffer is full
// so a slow reader never blocks Select.
func (e *Emitter) SubscribeChan(ctx context.Context, buffer int) <-chan ChangeEvent {
	ch := make(chan ChangeEvent, max(buffer, 1))

	var (
		mu     sync.Mutex
		closed bool
	)
	sub := e.Subscribe(func(ev ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
		}
	})

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Cancel()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		}()
	}

	return ch
}

// Publish calls every listener with ev. Listeners run outside the emitter
// lock and may subscribe or cancel from within the callback.
func (e *Emitter) Publish(ev ChangeEvent) {
	e.mu.RLock()
	snapshot := make([]listener, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.RUnlock()

	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

func (e *Emitter) remove(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}
