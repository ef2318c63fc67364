package envmanager

import "log/slog"

const (
	// DefaultSelectionKey is the store key holding the service to environment map.
	DefaultSelectionKey = "envmanager.selected_environments"
	// DefaultCustomEntriesKey is the store key holding user-defined entries.
	DefaultCustomEntriesKey = "envmanager.custom_entries"
	// DefaultAppID scopes the durable store when the builder is not given one.
	DefaultAppID = "envmanager"
)

// Option configures the Builder and the components it assembles.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	emitter        *Emitter
	appID          string
	storeDir       string
	selectionKey   string
	customEntryKey string
}

func newOptions(opts ...Option) *options {
	o := &options{
		logger:         slog.Default(),
		appID:          DefaultAppID,
		selectionKey:   DefaultSelectionKey,
		customEntryKey: DefaultCustomEntriesKey,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.emitter == nil {
		o.emitter = NewEmitter()
	}
	return o
}

// WithLogger sets the logger used to report absorbed failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEmitter publishes change events on e instead of a private emitter.
func WithEmitter(e *Emitter) Option {
	return func(o *options) {
		if e != nil {
			o.emitter = e
		}
	}
}

// WithAppID scopes the default durable store.
func WithAppID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.appID = id
		}
	}
}

// WithStoreDir places the default durable store in dir.
func WithStoreDir(dir string) Option {
	return func(o *options) {
		o.storeDir = dir
	}
}

// WithSelectionKey overrides DefaultSelectionKey.
func WithSelectionKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.selectionKey = key
		}
	}
}

// WithCustomEntriesKey overrides DefaultCustomEntriesKey.
func WithCustomEntriesKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.customEntryKey = key
		}
	}
}
