// Package kvstore provides the small key/value persistence contract used to
// keep environment selections and custom entries across process restarts.
//
// Values are a tagged variant (see Value): a string, a flat string-to-string
// map or opaque bytes. Every Store round-trips each shape losslessly.
//
// Implementations:
//
//   - MemoryStore: process-local map, for tests and ephemeral use.
//   - FileStore: durable app-scoped preferences document (YAML) stored in the
//     user configuration directory.
//   - RedisStore: keys under an app namespace in Redis.
//   - PostgresStore: rows of a namespaced key/value table.
//
// # Usage
//
//	store, err := kvstore.NewFileStore("com.example.app")
//	if err != nil {
//	    return err
//	}
//	_ = store.Set("selected", kvstore.Map(map[string]string{"quotes": "prod"}))
//
//	v, ok, err := store.Get("selected")
//	m, _ := v.AsMap()
//
// # Errors
//
// Missing keys are reported through the boolean result, not as an error.
// ErrCorruptedValue is returned when persisted data cannot be decoded and
// ErrEmptyKey when a blank key is used.
package kvstore
