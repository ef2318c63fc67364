package kvstore

// Store is a named value storage.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (Value, bool, error)

	// Set stores v under key, replacing any previous value.
	Set(key string, v Value) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Flusher is implemented by stores that buffer writes.
type Flusher interface {
	Flush() error
}
