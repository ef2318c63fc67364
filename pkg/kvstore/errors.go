package kvstore

import "errors"

// Errors shared by every Store implementation.
var (
	ErrEmptyKey       = errors.New("kvstore: empty key")
	ErrInvalidValue   = errors.New("kvstore: invalid value")
	ErrCorruptedValue = errors.New("kvstore: corrupted value")
)

// FileStore errors.
var (
	ErrEmptyAppID      = errors.New("kvstore: empty app id")
	ErrFailedToLoad    = errors.New("kvstore: failed to load store document")
	ErrFailedToPersist = errors.New("kvstore: failed to persist store document")
)

// Connection errors of the Redis and PostgreSQL backends.
var (
	ErrFailedToParseURL    = errors.New("kvstore: failed to parse connection url")
	ErrRedisNotReady       = errors.New("kvstore: redis did not become ready within the given time period")
	ErrPostgresNotReady    = errors.New("kvstore: postgres did not become ready within the given time period")
	ErrFailedToEnsureTable = errors.New("kvstore: failed to create key/value table")
)
