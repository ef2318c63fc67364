package entry

import "errors"

var (
	// ErrInvalidURL is returned when a base URL is not a valid absolute URL.
	ErrInvalidURL = errors.New("entry: invalid base url")

	// ErrEmptyEnvironment is returned when an environment name is empty.
	ErrEmptyEnvironment = errors.New("entry: empty environment name")

	// ErrMalformedText is returned when delimited text cannot be decoded into an entry.
	ErrMalformedText = errors.New("entry: malformed delimited text")
)
