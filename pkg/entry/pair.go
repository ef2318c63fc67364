package entry

import (
	"errors"
	"fmt"
	"net/url"
)

// Pair couples an environment name with its base URL.
type Pair struct {
	Environment string
	BaseURL     *url.URL
}

// NewPair parses rawURL and returns a pair for the environment.
// The environment name must not be empty.
func NewPair(environment, rawURL string) (Pair, error) {
	if environment == "" {
		return Pair{}, ErrEmptyEnvironment
	}
	u, err := ParseURL(rawURL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Environment: environment, BaseURL: u}, nil
}

// MustPair is like NewPair but panics on an empty environment or an invalid URL.
// Intended for statically known configuration.
func MustPair(environment, rawURL string) Pair {
	p, err := NewPair(environment, rawURL)
	if err != nil {
		panic(fmt.Sprintf("entry: %v", err))
	}
	return p
}

// Equal reports whether both pairs carry the same environment and URL.
func (p Pair) Equal(other Pair) bool {
	return p.Environment == other.Environment && urlString(p.BaseURL) == urlString(other.BaseURL)
}

// ParseURL parses rawURL and requires it to be absolute with a host.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, rawURL)
	}
	return u, nil
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
