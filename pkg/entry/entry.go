package entry

import (
	"bytes"
	"net/url"
	"slices"
)

// EnvironmentDetail is a single environment of an Entry.
// AssociatedData is an optional opaque payload attached at build time.
type EnvironmentDetail struct {
	Environment    string
	BaseURL        *url.URL
	AssociatedData []byte
}

// Pair returns the environment name and base URL of the detail.
func (d EnvironmentDetail) Pair() Pair {
	return Pair{Environment: d.Environment, BaseURL: cloneURL(d.BaseURL)}
}

func (d EnvironmentDetail) clone() EnvironmentDetail {
	return EnvironmentDetail{
		Environment:    d.Environment,
		BaseURL:        cloneURL(d.BaseURL),
		AssociatedData: bytes.Clone(d.AssociatedData),
	}
}

// Entry is the environment configuration of one API or service.
// The zero value is not usable; create entries with New.
type Entry struct {
	name         string
	environments []EnvironmentDetail
}

// New creates an entry with the given environments in order.
// It panics if name is empty, no pairs are given, or a pair has an empty
// environment name or no base URL.
func New(name string, pairs ...Pair) Entry {
	if name == "" {
		panic("entry: name must not be empty")
	}
	if len(pairs) == 0 {
		panic("entry: at least one environment pair is required")
	}

	e := Entry{name: name, environments: make([]EnvironmentDetail, 0, len(pairs))}
	for _, p := range pairs {
		if p.Environment == "" {
			panic("entry: environment name must not be empty")
		}
		if p.BaseURL == nil {
			panic("entry: environment " + p.Environment + " has no base url")
		}
		e.environments = append(e.environments, EnvironmentDetail{
			Environment: p.Environment,
			BaseURL:     cloneURL(p.BaseURL),
		})
	}
	return e
}

// Name returns the service name.
func (e Entry) Name() string {
	return e.name
}

// Len returns the number of environments.
func (e Entry) Len() int {
	return len(e.environments)
}

// Environments returns a copy of the environment details in insertion order.
func (e Entry) Environments() []EnvironmentDetail {
	out := make([]EnvironmentDetail, len(e.environments))
	for i, d := range e.environments {
		out[i] = d.clone()
	}
	return out
}

// Pairs returns the environment/URL pairs in insertion order.
func (e Entry) Pairs() []Pair {
	out := make([]Pair, len(e.environments))
	for i, d := range e.environments {
		out[i] = d.Pair()
	}
	return out
}

// EnvironmentNames returns the environment names in insertion order.
func (e Entry) EnvironmentNames() []string {
	names := make([]string, len(e.environments))
	for i, d := range e.environments {
		names[i] = d.Environment
	}
	return names
}

// Has reports whether the entry declares the environment.
func (e Entry) Has(environment string) bool {
	_, ok := e.IndexOf(environment)
	return ok
}

// IndexOf returns the position of the first environment with the given name.
func (e Entry) IndexOf(environment string) (int, bool) {
	i := slices.IndexFunc(e.environments, func(d EnvironmentDetail) bool {
		return d.Environment == environment
	})
	return i, i >= 0
}

// First returns the first declared environment name.
func (e Entry) First() string {
	if len(e.environments) == 0 {
		return ""
	}
	return e.environments[0].Environment
}

// EnvironmentAt returns the environment name at index i.
func (e Entry) EnvironmentAt(i int) (string, bool) {
	if i < 0 || i >= len(e.environments) {
		return "", false
	}
	return e.environments[i].Environment, true
}

// BaseURLAt returns the base URL of the environment at index i.
func (e Entry) BaseURLAt(i int) (*url.URL, bool) {
	if i < 0 || i >= len(e.environments) {
		return nil, false
	}
	return cloneURL(e.environments[i].BaseURL), true
}

// BaseURL returns the base URL of the environment.
func (e Entry) BaseURL(environment string) (*url.URL, bool) {
	i, ok := e.IndexOf(environment)
	if !ok {
		return nil, false
	}
	return cloneURL(e.environments[i].BaseURL), true
}

// BuildURL joins path onto the base URL of the environment.
// The path is appended relative to the base path; duplicate slashes are
// collapsed and a trailing slash on path is preserved.
func (e Entry) BuildURL(environment, path string) (*url.URL, bool) {
	base, ok := e.BaseURL(environment)
	if !ok {
		return nil, false
	}
	return JoinURL(base, path), true
}

// AssociatedData returns the opaque payload attached to the environment.
func (e Entry) AssociatedData(environment string) ([]byte, bool) {
	i, ok := e.IndexOf(environment)
	if !ok || e.environments[i].AssociatedData == nil {
		return nil, false
	}
	return bytes.Clone(e.environments[i].AssociatedData), true
}

// WithEnvironment returns a copy of the entry with the pair appended.
// Existing environments with the same name are kept. It panics on a pair
// with an empty environment name.
func (e Entry) WithEnvironment(p Pair) Entry {
	if p.Environment == "" {
		panic("entry: environment name must not be empty")
	}
	out := e.clone()
	out.environments = append(out.environments, EnvironmentDetail{
		Environment: p.Environment,
		BaseURL:     cloneURL(p.BaseURL),
	})
	return out
}

// WithoutEnvironment returns a copy without the first environment named
// environment. It reports false, and returns the entry unchanged, when no such
// environment exists or when it is the only one left.
func (e Entry) WithoutEnvironment(environment string) (Entry, bool) {
	i, ok := e.IndexOf(environment)
	if !ok || len(e.environments) == 1 {
		return e, false
	}
	out := e.clone()
	out.environments = slices.Delete(out.environments, i, i+1)
	return out, true
}

// WithAssociatedData returns a copy with data attached to the first
// environment named environment. Unknown environments leave the entry as is.
func (e Entry) WithAssociatedData(environment string, data []byte) Entry {
	i, ok := e.IndexOf(environment)
	if !ok {
		return e
	}
	out := e.clone()
	out.environments[i].AssociatedData = bytes.Clone(data)
	return out
}

// Equal reports whether both entries have the same name and the same
// environment/URL sequence. Associated data is not compared.
func (e Entry) Equal(other Entry) bool {
	if e.name != other.name || len(e.environments) != len(other.environments) {
		return false
	}
	for i := range e.environments {
		if !e.environments[i].Pair().Equal(other.environments[i].Pair()) {
			return false
		}
	}
	return true
}

func (e Entry) clone() Entry {
	out := Entry{name: e.name, environments: make([]EnvironmentDetail, len(e.environments), len(e.environments)+1)}
	for i, d := range e.environments {
		out.environments[i] = d.clone()
	}
	return out
}

// JoinURL appends path to base following URL path-join rules.
func JoinURL(base *url.URL, path string) *url.URL {
	if path == "" {
		return cloneURL(base)
	}
	return base.JoinPath(path)
}
