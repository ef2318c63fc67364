// Package entry defines the environment configuration of a single API or
// service: its name and an ordered list of named deployment environments, each
// mapped to a base URL.
//
// An Entry is a value. Methods that "modify" an entry return an updated copy
// and never touch the receiver, so entries can be shared between owners
// (built-in registry entries, persisted custom entries) without aliasing.
// An Entry always holds at least one environment.
//
// # Usage
//
//	acc := entry.MustPair("acc", "http://acc.api.service.com")
//	prod := entry.MustPair("prod", "http://prod.api.service.com")
//
//	e := entry.New("Service", acc, prod)
//	u, ok := e.BuildURL("prod", "v1/quotes") // http://prod.api.service.com/v1/quotes
//
// # Delimited text
//
// Entries serialize to one line per environment in the form
// `ServiceName|EnvironmentName|BaseURL`:
//
//	Service|acc|http://acc.api.service.com
//	Service|prod|http://prod.api.service.com
//
// Parse reverses the encoding and reports false when lines disagree on the
// service name or no usable environment line is present.
//
// # Lookups
//
// Duplicate environment names are tolerated. Every lookup by name returns the
// first matching environment in insertion order.
package entry
