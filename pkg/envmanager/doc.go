// Package envmanager keeps, per named API, a set of deployment environments
// and tracks which one is currently selected.
//
// A Registry is assembled by a Builder from explicit pairs, pipe-delimited
// tabular text or YAML definitions:
//
//	registry, err := envmanager.NewBuilder(envmanager.WithAppID("com.example.app")).
//		Add("Quotes",
//			entry.MustPair("acc", "https://acc.quotes.example.com"),
//			entry.MustPair("prod", "https://quotes.example.com"),
//		).
//		Build()
//	if err != nil {
//		// configuration is broken, do not start
//	}
//
//	u, _ := registry.URLFor("Quotes", "v1/latest")
//
// The selected environment of every API is persisted through a kvstore.Store
// by a SelectionStore. Selecting a new environment publishes a ChangeEvent on
// the Emitter owned by that SelectionStore.
//
// Production mode collapses every API to the single environment named in the
// production map. The decision is made when Build runs, so it can depend on
// a runtime flag:
//
//	b.ProductionMap(map[string]string{"Quotes": "prod"}).
//		Production(func() bool { return environment.Current().IsProduction() })
//
// User-defined environments live in CustomEntries, persisted separately from
// the built-in ones and merged with them by API name on every lookup.
package envmanager
