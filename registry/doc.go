/*
Package registry is the discovery engine for storage plugins.

Plugin packages register a Module from init(). A module has a dotted name
and a Load function returning parameterless-constructed registrar instances:

	func init() {
	    registry.Register(registry.Module{
	        Name: "suparena.persistence.database.sqlite",
	        Load: func() ([]any, error) { return []any{Registrar{}}, nil },
	    })
	}

A binary opts into plugins with blank imports (see provider/all). Callers
ask for every instance implementing a contract among modules whose name
matches a glob pattern:

	registrars, err := registry.Discover[dbstore.ProviderRegistrar](registry.Default,
	    "*.persistence.database.*", logger)

Matching is case-insensitive. Results follow module name order, then the
order returned by Load. A module whose Load fails or panics is logged and
skipped; discovery of the others continues.

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
