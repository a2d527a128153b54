// Package scan materializes database/sql result rows into struct values,
// using the mapping package's declared column overrides as its type-mapping
// hook.
//
// # Overview
//
// A Registry holds one column resolver per target type, installed once at
// startup by mapping.Mapper.InstallInto. A Scanner consults the registry
// while building a scan plan for each (target type, column set) pair:
//
//	registry := scan.NewRegistry()
//	// startup: install mappers, fail fast on any error
//	scanner, err := scan.NewScanner(registry)
//	...
//	people, err := scan.All[Person](ctx, scanner, db,
//		"SELECT id, firstName, lastName, dateOfBirth FROM people")
//
// # Column resolution
//
// Each result column is bound in order of precedence:
//
//  1. the registered resolver for the target type (declared overrides)
//  2. exact `db` tag match
//  3. case-insensitive field name match
//
// Columns that resolve to nothing are discarded into a throwaway
// destination; they are counted and logged at debug level, never an error.
//
// # Plans and caching
//
// Scan plans are cached in an LRU keyed by target type and column set, so
// reflection runs once per distinct result shape. Registration must complete
// before scanning begins; after that the registry and every cached plan are
// read-only, and a single Scanner is safe for concurrent use across
// connections.
package scan
