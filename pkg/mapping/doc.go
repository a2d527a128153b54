// Package mapping provides explicit column-name to struct-field associations
// for materializing SQL result rows into Go structs.
//
// # Overview
//
// Result sets frequently carry legacy column names (firstName, dateOfBirth)
// that do not line up with Go field names. Rather than decorating every
// struct with tags or relying on automatic name matching, a Mapper lets the
// owning package declare the overrides it needs, once, at process startup:
//
//	m, err := mapping.NewMapper[Person]()
//	if err != nil {
//		return err
//	}
//	if err := m.Declare("firstName", func(p *Person) any { return &p.Name }); err != nil {
//		return err
//	}
//	if err := m.InstallInto(registry); err != nil {
//		return err
//	}
//
// The accessor is a typed selector, not a string: renaming Person.Name breaks
// compilation of the declaration instead of silently desynchronizing the
// mapping.
//
// # Lifecycle
//
// A Mapper is built and populated during single-threaded startup and never
// mutated afterwards. All declaration errors (DuplicateColumnError,
// InvalidAccessorError, TypeResolutionError) surface synchronously from the
// setup calls, so a misconfigured mapping prevents the process from starting.
// Once installed, Resolve is a pure read over immutable state and is safe for
// arbitrarily many concurrent row materializations. Resolve never fails: an
// undeclared column yields an explicit unmapped result and the consuming
// materializer applies its own default matching strategy.
//
// # Integration
//
// Mappers publish their Resolve capability through the RegistrationSink
// interface, keyed by the target type. The scan package's Registry implements
// the sink and its Scanner consults installed resolvers before falling back
// to tag or name matching.
package mapping
