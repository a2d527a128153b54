package mapping

import (
	"fmt"
	"reflect"
)

// Resolver translates a result-set column name into the field it was
// declared for. The second result is false for columns without a declared
// override; it is never an error, and the consuming materializer falls back
// to its own default matching strategy.
type Resolver func(column string) (Field, bool)

// RegistrationSink is the extensibility point of a data-access component
// that accepts per-type column resolvers. Implementations decide how a
// second registration for the same type is handled.
type RegistrationSink interface {
	RegisterResolver(t reflect.Type, r Resolver) error
}

// Mapper holds the column-to-field association table for T. Populate it with
// Declare during startup, then publish it with InstallInto. A fully
// constructed mapper is read-only and safe for concurrent Resolve calls.
type Mapper[T any] struct {
	desc  *TypeDescriptor
	table map[string]Field
}

// NewMapper binds an empty association table to T's descriptor. Binding is
// separate from population so callers can declare their mappings in their
// own setup logic.
func NewMapper[T any]() (*Mapper[T], error) {
	desc, err := DescribeType[T]()
	if err != nil {
		return nil, err
	}
	return &Mapper[T]{
		desc:  desc,
		table: make(map[string]Field),
	}, nil
}

// Descriptor returns the shared descriptor of the target type.
func (m *Mapper[T]) Descriptor() *TypeDescriptor {
	return m.desc
}

// Declare registers one column-to-field association. The accessor must
// return a pointer to a direct field of T, e.g.
//
//	m.Declare("firstName", func(p *Person) any { return &p.Name })
//
// Declaring a column twice fails with DuplicateColumnError and leaves the
// first declaration intact. An accessor that selects anything other than a
// direct field fails with InvalidAccessorError and adds no entry.
func (m *Mapper[T]) Declare(column string, accessor func(*T) any) error {
	if _, ok := m.table[column]; ok {
		return &DuplicateColumnError{Type: m.desc.Type(), Column: column}
	}
	field, err := m.resolveAccessor(column, accessor)
	if err != nil {
		return err
	}
	m.table[column] = field
	return nil
}

// resolveAccessor recovers the field identity behind a selector by probing a
// zero value of T: the pointer the selector returns is matched by address and
// pointee type against the probe's direct fields. A nested selection like
// &p.Address.City either lands at a non-field address or carries the wrong
// pointee type, and is rejected rather than partially resolved.
func (m *Mapper[T]) resolveAccessor(column string, accessor func(*T) any) (Field, error) {
	if accessor == nil {
		return Field{}, &InvalidAccessorError{Type: m.desc.Type(), Column: column, Reason: "nil accessor"}
	}
	probe := new(T)
	out := accessor(probe)
	if out == nil {
		return Field{}, &InvalidAccessorError{Type: m.desc.Type(), Column: column, Reason: "accessor returned nil"}
	}
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.IsNil() {
		return Field{}, &InvalidAccessorError{
			Type:   m.desc.Type(),
			Column: column,
			Reason: "accessor must return a pointer to a field of the target struct",
		}
	}

	pv := reflect.ValueOf(probe).Elem()
	addr := ov.Pointer()
	for _, f := range m.desc.Fields() {
		fv := pv.Field(f.Index)
		if fv.Addr().Pointer() == addr && reflect.PointerTo(f.Type) == ov.Type() {
			return f, nil
		}
	}
	return Field{}, &InvalidAccessorError{
		Type:   m.desc.Type(),
		Column: column,
		Reason: "accessor does not select a direct field (nested paths and computed values are not supported)",
	}
}

// Resolve returns the declared field for column. The second result is false
// when the column has no declared override. Resolve is a pure lookup over
// the immutable table and never fails.
func (m *Mapper[T]) Resolve(column string) (Field, bool) {
	f, ok := m.table[column]
	return f, ok
}

// InstallInto publishes this mapper's Resolve capability into sink, keyed by
// the target type. Call at most once per target type per process, during
// startup; whether a duplicate installation overwrites or is rejected is the
// sink's contract.
func (m *Mapper[T]) InstallInto(sink RegistrationSink) error {
	if sink == nil {
		return fmt.Errorf("registration sink is required")
	}
	return sink.RegisterResolver(m.desc.Type(), m.Resolve)
}
