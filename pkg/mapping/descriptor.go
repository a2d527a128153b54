package mapping

import (
	"reflect"
)

// Field identifies one settable field of a target struct type.
type Field struct {
	Name  string       // struct field name
	Index int          // field position within the struct
	Type  reflect.Type // field type
	Tag   string       // `db` tag value, empty if absent
}

// Dest returns a scan destination (pointer to this field) on target, which
// must be an addressable struct value of the owning descriptor's type.
func (f Field) Dest(target reflect.Value) any {
	return target.Field(f.Index).Addr().Interface()
}

// TypeDescriptor enumerates the settable fields of a destination struct
// type, in declaration order. Built once per type and immutable afterwards.
type TypeDescriptor struct {
	typ    reflect.Type
	fields []Field
	byName map[string]int
}

// DescribeType builds the descriptor for T. The generic parameter closes the
// target type at compile time, so resolution can only fail when T is not a
// struct shape at all.
func DescribeType[T any]() (*TypeDescriptor, error) {
	return Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// Describe builds a descriptor for t, which must be a struct type or a
// pointer to one with at least one exported field.
func Describe(t reflect.Type) (*TypeDescriptor, error) {
	if t == nil {
		return nil, &TypeResolutionError{Reason: "nil type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &TypeResolutionError{Type: t, Reason: "target type must be a struct"}
	}

	d := &TypeDescriptor{
		typ:    t,
		byName: make(map[string]int),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("db")
		if tag == "-" {
			tag = ""
		}
		d.byName[sf.Name] = len(d.fields)
		d.fields = append(d.fields, Field{
			Name:  sf.Name,
			Index: i,
			Type:  sf.Type,
			Tag:   tag,
		})
	}
	if len(d.fields) == 0 {
		return nil, &TypeResolutionError{Type: t, Reason: "no exported fields to populate"}
	}
	return d, nil
}

// Type returns the described struct type.
func (d *TypeDescriptor) Type() reflect.Type {
	return d.typ
}

// Fields returns the descriptor's fields in declaration order. The returned
// slice must not be modified.
func (d *TypeDescriptor) Fields() []Field {
	return d.fields
}

// FieldByName looks up a field by its Go name.
func (d *TypeDescriptor) FieldByName(name string) (Field, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}
