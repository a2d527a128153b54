package mapping

import (
	"fmt"
	"reflect"
)

// TypeResolutionError indicates the target type for a mapper or descriptor
// could not be resolved to a settable struct shape. This is a configuration
// error and should abort process startup.
type TypeResolutionError struct {
	Type   reflect.Type
	Reason string
}

func (e *TypeResolutionError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("cannot resolve target type: %s", e.Reason)
	}
	return fmt.Sprintf("cannot resolve target type %s: %s", e.Type, e.Reason)
}

// InvalidAccessorError indicates a Declare call's accessor did not select a
// direct field of the target struct. No entry is added for the column.
type InvalidAccessorError struct {
	Type   reflect.Type
	Column string
	Reason string
}

func (e *InvalidAccessorError) Error() string {
	return fmt.Sprintf("invalid accessor for column %q on %s: %s", e.Column, e.Type, e.Reason)
}

// DuplicateColumnError indicates a column name was declared twice on the
// same mapper instance. The first declaration is preserved.
type DuplicateColumnError struct {
	Type   reflect.Type
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q already declared on mapper for %s", e.Column, e.Type)
}
