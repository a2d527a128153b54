package scan

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/platinummonkey/rowbind/pkg/mapping"
)

// AlreadyRegisteredError reports a second resolver registration for the same
// target type. Registration is a once-per-process startup step; the first
// resolver wins and the duplicate is rejected rather than overwritten.
type AlreadyRegisteredError struct {
	Type reflect.Type
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("column resolver already registered for type %s", e.Type)
}

// Registry is the process-wide, type-keyed override source consulted by
// Scanner before its default column matching. It implements
// mapping.RegistrationSink. Inject one registry explicitly at startup; there
// is no package-level instance.
type Registry struct {
	resolvers sync.Map // reflect.Type -> mapping.Resolver
}

// NewRegistry creates an empty resolver registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterResolver installs r as the column resolver for t. A second
// registration for the same type fails with AlreadyRegisteredError. The
// store is atomic, so the first-wins guarantee holds even if registration
// races (callers should still register during single-threaded startup).
func (r *Registry) RegisterResolver(t reflect.Type, res mapping.Resolver) error {
	if t == nil {
		return fmt.Errorf("target type is required")
	}
	if res == nil {
		return fmt.Errorf("resolver is required")
	}
	if _, loaded := r.resolvers.LoadOrStore(t, res); loaded {
		return &AlreadyRegisteredError{Type: t}
	}
	return nil
}

// Resolver returns the installed resolver for t, if any.
func (r *Registry) Resolver(t reflect.Type) (mapping.Resolver, bool) {
	v, ok := r.resolvers.Load(t)
	if !ok {
		return nil, false
	}
	return v.(mapping.Resolver), true
}
