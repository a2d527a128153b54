package directory

import (
	"fmt"

	"github.com/platinummonkey/rowbind/pkg/mapping"
	"github.com/platinummonkey/rowbind/pkg/scan"
)

// NewPersonMapper declares the legacy column overrides for Person.
func NewPersonMapper() (*mapping.Mapper[Person], error) {
	m, err := mapping.NewMapper[Person]()
	if err != nil {
		return nil, err
	}
	if err := m.Declare("firstName", func(p *Person) any { return &p.Name }); err != nil {
		return nil, err
	}
	if err := m.Declare("lastName", func(p *Person) any { return &p.Surname }); err != nil {
		return nil, err
	}
	if err := m.Declare("dateOfBirth", func(p *Person) any { return &p.Birthday }); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterMappers installs every directory mapper into registry. Call once
// during startup, before serving; any error here must abort startup.
func RegisterMappers(registry *scan.Registry) error {
	m, err := NewPersonMapper()
	if err != nil {
		return fmt.Errorf("failed to build person mapper: %w", err)
	}
	if err := m.InstallInto(registry); err != nil {
		return fmt.Errorf("failed to install person mapper: %w", err)
	}
	return nil
}
