package scan

import (
	"reflect"
	"strings"

	"github.com/platinummonkey/rowbind/pkg/mapping"
)

// discard marks a result column with no destination field.
const discard = -1

type planKey struct {
	typ     reflect.Type
	columns string
}

func newPlanKey(t reflect.Type, columns []string) planKey {
	return planKey{typ: t, columns: strings.Join(columns, "\x1f")}
}

// plan binds each result column to a field index on the target struct, or
// discard. Built once per (type, column set) and cached; read-only afterwards.
type plan struct {
	fields    []int
	overrides int // columns bound through the registered resolver
	fallbacks int // columns bound through tag or name matching
	unmapped  int // columns with no destination
}

// buildPlan resolves every column in precedence order: registered override,
// exact `db` tag, case-insensitive field name. Unresolved columns are
// discarded.
func buildPlan(desc *mapping.TypeDescriptor, resolver mapping.Resolver, columns []string) *plan {
	byTag := make(map[string]int)
	byFold := make(map[string]int)
	for _, f := range desc.Fields() {
		if f.Tag != "" {
			byTag[f.Tag] = f.Index
		}
		byFold[strings.ToLower(f.Name)] = f.Index
	}

	p := &plan{fields: make([]int, len(columns))}
	for i, col := range columns {
		if resolver != nil {
			if f, ok := resolver(col); ok {
				p.fields[i] = f.Index
				p.overrides++
				continue
			}
		}
		if idx, ok := byTag[col]; ok {
			p.fields[i] = idx
			p.fallbacks++
			continue
		}
		if idx, ok := byFold[strings.ToLower(col)]; ok {
			p.fields[i] = idx
			p.fallbacks++
			continue
		}
		p.fields[i] = discard
		p.unmapped++
	}
	return p
}
