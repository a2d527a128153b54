package scan

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platinummonkey/rowbind/pkg/mapping"
	"github.com/platinummonkey/rowbind/pkg/observability"
)

// Querier is the query execution surface the scanner materializes from.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const defaultPlanCacheSize = 1024

// Scanner materializes rows into struct values. It is safe for concurrent
// use once mapper registration has completed.
type Scanner struct {
	registry      *Registry
	plans         *lru.Cache[planKey, *plan]
	planCacheSize int
	descs         sync.Map // reflect.Type -> *mapping.TypeDescriptor
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger attaches a structured logger; unmapped columns are reported at
// debug level when a plan is built.
func WithLogger(logger *observability.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithMetrics attaches Prometheus metrics for scan operations and the plan
// cache. A nil metrics value is ignored.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithPlanCacheSize overrides the scan plan LRU capacity.
func WithPlanCacheSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.planCacheSize = n
		}
	}
}

// NewScanner creates a Scanner consulting registry for declared column
// overrides.
func NewScanner(registry *Registry, opts ...Option) (*Scanner, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	s := &Scanner{
		registry:      registry,
		planCacheSize: defaultPlanCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	plans, err := lru.New[planKey, *plan](s.planCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan cache: %w", err)
	}
	s.plans = plans
	return s, nil
}

// descriptor returns the cached type descriptor for t, building it on first
// use.
func (s *Scanner) descriptor(t reflect.Type) (*mapping.TypeDescriptor, error) {
	if v, ok := s.descs.Load(t); ok {
		return v.(*mapping.TypeDescriptor), nil
	}
	desc, err := mapping.Describe(t)
	if err != nil {
		return nil, err
	}
	v, _ := s.descs.LoadOrStore(t, desc)
	return v.(*mapping.TypeDescriptor), nil
}

func (s *Scanner) planFor(t reflect.Type, columns []string) (*plan, error) {
	key := newPlanKey(t, columns)
	if p, ok := s.plans.Get(key); ok {
		s.observePlanCache(true)
		return p, nil
	}
	s.observePlanCache(false)

	desc, err := s.descriptor(t)
	if err != nil {
		return nil, err
	}
	var resolver mapping.Resolver
	if res, ok := s.registry.Resolver(t); ok {
		resolver = res
	}
	p := buildPlan(desc, resolver, columns)
	if p.unmapped > 0 && s.logger != nil {
		s.logger.
			WithField("target_type", t.String()).
			WithField("unmapped_columns", p.unmapped).
			Debug("discarding result columns without a destination field")
	}
	s.observeResolutions(t, p)
	s.plans.Add(key, p)
	return p, nil
}

func (s *Scanner) observePlanCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.PlanCacheHitsTotal.Inc()
	} else {
		s.metrics.PlanCacheMissesTotal.Inc()
	}
}

func (s *Scanner) observeResolutions(t reflect.Type, p *plan) {
	if s.metrics == nil {
		return
	}
	name := t.String()
	s.metrics.ColumnResolutionsTotal.WithLabelValues(name, "override").Add(float64(p.overrides))
	s.metrics.ColumnResolutionsTotal.WithLabelValues(name, "fallback").Add(float64(p.fallbacks))
	s.metrics.ColumnResolutionsTotal.WithLabelValues(name, "discarded").Add(float64(p.unmapped))
}

func (s *Scanner) observeScan(t reflect.Type, status string, rows int, start time.Time) {
	if s.metrics == nil {
		return
	}
	name := t.String()
	s.metrics.ScanOperationsTotal.WithLabelValues(name, status).Inc()
	s.metrics.ScanDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if rows > 0 {
		s.metrics.ScanRowsTotal.WithLabelValues(name).Add(float64(rows))
	}
}

// All executes query on q and materializes every result row into a T.
func All[T any](ctx context.Context, s *Scanner, q Querier, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return Rows[T](s, rows)
}

// One executes query on q and materializes the first result row. It returns
// sql.ErrNoRows when the result is empty; extra rows are ignored.
func One[T any](ctx context.Context, s *Scanner, q Querier, query string, args ...any) (T, error) {
	var zero T
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out, err := Rows[T](s, rows)
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, sql.ErrNoRows
	}
	return out[0], nil
}

// Rows materializes an already-executed row set into a slice of T. The
// caller retains ownership of rows and must close it.
func Rows[T any](s *Scanner, rows *sql.Rows) ([]T, error) {
	start := time.Now()
	t := reflect.TypeOf((*T)(nil)).Elem()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	p, err := s.planFor(t, columns)
	if err != nil {
		s.observeScan(t, "error", 0, start)
		return nil, err
	}

	var out []T
	dests := make([]any, len(columns))
	for rows.Next() {
		var item T
		rv := reflect.ValueOf(&item).Elem()
		for i, idx := range p.fields {
			if idx == discard {
				dests[i] = new(any)
				continue
			}
			dests[i] = rv.Field(idx).Addr().Interface()
		}
		if err := rows.Scan(dests...); err != nil {
			s.observeScan(t, "error", len(out), start)
			return nil, fmt.Errorf("failed to scan row into %s: %w", t, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		s.observeScan(t, "error", len(out), start)
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	s.observeScan(t, "success", len(out), start)
	return out, nil
}
