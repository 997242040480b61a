// internal/domain/geo/resolver.go
package geo

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/address"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
)

// Strategy is one way of turning parsed address components into a coordinate
type Strategy interface {
	Name() string
	TryResolve(ctx context.Context, c address.Components) (Coordinate, bool)
}

// Resolution describes how an address was resolved
type Resolution struct {
	Components address.Components `json:"components"`
	Coordinate Coordinate         `json:"coordinate"`
	Strategy   string             `json:"strategy"`
}

// Resolver runs strategies in order; the first success wins. A terminal
// DefaultStrategy is always appended, so resolution cannot fail.
type Resolver struct {
	strategies []Strategy
	logger     logrus.FieldLogger
}

// NewResolver creates a resolver over strategies followed by the default
func NewResolver(logger logrus.FieldLogger, strategies ...Strategy) *Resolver {
	chain := make([]Strategy, 0, len(strategies)+1)
	chain = append(chain, strategies...)
	chain = append(chain, DefaultStrategy{})

	return &Resolver{
		strategies: chain,
		logger:     logger,
	}
}

// Resolve returns the coordinate for a free-text address
func (r *Resolver) Resolve(ctx context.Context, raw string) Coordinate {
	return r.ResolveDetailed(ctx, raw).Coordinate
}

// ResolveDetailed resolves raw and reports which strategy answered
func (r *Resolver) ResolveDetailed(ctx context.Context, raw string) Resolution {
	components := address.Parse(raw)

	for _, s := range r.strategies {
		c, ok := s.TryResolve(ctx, components)
		if !ok || !c.Valid() {
			continue
		}

		metrics.RecordGeocodeResolution(s.Name())
		entry := r.logger.WithFields(logrus.Fields{
			"strategy": s.Name(),
			"province": components.Province,
			"district": components.District,
			"ward":     components.Ward,
		})
		if _, isDefault := s.(DefaultStrategy); isDefault {
			entry.Warn("Geocoding exhausted, using default coordinate")
		} else {
			entry.Debug("Address resolved")
		}

		return Resolution{Components: components, Coordinate: c, Strategy: s.Name()}
	}

	// Unreachable while DefaultStrategy terminates the chain.
	return Resolution{Components: components, Coordinate: HanoiCenter, Strategy: DefaultStrategy{}.Name()}
}

// DefaultStrategy always answers with the Hanoi centre
type DefaultStrategy struct{}

// Name implements Strategy
func (DefaultStrategy) Name() string { return "default" }

// TryResolve implements Strategy
func (DefaultStrategy) TryResolve(context.Context, address.Components) (Coordinate, bool) {
	return HanoiCenter, true
}

// TableStrategy looks search terms up in a static table
type TableStrategy struct {
	table *Table
}

// NewTableStrategy creates a lookup strategy over table
func NewTableStrategy(table *Table) *TableStrategy {
	return &TableStrategy{table: table}
}

// Name implements Strategy
func (s *TableStrategy) Name() string { return "table" }

// TryResolve implements Strategy
func (s *TableStrategy) TryResolve(_ context.Context, c address.Components) (Coordinate, bool) {
	for _, term := range SearchTerms(c) {
		if coord, ok := s.table.Lookup(term); ok {
			return coord, true
		}
	}
	return Coordinate{}, false
}

// SearchTerms orders the lookup terms for an address. Hanoi addresses try
// the finest granularity first; elsewhere only provinces are tabulated, so
// the province goes first. The full normalized address is always last.
func SearchTerms(c address.Components) []string {
	var candidates []string
	if c.IsHanoi() {
		candidates = []string{
			address.Join(c.Ward, c.District),
			c.Ward,
			address.Join(c.District, c.Province),
			c.District,
			c.Province,
		}
	} else {
		candidates = []string{
			c.Province,
			address.Join(c.District, c.Province),
			c.District,
			address.Join(c.Ward, c.District),
			c.Ward,
		}
	}
	candidates = append(candidates, c.Normalized)

	terms := candidates[:0]
	for _, t := range candidates {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
