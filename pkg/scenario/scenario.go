// Package scenario runs browser scenarios step by step against the SqlLab
// editor.
package scenario

import (
	"context"

	"github.com/pingcap/tipocket-sqllab/pkg/netwatch"
)

// Step is one action or assertion of a scenario.
type Step interface {
	// Name describes the step in logs, history and spans.
	Name() string
	// Run performs the step. Failures are core.Failure errors.
	Run(ctx context.Context, env *Env) error
}

// Scenario is an ordered list of steps. It implements core.Case.
type Scenario struct {
	name   string
	skip   string
	routes []netwatch.Route
	steps  []Step
}

// New creates a scenario.
func New(name string, steps ...Step) *Scenario {
	return &Scenario{name: name, steps: steps}
}

// WithRoutes adds routes the scenario waits on. They replace configured
// routes of the same alias.
func (s *Scenario) WithRoutes(routes ...netwatch.Route) *Scenario {
	s.routes = append(s.routes, routes...)
	return s
}

// Skipped marks the scenario as disabled.
func (s *Scenario) Skipped(reason string) *Scenario {
	s.skip = reason
	return s
}

// Name implements core.Case.
func (s *Scenario) Name() string { return s.name }

// SkipReason implements core.Case.
func (s *Scenario) SkipReason() string { return s.skip }

// Routes returns the scenario's own routes.
func (s *Scenario) Routes() []netwatch.Route { return s.routes }

// Steps returns the steps in execution order.
func (s *Scenario) Steps() []Step { return s.steps }

// MergeRoutes overlays extra on base by alias, keeping base order.
func MergeRoutes(base, extra []netwatch.Route) []netwatch.Route {
	merged := make([]netwatch.Route, 0, len(base)+len(extra))
	idx := make(map[string]int)
	for _, r := range base {
		idx[r.Alias] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range extra {
		if i, ok := idx[r.Alias]; ok {
			merged[i] = r
			continue
		}
		idx[r.Alias] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
