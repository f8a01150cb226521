package config

import (
	"errors"
	"fmt"
)

// Validate checks the parts of the model that do not need the registry.
func (m *Model) Validate() error {
	var errs []error
	if m.Global == nil {
		return errors.New("missing global block")
	}
	g := m.Global

	if len(g.Lattice) == 0 {
		errs = append(errs, errors.New("global.lattice must not be empty"))
	}
	for i, d := range g.Lattice {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("global.lattice[%d] must be positive, got %d", i, d))
		}
	}
	if g.Trajectory.Step <= 0 {
		errs = append(errs, fmt.Errorf("global.trajectory.step must be positive, got %d", g.Trajectory.Step))
	}
	if g.Trajectory.End < g.Trajectory.Start {
		errs = append(errs, fmt.Errorf("global.trajectory.end %d is before start %d", g.Trajectory.End, g.Trajectory.Start))
	}
	switch g.CachedPolicy {
	case "", "floor", "live":
	default:
		errs = append(errs, fmt.Errorf("global.cached_policy must be floor or live, got %q", g.CachedPolicy))
	}

	seen := make(map[string]bool, len(m.Modules))
	for _, inst := range m.Modules {
		if seen[inst.Name] {
			errs = append(errs, fmt.Errorf("%s: module %q is defined more than once", inst.DeclRange, inst.Name))
		}
		seen[inst.Name] = true
	}
	return errors.Join(errs...)
}
