package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/fieldgridgo/internal/config"
	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	evalCtx *hcl.EvalContext
}

var _ config.Converter = (*Converter)(nil)

// NewConverter creates a converter whose expressions can reference the
// global settings as `global`.
func NewConverter(g *config.Global) (*Converter, error) {
	global, err := globalValue(g)
	if err != nil {
		return nil, err
	}
	return &Converter{
		evalCtx: &hcl.EvalContext{
			Variables: map[string]cty.Value{"global": global},
		},
	}, nil
}

// DecodeBody decodes a module parameter body into target, a pointer to a
// struct with `hcl` tags.
func (c *Converter) DecodeBody(ctx context.Context, body hcl.Body, target any) error {
	ctxlog.FromContext(ctx).Debug("Decoding module parameters.", "target", fmt.Sprintf("%T", target))
	if diags := gohcl.DecodeBody(body, c.evalCtx, target); diags.HasErrors() {
		return diags
	}
	return nil
}

// globalValue exposes the run-wide settings to parameter expressions.
func globalValue(g *config.Global) (cty.Value, error) {
	lattice, err := gocty.ToCtyValue(g.Lattice, cty.List(cty.Number))
	if err != nil {
		return cty.NilVal, fmt.Errorf("converting global.lattice: %w", err)
	}
	volume := 1
	for _, d := range g.Lattice {
		volume *= d
	}
	trajectory, err := gocty.ToCtyValue(map[string]int{
		"start": g.Trajectory.Start,
		"end":   g.Trajectory.End,
		"step":  g.Trajectory.Step,
	}, cty.Map(cty.Number))
	if err != nil {
		return cty.NilVal, fmt.Errorf("converting global.trajectory: %w", err)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"run_id":      cty.StringVal(g.RunID),
		"lattice":     lattice,
		"volume":      cty.NumberIntVal(int64(volume)),
		"results_dir": cty.StringVal(g.ResultsDir),
		"trajectory":  trajectory,
	}), nil
}
