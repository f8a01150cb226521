// Package bggohcl holds small helpers on top of hashicorp/hcl used by the
// configuration loader.
package bggohcl

import (
	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock searches a slice of blocks for the block of a given type.
// Every block after the first is reported as a duplicate. If no block is
// found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, typ string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != typ {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + typ + "\" block",
				Detail:   "Only one \"" + typ + "\" block is allowed; the first one is at " + found.DefRange.String() + ".",
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		found = block
	}
	return found, diags
}

// RequireUniqueBlock is FindUniqueBlock for a block that must exist.
func RequireUniqueBlock(blocks hcl.Blocks, typ string) (*hcl.Block, hcl.Diagnostics) {
	found, diags := FindUniqueBlock(blocks, typ)
	if found == nil && !diags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing \"" + typ + "\" block",
			Detail:   "a \"" + typ + "\" block is required in one of the configuration files.",
		})
	}
	return found, diags
}
