package bggohcl

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key or in a diagnostic.
func TraversalKey(t hcl.Traversal) string {
	// e.g., global.lattice[3]
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// CheckReferences reports every variable referenced by the attributes of body
// whose root name is not in allowed. Bodies containing nested blocks are
// reported as well, since parameter bodies are flat.
func CheckReferences(body hcl.Body, allowed ...string) hcl.Diagnostics {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for _, attr := range attrs {
		for _, trav := range attr.Expr.Variables() {
			if slices.Contains(allowed, trav.RootName()) {
				continue
			}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown reference",
				Detail:   fmt.Sprintf("Argument %q references %s; only %v can be referenced here.", attr.Name, TraversalKey(trav), allowed),
				Subject:  trav.SourceRange().Ptr(),
			})
		}
	}
	return diags
}
