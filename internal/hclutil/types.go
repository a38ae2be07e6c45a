// Package hclutil holds small HCL helpers shared by the manifest loaders.
package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

// TypeConstraint converts an HCL type expression (`string`, `number`,
// `list(number)`, ...) into its cty type. A nil expression reports no type.
func TypeConstraint(expr hcl.Expression) (cty.Type, bool, hcl.Diagnostics) {
	if expr == nil {
		return cty.NilType, false, nil
	}
	// Attributes decoded as optional still carry an expression whose value
	// is a null literal; treat that as absent.
	if v, diags := expr.Value(nil); !diags.HasErrors() && v.IsNull() {
		return cty.NilType, false, nil
	}
	t, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, false, diags
	}
	return t, true, nil
}
