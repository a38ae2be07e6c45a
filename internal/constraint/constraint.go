// Package constraint defines the type-constraint checker contract used by
// fields, plus the two built-in checkers: exact cty type match and
// numeric-vector element match. External checkers plug in by implementing
// the same Checker interface.
package constraint

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Checker decides whether a candidate value satisfies a constraint. Check
// returns nil on pass and a descriptive error on fail; callers wrap that
// error into their own taxonomy.
type Checker interface {
	Check(v cty.Value) error
	Describe() string
}

// ExactType returns a checker that accepts only values whose type equals
// the given cty type.
func ExactType(want cty.Type) Checker {
	return exactType{want: want}
}

type exactType struct {
	want cty.Type
}

func (c exactType) Check(v cty.Value) error {
	if v == cty.NilVal {
		return fmt.Errorf("nil value cannot satisfy type %s", c.want.FriendlyName())
	}
	if !v.Type().Equals(c.want) {
		return fmt.Errorf("value of type %s does not match required type %s",
			v.Type().FriendlyName(), c.want.FriendlyName())
	}
	return nil
}

func (c exactType) Describe() string {
	return c.want.FriendlyName()
}

// NumericVector returns a checker that accepts list, set, and tuple values
// whose elements are all of the given primitive type. The element type is
// the vector's dtype: NumericVector(cty.Number) accepts [1, 2, 3] but not
// ["a"] or a bare 3.
func NumericVector(elem cty.Type) Checker {
	return numericVector{elem: elem}
}

type numericVector struct {
	elem cty.Type
}

func (c numericVector) Check(v cty.Value) error {
	if v == cty.NilVal {
		return fmt.Errorf("nil value cannot satisfy %s", c.Describe())
	}
	t := v.Type()
	switch {
	case t.IsListType() || t.IsSetType():
		if !t.ElementType().Equals(c.elem) {
			return fmt.Errorf("element type %s does not match required dtype %s",
				t.ElementType().FriendlyName(), c.elem.FriendlyName())
		}
	case t.IsTupleType():
		for i, et := range t.TupleElementTypes() {
			if !et.Equals(c.elem) {
				return fmt.Errorf("element %d has type %s, want dtype %s",
					i, et.FriendlyName(), c.elem.FriendlyName())
			}
		}
	default:
		return fmt.Errorf("value of type %s is not a vector of %s",
			t.FriendlyName(), c.elem.FriendlyName())
	}
	return nil
}

func (c numericVector) Describe() string {
	return "vector of " + c.elem.FriendlyName()
}
