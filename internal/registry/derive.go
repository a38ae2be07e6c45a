package registry

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/field"
)

// Built-in derive functions available to every catalog file. All are pure:
// they read their positional arguments and return a value.
var builtinDeriveFuncs = map[string]field.DeriveFunc{
	"sum":     deriveSum,
	"product": deriveProduct,
	"mean":    deriveMean,
	"concat":  deriveConcat,
}

func requireNumbers(name string, args []cty.Value) error {
	for i, a := range args {
		if !a.Type().Equals(cty.Number) {
			return fmt.Errorf("%s: argument %d is %s, want number", name, i, a.Type().FriendlyName())
		}
	}
	return nil
}

func deriveSum(args ...cty.Value) (cty.Value, error) {
	if err := requireNumbers("sum", args); err != nil {
		return cty.NilVal, err
	}
	total := cty.Zero
	for _, a := range args {
		total = total.Add(a)
	}
	return total, nil
}

func deriveProduct(args ...cty.Value) (cty.Value, error) {
	if err := requireNumbers("product", args); err != nil {
		return cty.NilVal, err
	}
	product := cty.NumberIntVal(1)
	for _, a := range args {
		product = product.Multiply(a)
	}
	return product, nil
}

func deriveMean(args ...cty.Value) (cty.Value, error) {
	if len(args) == 0 {
		return cty.NilVal, fmt.Errorf("mean: no arguments")
	}
	total, err := deriveSum(args...)
	if err != nil {
		return cty.NilVal, err
	}
	return total.Divide(cty.NumberIntVal(int64(len(args)))), nil
}

func deriveConcat(args ...cty.Value) (cty.Value, error) {
	var b strings.Builder
	for i, a := range args {
		if !a.Type().Equals(cty.String) {
			return cty.NilVal, fmt.Errorf("concat: argument %d is %s, want string", i, a.Type().FriendlyName())
		}
		b.WriteString(a.AsString())
	}
	return cty.StringVal(b.String()), nil
}
