package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/vk/provcat/internal/catalog"
	"github.com/vk/provcat/internal/ctxlog"
	"github.com/vk/provcat/internal/field"
	"github.com/vk/provcat/internal/tree"
)

// Run walks every built catalog in the configured traversal order and
// writes a provenance report to the output writer. Derived values are
// evaluated here, on first read.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	order, err := tree.ParseOrder(appConfig.Order)
	if err != nil {
		return err
	}

	for _, cat := range a.catalogs {
		fmt.Fprintf(a.outW, "Catalog %q (%d nodes)\n", cat.Name(), cat.TreeNode().NodeCount())
		_, err := cat.TreeNode().Visit(func(n *tree.Node) any {
			obj, ok := n.Owner().(*catalog.TemplatedObject)
			if !ok {
				return nil
			}
			a.reportObject(obj, depth(n))
			return nil
		}, order)
		if err != nil {
			return fmt.Errorf("catalog %q: %w", cat.Name(), err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) reportObject(obj *catalog.TemplatedObject, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(a.outW, "%s%s (%s)\n", indent, obj.Name(), obj.Kind())

	for _, name := range obj.FieldNames() {
		f, err := obj.Field(catalog.ByName(name))
		if err != nil {
			continue
		}
		fmt.Fprintf(a.outW, "%s  %s = %s\n", indent, name, renderCurrent(f))
	}
}

// renderCurrent formats a field's current value with its provenance. Empty
// fields and failed derivations render as annotations rather than aborting
// the whole report.
func renderCurrent(f *field.Field) string {
	v, err := f.Current()
	if errors.Is(err, field.ErrEmptyField) {
		return "<empty>"
	}
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	payload, err := v.Value()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	rendered := strings.TrimSpace(string(hclwrite.TokensForValue(payload).Bytes()))
	if src := v.Source(); src != nil {
		return fmt.Sprintf("%s [%s]", rendered, src)
	}
	return rendered + " [default]"
}

// depth counts tree edges between a node and its catalog root.
func depth(n *tree.Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
