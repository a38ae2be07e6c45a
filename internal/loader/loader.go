// Package loader turns parsed catalog files into live catalog trees: it
// creates the objects, links the parent structure, applies observed values,
// and wires derived values to their dependency fields.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/provcat/internal/catalog"
	"github.com/vk/provcat/internal/ctxlog"
	"github.com/vk/provcat/internal/field"
	"github.com/vk/provcat/internal/fsutil"
	"github.com/vk/provcat/internal/registry"
	"github.com/vk/provcat/internal/schema"
)

// LoadCatalogs parses every .hcl catalog file at the given path (a file or
// a directory) into one merged configuration.
func LoadCatalogs(ctx context.Context, path string) (*schema.CatalogConfig, error) {
	logger := ctxlog.FromContext(ctx)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no .hcl catalog files found at %s", path)
	}

	parser := hclparse.NewParser()
	merged := &schema.CatalogConfig{}
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", filePath, diags)
		}
		var cfg schema.CatalogConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode catalog file %s: %w", filePath, diags)
		}
		merged.Catalogs = append(merged.Catalogs, cfg.Catalogs...)
		logger.Debug("Loaded catalog definitions", "file", filePath, "catalogs", len(cfg.Catalogs))
	}
	return merged, nil
}

// Build constructs the catalog trees described by the configuration. The
// work runs in passes, so every object exists before parents are linked and
// every field holds its observed values before derivations are wired.
func Build(ctx context.Context, cfg *schema.CatalogConfig, reg *registry.Registry) ([]*catalog.Catalog, error) {
	logger := ctxlog.FromContext(ctx)

	var catalogs []*catalog.Catalog
	for _, cd := range cfg.Catalogs {
		cat, err := buildCatalog(cd, reg)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", cd.Name, err)
		}
		logger.Debug("Built catalog tree.", "catalog", cd.Name, "nodes", cat.TreeNode().NodeCount())
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

func buildCatalog(cd *schema.CatalogDef, reg *registry.Registry) (*catalog.Catalog, error) {
	cat := catalog.NewCatalog(cd.Name)
	objects := make(map[string]*catalog.TemplatedObject, len(cd.Objects))

	// Pass 1: create every object.
	for _, od := range cd.Objects {
		if _, ok := objects[od.Name]; ok {
			return nil, fmt.Errorf("object %q is defined twice", od.Name)
		}
		obj, err := catalog.NewTemplatedObject(od.Name, od.Kind, reg)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", od.Name, err)
		}
		objects[od.Name] = obj
	}

	// Pass 2: link parents.
	for _, od := range cd.Objects {
		obj := objects[od.Name]
		var parent catalog.Element = cat
		if od.Parent != "" {
			p, ok := objects[od.Parent]
			if !ok {
				return nil, fmt.Errorf("object %q: unknown parent %q", od.Name, od.Parent)
			}
			parent = p
		}
		if err := obj.SetParent(parent); err != nil {
			return nil, fmt.Errorf("object %q: %w", od.Name, err)
		}
	}

	// Pass 3: observed values.
	for _, od := range cd.Objects {
		obj := objects[od.Name]
		var marked []*schema.ValueDef
		for _, vd := range od.Values {
			if err := obj.Set(catalog.ByName(vd.Field), field.ObservedPair(vd.Value, vd.Source)); err != nil {
				return nil, fmt.Errorf("object %q: %w", od.Name, err)
			}
			if vd.Current {
				marked = append(marked, vd)
			}
		}
		// Re-select every value explicitly marked current, one per field;
		// fields without a mark keep the last written value selected.
		for _, vd := range marked {
			if err := obj.Set(catalog.ByName(vd.Field), field.SelectSource(vd.Source)); err != nil {
				return nil, fmt.Errorf("object %q: %w", od.Name, err)
			}
		}
	}

	// Pass 4: derived values.
	for _, od := range cd.Objects {
		obj := objects[od.Name]
		for _, dd := range od.Derives {
			if err := wireDerive(obj, dd, objects, reg); err != nil {
				return nil, fmt.Errorf("object %q, derive %q: %w", od.Name, dd.Field, err)
			}
		}
	}

	return cat, nil
}

// wireDerive attaches one derived value. Dependencies name fields on the
// same object, or "object.field" anywhere in the catalog.
func wireDerive(obj *catalog.TemplatedObject, dd *schema.DeriveDef, objects map[string]*catalog.TemplatedObject, reg *registry.Registry) error {
	fn, err := reg.DeriveFunc(dd.Function)
	if err != nil {
		return err
	}

	deps := make([]field.Handle, 0, len(dd.DependsOn))
	for _, ref := range dd.DependsOn {
		owner := obj.Object
		name := ref
		if before, after, found := strings.Cut(ref, "."); found {
			other, ok := objects[before]
			if !ok {
				return fmt.Errorf("dependency %q names an unknown object", ref)
			}
			owner = other.Object
			name = after
		}
		f, err := owner.Field(catalog.ByName(name))
		if err != nil {
			return fmt.Errorf("dependency %q: %w", ref, err)
		}
		deps = append(deps, f.Handle())
	}

	src := any(nil)
	if dd.Source != "" {
		src = dd.Source
	}
	dv, err := field.NewDerived(fn, deps, src)
	if err != nil {
		return err
	}
	return obj.Set(catalog.ByName(dd.Field), field.WithValue(dv))
}
