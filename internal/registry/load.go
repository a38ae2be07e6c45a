package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/catalog"
	"github.com/vk/provcat/internal/constraint"
	"github.com/vk/provcat/internal/ctxlog"
	"github.com/vk/provcat/internal/fsutil"
	"github.com/vk/provcat/internal/hclutil"
	"github.com/vk/provcat/internal/schema"
)

// LoadTemplatesRecursively discovers every .hcl manifest under the given
// path, parses the kind blocks, and registers the resulting templates.
// Defaults are validated against their own declared constraint here, at
// load time, so templated objects never see a self-contradictory kind.
func (r *Registry) LoadTemplatesRecursively(ctx context.Context, templatesPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading kind templates...", "path", templatesPath)

	filePaths, err := fsutil.FindFilesByExtension(templatesPath, ".hcl")
	if err != nil {
		logger.Error("Failed to walk templates directory", "path", templatesPath, "error", err)
		return err
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl template files found in path", "path", templatesPath)
		return nil
	}

	parser := hclparse.NewParser()
	loaded := 0
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse template file %s: %w", filePath, diags)
		}

		var cfg schema.TemplateConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
			return fmt.Errorf("failed to decode template file %s: %w", filePath, diags)
		}

		for _, kd := range cfg.Kinds {
			kt, err := buildKindTemplate(kd)
			if err != nil {
				return fmt.Errorf("%s: %w", filePath, err)
			}
			if err := r.RegisterKind(kt); err != nil {
				return fmt.Errorf("%s: %w", filePath, err)
			}
			loaded++
		}
		logger.Debug("Loaded kind definitions from template file", "file", filePath)
	}

	logger.Info("Registry loaded kind templates.", "kinds_loaded", loaded)
	return nil
}

// buildKindTemplate converts a decoded kind block into a registered
// template, building constraint checkers from the type expressions.
func buildKindTemplate(kd *schema.KindDef) (*KindTemplate, error) {
	kt := &KindTemplate{
		Name:        kd.Name,
		Description: kd.Description,
		Fields:      make([]catalog.FieldTemplate, 0, len(kd.Fields)),
	}

	seen := make(map[string]struct{}, len(kd.Fields))
	for _, fd := range kd.Fields {
		if _, ok := seen[fd.Name]; ok {
			return nil, fmt.Errorf("kind %q declares field %q twice", kd.Name, fd.Name)
		}
		seen[fd.Name] = struct{}{}

		checker, err := buildChecker(kd.Name, fd)
		if err != nil {
			return nil, err
		}

		var def *cty.Value
		if fd.Default != nil {
			if checker != nil {
				if err := checker.Check(*fd.Default); err != nil {
					return nil, fmt.Errorf("kind %q, field %q: default violates its own constraint: %v", kd.Name, fd.Name, err)
				}
			}
			def = fd.Default
		}

		kt.Fields = append(kt.Fields, catalog.FieldTemplate{
			Name:       fd.Name,
			Constraint: checker,
			Default:    def,
		})
	}
	return kt, nil
}

func buildChecker(kind string, fd *schema.FieldDef) (constraint.Checker, error) {
	exact, hasExact, diags := hclutil.TypeConstraint(fd.Type)
	if diags.HasErrors() {
		return nil, fmt.Errorf("kind %q, field %q: invalid type: %w", kind, fd.Name, diags)
	}
	elem, hasVector, diags := hclutil.TypeConstraint(fd.VectorOf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("kind %q, field %q: invalid vector_of: %w", kind, fd.Name, diags)
	}

	switch {
	case hasExact && hasVector:
		return nil, fmt.Errorf("kind %q, field %q: type and vector_of are mutually exclusive", kind, fd.Name)
	case hasExact:
		return constraint.ExactType(exact), nil
	case hasVector:
		if !elem.IsPrimitiveType() {
			return nil, fmt.Errorf("kind %q, field %q: vector_of must name a primitive dtype", kind, fd.Name)
		}
		return constraint.NumericVector(elem), nil
	default:
		return nil, nil
	}
}
