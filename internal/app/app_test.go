package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplates = `
kind "galaxy" {
  field "name" {
    type    = string
    default = "unnamed"
  }
  field "ra" {
    type = number
  }
}
`

const testCatalogs = `
catalog "local_group" {
  object "galaxy" "M31" {
    value "name" {
      value  = "Andromeda"
      source = "NED"
    }
    value "ra" {
      value  = 10.5
      source = "NED"
    }
  }

  object "galaxy" "M32" {
    parent = "M31"
  }
}
`

func newTestApp(t *testing.T) (*App, *Config, *bytes.Buffer) {
	t.Helper()

	templatesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "kinds.hcl"), []byte(testTemplates), 0600))
	catalogDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "objects.hcl"), []byte(testCatalogs), 0600))

	cfg, err := NewConfig(Config{
		CatalogPath:   catalogDir,
		TemplatesPath: templatesDir,
		LogLevel:      "error",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return NewApp(out, cfg), cfg, out
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err, "a catalog path is required")

	cfg, err := NewConfig(Config{CatalogPath: "x"})
	require.NoError(t, err)
	assert.Equal(t, "preorder", cfg.Order, "traversal order defaults to preorder")
}

func TestAppRunReport(t *testing.T) {
	a, cfg, out := newTestApp(t)
	require.Len(t, a.Catalogs(), 1)

	require.NoError(t, a.Run(context.Background(), cfg))

	report := out.String()
	assert.Contains(t, report, `Catalog "local_group" (3 nodes)`)
	assert.Contains(t, report, `M31 (galaxy)`)
	assert.Contains(t, report, `name = "Andromeda" [Source: NED]`)
	assert.Contains(t, report, `ra = 10.5 [Source: NED]`)

	// M32 never observed a name, so the template default substitutes.
	assert.Contains(t, report, `name = "unnamed" [default]`)
	assert.Contains(t, report, `ra = <empty>`)
}

func TestAppRunRejectsUnknownOrder(t *testing.T) {
	a, cfg, _ := newTestApp(t)
	cfg.Order = "sideways"
	assert.Error(t, a.Run(context.Background(), cfg))
}

func TestNewAppPanicsOnBadCatalog(t *testing.T) {
	catalogDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "objects.hcl"), []byte(`catalog "c" {`), 0600))

	cfg, err := NewConfig(Config{CatalogPath: catalogDir, LogLevel: "error"})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg)
	})
}
