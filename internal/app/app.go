package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/provcat/internal/catalog"
	"github.com/vk/provcat/internal/ctxlog"
	"github.com/vk/provcat/internal/loader"
	"github.com/vk/provcat/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	catalogs []*catalog.Catalog
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry,
// with every catalog tree already built.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Kind templates first, so catalog objects can be templated on them.
	reg := registry.New()
	if appConfig.TemplatesPath != "" {
		if err := reg.LoadTemplatesRecursively(ctx, appConfig.TemplatesPath); err != nil {
			// A failure to load templates is a fatal startup error.
			panic(fmt.Errorf("failed to load kind templates: %w", err))
		}
	}
	logger.Debug("Kind templates registered.", "kinds", reg.Kinds())

	cfg, err := loader.LoadCatalogs(ctx, appConfig.CatalogPath)
	if err != nil {
		panic(fmt.Errorf("failed to load catalogs: %w", err))
	}
	logger.Debug("Catalog definitions loaded.", "catalogs", len(cfg.Catalogs))

	catalogs, err := loader.Build(ctx, cfg, reg)
	if err != nil {
		panic(fmt.Errorf("failed to build catalogs: %w", err))
	}
	logger.Debug("Catalog trees built.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		catalogs: catalogs,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Catalogs returns the built catalog trees. This is primarily for testing.
func (a *App) Catalogs() []*catalog.Catalog {
	return a.catalogs
}
