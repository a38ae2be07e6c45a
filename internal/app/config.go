package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPath   string // hcl catalog files
	TemplatesPath string // hcl kind manifests

	Order     string // traversal order for the report
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.CatalogPath == "" {
		return nil, errors.New("CatalogPath is a required configuration field and cannot be empty")
	}
	if cfg.Order == "" {
		cfg.Order = "preorder"
	}

	return &cfg, nil
}
