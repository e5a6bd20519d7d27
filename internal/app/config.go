package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DefinitionPath string // hcl file or directory
	SelectName     string // may be empty when exactly one select is defined

	// Query is applied as the filter query after opening.
	Query string
	// Open loads the collection even without a query.
	Open        bool
	Interactive bool

	OutputFormat string // json or yaml
	LogFormat    string
	LogLevel     string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefinitionPath == "" {
		return nil, errors.New("DefinitionPath is a required configuration field and cannot be empty")
	}
	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = "json"
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'json' or 'yaml'", cfg.OutputFormat)
	}
	return &cfg, nil
}
