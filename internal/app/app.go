package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	inR    io.Reader
	logger *slog.Logger
	config *Config
	model  *config.Model
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. A failure to load the definitions is fatal and
// panics.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.DefinitionPath)
	if err != nil {
		panic(fmt.Errorf("failed to load definitions: %w", err))
	}
	logger.Debug("Definitions loaded and translated into unified model.",
		"selects", len(model.Selects),
		"data", len(model.Data),
		"remotes", len(model.Remotes),
	)

	return &App{
		outW:   outW,
		inR:    os.Stdin,
		logger: logger,
		config: appConfig,
		model:  model,
	}
}

// Model returns the loaded definitions. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
