// Package app encapsulates the application's dependencies, configuration,
// and lifecycle: loading templates, wiring the engine, and running either
// the HTTP API or a one-shot pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/engine"
	"github.com/vk/pipewright/internal/fsutil"
	"github.com/vk/pipewright/internal/runner"
	"github.com/vk/pipewright/internal/template"
)

// App owns an isolated logger and engine built from one Config.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	engine  *engine.Engine
	config  *Config
	loaders []template.Loader
}

// NewApp constructs the application: logger, step runner, engine, and all
// templates found under the configured path. A nil stepRunner selects the
// local shell runner.
func NewApp(outW io.Writer, cfg *Config, stepRunner runner.StepRunner, loaders ...template.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if stepRunner == nil {
		stepRunner = runner.NewShell(cfg.WorkDir)
	}

	eng := engine.New(stepRunner, engine.Config{
		WorkerCount: cfg.WorkerCount,
		StepTimeout: cfg.StepTimeout,
		Strict: template.Options{
			StrictDeps: cfg.StrictDeps,
			StrictVars: cfg.StrictVars,
		},
	})

	a := &App{outW: outW, logger: logger, engine: eng, config: cfg, loaders: loaders}
	if err := a.loadTemplates(ctx); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	return a, nil
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// loadTemplates discovers template files under the configured path and runs
// each through the first loader that handles it.
func (a *App) loadTemplates(ctx context.Context) error {
	files, err := fsutil.FindFiles(a.config.TemplatesPath, ".hcl", ".yaml", ".yml")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found under %s", a.config.TemplatesPath)
	}

	count := 0
	for _, path := range files {
		loader := a.loaderFor(path)
		if loader == nil {
			a.logger.Warn("No loader handles template file, skipping.", "path", path)
			continue
		}
		templates, err := loader.LoadFile(ctx, path)
		if err != nil {
			return err
		}
		for _, t := range templates {
			a.engine.AddTemplate(t)
			count++
		}
	}
	a.logger.Info("Templates loaded.", "count", count, "path", a.config.TemplatesPath)
	return nil
}

func (a *App) loaderFor(path string) template.Loader {
	for _, l := range a.loaders {
		if l.Handles(path) {
			return l
		}
	}
	return nil
}
