package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/pipewright/internal/api"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/pipeline"
)

// Run executes the main application logic: serve the HTTP API when a port
// is configured, otherwise run one pipeline to completion and print its
// report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.ServePort > 0 {
		server := api.NewServer(a.engine, a.logger)
		return server.ListenAndServe(ctx, a.config.ServePort)
	}
	return a.runOnce(ctx)
}

// runOnce instantiates and executes a single pipeline, then writes the full
// report as JSON to the application's output writer.
func (a *App) runOnce(ctx context.Context) error {
	pipelineID, err := a.engine.Instantiate(ctx,
		a.config.TemplateName, a.config.SubjectID, a.config.Version, a.config.Variables)
	if err != nil {
		return err
	}

	status, execErr := a.engine.Execute(ctx, pipelineID)

	report, err := a.engine.Pipeline(pipelineID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if execErr != nil {
		return fmt.Errorf("pipeline %s: %w", pipelineID, execErr)
	}
	if status != pipeline.StatusSucceeded {
		return fmt.Errorf("pipeline %s finished with status %s", pipelineID, status)
	}
	return nil
}
