package app

import (
	"errors"
	"time"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// TemplatesPath points at a template definition file or a directory of
	// them (.hcl, .yaml, .yml).
	TemplatesPath string

	// ServePort starts the HTTP API on this port when > 0.
	ServePort int

	// One-shot mode: instantiate TemplateName for SubjectID/Version with
	// Variables, execute it, and print the report.
	TemplateName string
	SubjectID    string
	Version      string
	Variables    map[string]string

	LogFormat   string
	LogLevel    string
	WorkerCount int
	StepTimeout time.Duration
	WorkDir     string

	StrictDeps bool
	StrictVars bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatesPath == "" {
		return nil, errors.New("TemplatesPath is a required configuration field and cannot be empty")
	}
	if cfg.ServePort <= 0 && cfg.TemplateName == "" {
		return nil, errors.New("either a serve port or a template to run must be given")
	}
	if cfg.TemplateName != "" {
		if cfg.SubjectID == "" {
			return nil, errors.New("one-shot mode requires a subject id")
		}
		if cfg.Version == "" {
			return nil, errors.New("one-shot mode requires a version")
		}
	}
	return &cfg, nil
}
