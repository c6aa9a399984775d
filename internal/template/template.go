// Package template defines pipeline templates, reusable named blueprints of
// steps and their dependency structure, and the instantiation that turns a
// blueprint into a concrete pipeline.
package template

import (
	"time"

	"github.com/google/uuid"
	"github.com/vk/pipewright/internal/pipeline"
)

// StepDef is the blueprint for one step. Dependencies reference other steps
// in the same template by name; ids do not exist until instantiation.
type StepDef struct {
	Name      string
	Stage     pipeline.Stage
	Command   string // may contain ${VAR} placeholders
	DependsOn []string
}

// Template is an ordered catalog of step blueprints. Templates are authored
// by configuration, loaded once, and treated as immutable shared state: many
// pipelines may be instantiated from one template concurrently.
type Template struct {
	ID          string
	Name        string
	Description string
	// Defaults are per-template variable bindings with the lowest
	// precedence: caller variables override them, and the implicit
	// APP_ID/VERSION bindings override everything.
	Defaults map[string]string
	Steps    []*StepDef
	CreatedAt time.Time
}

// New returns an empty template with a fresh id.
func New(name, description string) *Template {
	return &Template{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddStep appends a step blueprint in declaration order.
func (t *Template) AddStep(name string, stage pipeline.Stage, command string, dependsOn ...string) {
	t.Steps = append(t.Steps, &StepDef{
		Name:      name,
		Stage:     stage,
		Command:   command,
		DependsOn: dependsOn,
	})
}

// Options control instantiation strictness. The zero value reproduces the
// permissive legacy behavior: dangling dependency names are dropped and
// unresolved ${VAR} placeholders pass through verbatim.
type Options struct {
	// StrictDeps rejects templates whose steps depend on undeclared names.
	StrictDeps bool
	// StrictVars rejects commands with unresolved placeholders after
	// merging all variable sources.
	StrictVars bool
}
