package template

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/vars"
)

var (
	// ErrDanglingDependency is returned in strict mode when a step depends
	// on a name the template never declares.
	ErrDanglingDependency = errors.New("dangling dependency")
	// ErrCyclicTemplate is returned when the declared dependencies form a
	// cycle. Cyclic templates are rejected here rather than detected as a
	// runtime stall.
	ErrCyclicTemplate = errors.New("cyclic template")
	// ErrDuplicateStep is returned when two steps share a name, which would
	// make dependency wiring ambiguous.
	ErrDuplicateStep = errors.New("duplicate step name")
)

// Instantiate produces a concrete pipeline from the template.
//
// Variable precedence, lowest to highest: template defaults, caller
// variables, then the implicit APP_ID/VERSION bindings derived from the
// subject id and version arguments. The implicit bindings deliberately win
// over caller-supplied values of the same name.
func (t *Template) Instantiate(subjectID, version string, variables map[string]string, opts Options) (*pipeline.Pipeline, error) {
	if err := t.validate(opts); err != nil {
		return nil, err
	}

	bindings := make(map[string]string, len(t.Defaults)+len(variables)+2)
	for k, v := range t.Defaults {
		bindings[k] = v
	}
	for k, v := range variables {
		bindings[k] = v
	}
	bindings["APP_ID"] = subjectID
	bindings["VERSION"] = version

	p := pipeline.New(t.Name, subjectID, version)

	// First pass: mint ids, substitute variables, create pending steps.
	nameToID := make(map[string]string, len(t.Steps))
	created := make([]*pipeline.Step, 0, len(t.Steps))
	for _, def := range t.Steps {
		command := vars.Expand(def.Command, bindings)
		if opts.StrictVars {
			var err error
			command, err = vars.ExpandStrict(def.Command, bindings)
			if err != nil {
				return nil, fmt.Errorf("step %q: %w", def.Name, err)
			}
		}
		step := pipeline.NewStep(uuid.NewString(), def.Name, def.Stage, command)
		p.AddStep(step)
		created = append(created, step)
		nameToID[def.Name] = step.ID
	}

	// Second pass: resolve dependency names now that every id exists.
	// Dangling names were either rejected by validate (strict mode) or are
	// silently dropped here (permissive legacy behavior).
	for i, def := range t.Steps {
		step := created[i]
		for _, depName := range def.DependsOn {
			if depID, ok := nameToID[depName]; ok {
				step.Dependencies = append(step.Dependencies, depID)
			}
		}
	}

	return p, nil
}

// validate checks structural soundness before any pipeline state exists.
func (t *Template) validate(opts Options) error {
	declared := make(map[string]bool, len(t.Steps))
	for _, def := range t.Steps {
		if declared[def.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateStep, def.Name)
		}
		declared[def.Name] = true
	}

	if opts.StrictDeps {
		for _, def := range t.Steps {
			for _, depName := range def.DependsOn {
				if !declared[depName] {
					return fmt.Errorf("%w: step %q depends on undeclared %q", ErrDanglingDependency, def.Name, depName)
				}
			}
		}
	}

	return t.detectCycles()
}

// detectCycles runs a depth-first search over the declared dependency names.
// Dangling names are ignored here; they cannot participate in a cycle.
func (t *Template) detectCycles() error {
	deps := make(map[string][]string, len(t.Steps))
	declared := make(map[string]bool, len(t.Steps))
	for _, def := range t.Steps {
		declared[def.Name] = true
	}
	for _, def := range t.Steps {
		for _, depName := range def.DependsOn {
			if declared[depName] {
				deps[def.Name] = append(deps[def.Name], depName)
			}
		}
	}

	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		visiting[name] = true
		for _, dep := range deps[name] {
			if visiting[dep] {
				return fmt.Errorf("%w: cycle involving %q", ErrCyclicTemplate, dep)
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, name)
		visited[name] = true
		return nil
	}

	for _, def := range t.Steps {
		if !visited[def.Name] {
			if err := visit(def.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
