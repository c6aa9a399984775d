// Package schema declares the HCL shapes of pipeline template files.
package schema

import "github.com/hashicorp/hcl/v2"

// StepBlock represents a `step` block inside a template: one step blueprint
// with its stage label, command template, and named dependencies.
//
// Command strings use HCL's `$${NAME}` escape to produce literal `${NAME}`
// placeholders for the engine's variable binder.
type StepBlock struct {
	Name      string   `hcl:"name,label"`
	Stage     string   `hcl:"stage"`
	Command   string   `hcl:"command"`
	DependsOn []string `hcl:"depends_on,optional"`
}

// TemplateBlock represents a top-level `template` block. The optional
// `variables` attribute holds default bindings with the lowest precedence at
// instantiation time; it is kept as a raw expression and evaluated by the
// loader.
type TemplateBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Variables   hcl.Expression `hcl:"variables,optional"`
	Steps       []*StepBlock   `hcl:"step,block"`
}

// TemplateFile is the top-level structure of a template definition file.
type TemplateFile struct {
	Templates []*TemplateBlock `hcl:"template,block"`
	Body      hcl.Body         `hcl:",remain"`
}
