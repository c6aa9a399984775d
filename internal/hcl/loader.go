// Package hcl loads pipeline templates from HCL definition files.
package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/schema"
	"github.com/vk/pipewright/internal/template"
)

// Loader parses .hcl template files into the template model.
type Loader struct{}

// NewLoader returns an HCL template loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Handles implements template.Loader.
func (l *Loader) Handles(path string) bool {
	return strings.HasSuffix(path, ".hcl")
}

// LoadFile implements template.Loader.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*template.Template, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing HCL template file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	var tf schema.TemplateFile
	// Decoding with a nil EvalContext: template files carry no variables of
	// their own, and `$${NAME}` escapes unescape to literal `${NAME}`.
	if diags := gohcl.DecodeBody(file.Body, nil, &tf); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}

	templates := make([]*template.Template, 0, len(tf.Templates))
	for _, block := range tf.Templates {
		t, err := l.translate(block)
		if err != nil {
			return nil, fmt.Errorf("%s: template %q: %w", path, block.Name, err)
		}
		logger.Debug("Loaded template.", "name", t.Name, "steps", len(t.Steps))
		templates = append(templates, t)
	}
	return templates, nil
}

// translate converts a decoded template block into the model.
func (l *Loader) translate(block *schema.TemplateBlock) (*template.Template, error) {
	t := template.New(block.Name, block.Description)

	defaults, err := decodeDefaults(block.Variables)
	if err != nil {
		return nil, fmt.Errorf("variables: %w", err)
	}
	t.Defaults = defaults

	for _, sb := range block.Steps {
		stage := pipeline.Stage(strings.ToLower(sb.Stage))
		if !pipeline.KnownStage(stage) {
			return nil, fmt.Errorf("step %q: unknown stage %q", sb.Name, sb.Stage)
		}
		t.AddStep(sb.Name, stage, sb.Command, sb.DependsOn...)
	}
	return t, nil
}

// decodeDefaults evaluates the optional `variables` attribute into a string
// map. Each value is converted to a string through cty so that numbers and
// bools are accepted the way HCL users expect.
func decodeDefaults(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("must be a map of strings, got %s", val.Type().FriendlyName())
	}

	defaults := make(map[string]string)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		strVal, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", k.AsString(), err)
		}
		if strVal.IsNull() {
			return nil, fmt.Errorf("value for %q is null", k.AsString())
		}
		defaults[k.AsString()] = strVal.AsString()
	}
	return defaults, nil
}
