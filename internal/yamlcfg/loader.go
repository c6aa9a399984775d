// Package yamlcfg loads pipeline templates from YAML definition files. It
// accepts the same model as the HCL loader; YAML needs no placeholder
// escaping, so commands contain `${NAME}` directly.
package yamlcfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/template"
)

// templateDoc is the YAML shape of one template definition file.
type templateDoc struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Variables   map[string]string `yaml:"variables"`
	Steps       []stepDoc         `yaml:"steps"`
}

type stepDoc struct {
	Name      string   `yaml:"name"`
	Stage     string   `yaml:"stage"`
	Command   string   `yaml:"command"`
	DependsOn []string `yaml:"depends_on"`
}

// Loader parses .yaml/.yml template files into the template model.
type Loader struct{}

// NewLoader returns a YAML template loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Handles implements template.Loader.
func (l *Loader) Handles(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// LoadFile implements template.Loader. A file may contain multiple YAML
// documents, each defining one template.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*template.Template, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing YAML template file.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var templates []*template.Template
	dec := yaml.NewDecoder(f)
	for {
		var doc templateDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		t, err := translate(&doc)
		if err != nil {
			return nil, fmt.Errorf("%s: template %q: %w", path, doc.Name, err)
		}
		logger.Debug("Loaded template.", "name", t.Name, "steps", len(t.Steps))
		templates = append(templates, t)
	}
	return templates, nil
}

func translate(doc *templateDoc) (*template.Template, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	t := template.New(doc.Name, doc.Description)
	t.Defaults = doc.Variables
	for _, sd := range doc.Steps {
		stage := pipeline.Stage(strings.ToLower(sd.Stage))
		if !pipeline.KnownStage(stage) {
			return nil, fmt.Errorf("step %q: unknown stage %q", sd.Name, sd.Stage)
		}
		t.AddStep(sd.Name, stage, sd.Command, sd.DependsOn...)
	}
	return t, nil
}
