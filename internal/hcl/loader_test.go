package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipewright/internal/pipeline"
)

func writeTemplateFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Handles(t *testing.T) {
	t.Parallel()
	l := NewLoader()
	assert.True(t, l.Handles("templates/standard.hcl"))
	assert.False(t, l.Handles("templates/standard.yaml"))
	assert.False(t, l.Handles("templates/standard.json"))
}

func TestLoadFile_FullTemplate(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	path := writeTemplateFile(t, "deploy.hcl", `
template "deploy" {
  description = "build and deploy"

  variables = {
    ENV     = "staging"
    RETRIES = 3
  }

  step "build" {
    stage   = "build"
    command = "build.sh $${APP_ID}"
  }

  step "release" {
    stage      = "deploy"
    command    = "deploy.sh $${APP_ID} $${VERSION} $${ENV}"
    depends_on = ["build"]
  }
}
`)

	// --- Act ---
	templates, err := NewLoader().LoadFile(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, templates, 1)
	tmpl := templates[0]
	assert.Equal(t, "deploy", tmpl.Name)
	assert.Equal(t, "build and deploy", tmpl.Description)
	// Non-string default values are converted through cty.
	assert.Equal(t, map[string]string{"ENV": "staging", "RETRIES": "3"}, tmpl.Defaults)

	require.Len(t, tmpl.Steps, 2)
	assert.Equal(t, "build", tmpl.Steps[0].Name)
	assert.Equal(t, pipeline.StageBuild, tmpl.Steps[0].Stage)
	// $${NAME} escapes decode to literal ${NAME} placeholders.
	assert.Equal(t, "build.sh ${APP_ID}", tmpl.Steps[0].Command)
	assert.Equal(t, "deploy.sh ${APP_ID} ${VERSION} ${ENV}", tmpl.Steps[1].Command)
	assert.Equal(t, []string{"build"}, tmpl.Steps[1].DependsOn)
}

func TestLoadFile_MultipleTemplatesPerFile(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "multi.hcl", `
template "first" {
  step "a" {
    stage   = "build"
    command = "a.sh"
  }
}

template "second" {
  step "b" {
    stage   = "test"
    command = "b.sh"
  }
}
`)

	templates, err := NewLoader().LoadFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "first", templates[0].Name)
	assert.Equal(t, "second", templates[1].Name)
}

func TestLoadFile_StageIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "case.hcl", `
template "case" {
  step "a" {
    stage   = "BUILD"
    command = "a.sh"
  }
}
`)

	templates, err := NewLoader().LoadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, pipeline.StageBuild, templates[0].Steps[0].Stage)
}

func TestLoadFile_UnknownStageRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "bad.hcl", `
template "bad" {
  step "a" {
    stage   = "release"
    command = "a.sh"
  }
}
`)

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestLoadFile_NonMapVariablesRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "vars.hcl", `
template "vars" {
  variables = ["not", "a", "map"]

  step "a" {
    stage   = "build"
    command = "a.sh"
  }
}
`)

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
}

func TestLoadFile_SyntaxErrorRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "broken.hcl", `template "broken" {`)

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
}

func TestLoadFile_ShippedTemplates(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"standard", "microservice"} {
		path := filepath.Join("..", "..", "templates", name+".hcl")
		templates, err := NewLoader().LoadFile(context.Background(), path)
		require.NoError(t, err, name)
		require.Len(t, templates, 1)
		assert.Equal(t, name, templates[0].Name)
		assert.Len(t, templates[0].Steps, 6)
	}
}
