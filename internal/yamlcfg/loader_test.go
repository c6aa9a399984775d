package yamlcfg

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
	assert.True(t, l.Handles("deploy.yaml"))
	assert.True(t, l.Handles("deploy.yml"))
	assert.False(t, l.Handles("deploy.hcl"))
}

func TestLoadFile_FullTemplate(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	path := writeTemplateFile(t, "deploy.yaml", `
name: deploy
description: build and deploy
variables:
  ENV: staging
steps:
  - name: build
    stage: build
    command: build.sh ${APP_ID}
  - name: release
    stage: deploy
    command: deploy.sh ${APP_ID} ${VERSION} ${ENV}
    depends_on: [build]
`)

	// --- Act ---
	templates, err := NewLoader().LoadFile(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, templates, 1)
	tmpl := templates[0]
	assert.Equal(t, "deploy", tmpl.Name)
	assert.Equal(t, map[string]string{"ENV": "staging"}, tmpl.Defaults)
	require.Len(t, tmpl.Steps, 2)
	// YAML needs no escaping; placeholders arrive verbatim.
	assert.Equal(t, "build.sh ${APP_ID}", tmpl.Steps[0].Command)
	assert.Equal(t, []string{"build"}, tmpl.Steps[1].DependsOn)
	assert.Equal(t, pipeline.StageDeploy, tmpl.Steps[1].Stage)
}

func TestLoadFile_MultiDocument(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "multi.yml", `
name: first
steps:
  - name: a
    stage: build
    command: a.sh
---
name: second
steps:
  - name: b
    stage: test
    command: b.sh
`)

	templates, err := NewLoader().LoadFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "first", templates[0].Name)
	assert.Equal(t, "second", templates[1].Name)
}

func TestLoadFile_MissingNameRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "anon.yaml", `
steps:
  - name: a
    stage: build
    command: a.sh
`)

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadFile_UnknownStageRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "bad.yaml", `
name: bad
steps:
  - name: a
    stage: release
    command: a.sh
`)

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestLoadFile_MalformedYAMLRejected(t *testing.T) {
	t.Parallel()
	path := writeTemplateFile(t, "broken.yaml", "name: [unclosed")

	_, err := NewLoader().LoadFile(context.Background(), path)

	require.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := NewLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
}
