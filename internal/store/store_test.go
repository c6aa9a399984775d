package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/template"
)

func TestTemplateStore_PutAndLookups(t *testing.T) {
	t.Parallel()
	s := NewTemplateStore()
	standard := template.New("standard", "the default pipeline")
	micro := template.New("microservice", "")
	s.Put(standard)
	s.Put(micro)

	byID, ok := s.Get(standard.ID)
	require.True(t, ok)
	assert.Same(t, standard, byID)

	byName, ok := s.GetByName("microservice")
	require.True(t, ok)
	assert.Same(t, micro, byName)

	_, ok = s.Get("nope")
	assert.False(t, ok)
	_, ok = s.GetByName("nope")
	assert.False(t, ok)
}

func TestTemplateStore_ListPreservesRegistrationOrder(t *testing.T) {
	t.Parallel()
	s := NewTemplateStore()
	for _, name := range []string{"c", "a", "b"} {
		s.Put(template.New(name, ""))
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "a", list[1].Name)
	assert.Equal(t, "b", list[2].Name)
}

func TestTemplateStore_SameNameReplacesNameIndex(t *testing.T) {
	t.Parallel()
	s := NewTemplateStore()
	old := template.New("standard", "v1")
	replacement := template.New("standard", "v2")
	s.Put(old)
	s.Put(replacement)

	got, ok := s.GetByName("standard")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	// The old template stays reachable by id.
	gotOld, ok := s.Get(old.ID)
	require.True(t, ok)
	assert.Same(t, old, gotOld)
}

func TestPipelineStore_PutGetList(t *testing.T) {
	t.Parallel()
	s := NewPipelineStore()
	p1 := pipeline.New("standard", "app-a", "1.0.0")
	p2 := pipeline.New("standard", "app-b", "1.0.0")
	p3 := pipeline.New("standard", "app-a", "2.0.0")
	s.Put(p1)
	s.Put(p2)
	s.Put(p3)

	got, ok := s.Get(p2.ID)
	require.True(t, ok)
	assert.Same(t, p2, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.Len(t, s.List(""), 3)
	forA := s.List("app-a")
	assert.Len(t, forA, 2)
	for _, p := range forA {
		assert.Equal(t, "app-a", p.SubjectID)
	}
	assert.Empty(t, s.List("app-c"))
}
