// Package store provides the ephemeral in-memory registries backing the
// engine. Templates are read-mostly after startup and sit behind an RWMutex;
// pipeline state is written constantly during execution and uses sync.Map
// for fine-grained concurrent access.
package store

import (
	"sync"

	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/template"
)

// TemplateStore holds loaded pipeline templates keyed by id, with a
// secondary lookup by name.
type TemplateStore struct {
	mu      sync.RWMutex
	byID    map[string]*template.Template
	byName  map[string]*template.Template
	ordered []*template.Template
}

// NewTemplateStore returns an empty template store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		byID:   make(map[string]*template.Template),
		byName: make(map[string]*template.Template),
	}
}

// Put registers a template. A template with the same name replaces the
// previous one in the name index; ids are unique by construction.
func (s *TemplateStore) Put(t *template.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[t.ID] = t
	s.byName[t.Name] = t
	s.ordered = append(s.ordered, t)
}

// Get returns the template with the given id.
func (s *TemplateStore) Get(id string) (*template.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	return t, ok
}

// GetByName returns the template with the given name.
func (s *TemplateStore) GetByName(name string) (*template.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byName[name]
	return t, ok
}

// List returns all templates in registration order.
func (s *TemplateStore) List() []*template.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*template.Template, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// PipelineStore holds instantiated pipelines keyed by id. sync.Map fits the
// access pattern: the key space grows monotonically while values mutate
// internally under their own synchronization.
type PipelineStore struct {
	pipelines sync.Map // key: pipeline id, value: *pipeline.Pipeline
}

// NewPipelineStore returns an empty pipeline store.
func NewPipelineStore() *PipelineStore {
	return &PipelineStore{}
}

// Put registers a pipeline.
func (s *PipelineStore) Put(p *pipeline.Pipeline) {
	s.pipelines.Store(p.ID, p)
}

// Get returns the pipeline with the given id.
func (s *PipelineStore) Get(id string) (*pipeline.Pipeline, bool) {
	v, ok := s.pipelines.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*pipeline.Pipeline), true
}

// List returns pipelines, optionally filtered by subject id. Pass the empty
// string to list everything. Order is unspecified.
func (s *PipelineStore) List(subjectID string) []*pipeline.Pipeline {
	var out []*pipeline.Pipeline
	s.pipelines.Range(func(_, v any) bool {
		p := v.(*pipeline.Pipeline)
		if subjectID == "" || p.SubjectID == subjectID {
			out = append(out, p)
		}
		return true
	})
	return out
}
