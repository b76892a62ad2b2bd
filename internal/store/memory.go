package store

import (
	"context"
	"sync"

	"github.com/regionsync/regionsync/internal/project"
)

// Memory is an in-memory project store with the same overwrite semantics as
// the DynamoDB store. It deep-copies on read and write so callers can never
// alias stored state. Used in tests and local mode.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
}

// NewMemory creates an empty in-memory project store.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]*project.Project)}
}

// Save writes the full project document, replacing any previous version.
func (m *Memory) Save(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = clone(p)
	return nil
}

// FindOne returns the project with the given id.
func (m *Memory) FindOne(_ context.Context, id string) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, &project.NotFoundError{Kind: "project", ID: id}
	}
	return clone(p), nil
}

// FindByType returns all projects of the given component kind.
func (m *Memory) FindByType(_ context.Context, kind project.Component) ([]*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var projects []*project.Project
	for _, p := range m.projects {
		if p.Type == kind {
			projects = append(projects, clone(p))
		}
	}
	return projects, nil
}

// Delete removes the project document with the given id.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func clone(p *project.Project) *project.Project {
	c := *p
	c.S3 = cloneSub(p.S3)
	c.Dynamo = cloneSub(p.Dynamo)
	c.Vpc = cloneSub(p.Vpc)
	c.DbDump = cloneSub(p.DbDump)
	c.DbReplica = cloneSub(p.DbReplica)
	return &c
}

func cloneSub(sub *project.SubProject) *project.SubProject {
	if sub == nil {
		return nil
	}
	items := make([]*project.Item, len(sub.Items))
	for i, item := range sub.Items {
		c := *item
		if item.StartTime != nil {
			t := *item.StartTime
			c.StartTime = &t
		}
		if item.EndTime != nil {
			t := *item.EndTime
			c.EndTime = &t
		}
		items[i] = &c
	}
	return &project.SubProject{Items: items}
}
