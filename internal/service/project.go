// Package service exposes the application operations behind the HTTP API:
// project CRUD, item management and the per-kind side effects that go with
// them.
package service

import (
	"context"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
)

// Hooks are the optional per-kind side effects of project lifecycle
// operations. Kinds without registered hooks get the default behavior:
// persist on create, no extra cleanup.
type Hooks interface {
	// Create runs instead of the default persist when it reports handled.
	Create(ctx context.Context, p *project.Project) (handled bool, err error)

	// Cleanup tears down a project's external side effects before the
	// document is deleted.
	Cleanup(ctx context.Context, p *project.Project) error

	// ItemsRemoved tears down the external side effects of removed items.
	ItemsRemoved(ctx context.Context, p *project.Project, removed []*project.Item) error
}

// NopHooks is the no-op base for kinds that only need some of the hooks.
type NopHooks struct{}

func (NopHooks) Create(context.Context, *project.Project) (bool, error) { return false, nil }
func (NopHooks) Cleanup(context.Context, *project.Project) error        { return nil }
func (NopHooks) ItemsRemoved(context.Context, *project.Project, []*project.Item) error {
	return nil
}

// CredentialCleaner removes the stored credentials of a deleted project.
type CredentialCleaner interface {
	DeleteCredentials(ctx context.Context, projectID string) error
}

// Projects is the project dispatcher service. It owns project CRUD and
// forwards item operations to the orchestrator, invoking per-kind hooks for
// the side effects the orchestrator does not know about.
type Projects struct {
	store   project.Store
	orch    *replicator.Orchestrator
	secrets CredentialCleaner
	hooks   map[project.Component]Hooks
	log     *logger.Logger
}

// NewProjects creates the project dispatcher service.
func NewProjects(store project.Store, orch *replicator.Orchestrator, secrets CredentialCleaner, log *logger.Logger) *Projects {
	return &Projects{
		store:   store,
		orch:    orch,
		secrets: secrets,
		hooks:   make(map[project.Component]Hooks),
		log:     log,
	}
}

// RegisterHooks registers the side-effect hooks for one component kind.
func (s *Projects) RegisterHooks(kind project.Component, hooks Hooks) {
	s.hooks[kind] = hooks
}

func (s *Projects) hooksFor(kind project.Component) Hooks {
	if h, ok := s.hooks[kind]; ok {
		return h
	}
	return NopHooks{}
}

// Create creates a project of the given kind. Kinds whose hooks handle
// creation (VPC delegates to its project factory function) skip the default
// persist.
func (s *Projects) Create(ctx context.Context, name string, kind project.Component, source, target project.Region) (*project.Project, error) {
	p := project.New(name, kind, source, target)

	handled, err := s.hooksFor(kind).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if !handled {
		if err := s.store.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	s.log.Infof("Created %s project %s (%s)", p.Type, p.Name, p.ID)
	return p, nil
}

// FindOne returns the project with the given id.
func (s *Projects) FindOne(ctx context.Context, id string) (*project.Project, error) {
	return s.store.FindOne(ctx, id)
}

// FindByType returns all projects of the given kind.
func (s *Projects) FindByType(ctx context.Context, kind project.Component) ([]*project.Project, error) {
	return s.store.FindByType(ctx, kind)
}

// Delete tears down the project's external side effects, removes its stored
// credentials and deletes the document. The whole sequence runs inside the
// project's critical section so a concurrent item operation cannot save the
// document back after the delete.
func (s *Projects) Delete(ctx context.Context, id string) error {
	var kind project.Component
	var name string
	err := s.orch.DeleteProject(ctx, id, func(p *project.Project) error {
		kind, name = p.Type, p.Name
		if err := s.hooksFor(p.Type).Cleanup(ctx, p); err != nil {
			return err
		}
		return s.secrets.DeleteCredentials(ctx, p.ID)
	})
	if err != nil {
		return err
	}
	s.log.Infof("Deleted %s project %s (%s)", kind, name, id)
	return nil
}

// AddItem validates and appends a replication item.
func (s *Projects) AddItem(ctx context.Context, projectID string, item *project.Item) error {
	return s.orch.AddItem(ctx, projectID, item)
}

// DeleteItems removes the items with the given ids and runs the kind's
// removal side effects on whatever was actually removed.
func (s *Projects) DeleteItems(ctx context.Context, projectID string, keys []string) error {
	p, err := s.store.FindOne(ctx, projectID)
	if err != nil {
		return err
	}

	removed, err := s.orch.DeleteItems(ctx, projectID, keys)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}
	return s.hooksFor(p.Type).ItemsRemoved(ctx, p, removed)
}

// Replicate submits the item's replication workflow.
func (s *Projects) Replicate(ctx context.Context, projectID, itemID string) error {
	return s.orch.Replicate(ctx, projectID, itemID)
}

// Stop cancels the item's running replication.
func (s *Projects) Stop(ctx context.Context, projectID, itemID string) error {
	return s.orch.Stop(ctx, projectID, itemID)
}
