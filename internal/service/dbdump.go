package service

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
)

// SyncRunner runs a workflow synchronously and decodes its result.
type SyncRunner interface {
	RunSync(ctx context.Context, machine string, input, out any) error
}

// DbSecrets stores and removes the database passwords of dump items.
type DbSecrets interface {
	SaveSecret(ctx context.Context, id, value string) error
	DeleteSecret(ctx context.Context, id string) error
	DbSecretID(projectID string, side project.Side, dbID string) string
}

// ItemAdder registers a validated replication item on a project.
type ItemAdder interface {
	AddItem(ctx context.Context, projectID string, item *project.Item) error
}

type getDatabasesRequest struct {
	Region   string `json:"region"`
	Database string `json:"database"`
	SecretID string `json:"secretId"`
}

// DbDump is the dump-kind service: database items carry per-side passwords
// stored as secrets, and the source schemas can be enumerated through a
// synchronous workflow against the live instance.
type DbDump struct {
	store   project.Store
	orch    ItemAdder
	runner  SyncRunner
	secrets DbSecrets
}

// NewDbDump creates the dump-kind service.
func NewDbDump(store project.Store, orch ItemAdder, runner SyncRunner, secrets DbSecrets) *DbDump {
	return &DbDump{store: store, orch: orch, runner: runner, secrets: secrets}
}

// AddDatabase validates and appends a database item, then stores the supplied
// side passwords as secrets. Passwords are stored only after the item is
// accepted, so a rejected add leaves no secret behind.
func (s *DbDump) AddDatabase(ctx context.Context, projectID string, item *project.Item, sourcePassword, targetPassword string) error {
	if err := s.orch.AddItem(ctx, projectID, item); err != nil {
		return err
	}

	if sourcePassword != "" {
		id := s.secrets.DbSecretID(projectID, project.SideSource, item.Source)
		if err := s.secrets.SaveSecret(ctx, id, sourcePassword); err != nil {
			return err
		}
	}
	if targetPassword != "" {
		id := s.secrets.DbSecretID(projectID, project.SideTarget, item.Target)
		if err := s.secrets.SaveSecret(ctx, id, targetPassword); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabases enumerates the schemas of one side of a database item by
// running the enumeration workflow against the live instance. This talks to
// the database itself and can take minutes.
func (s *DbDump) GetDatabases(ctx context.Context, projectID, itemID string, side project.Side) ([]string, error) {
	p, err := s.store.FindOne(ctx, projectID)
	if err != nil {
		return nil, err
	}
	item, err := p.Find(itemID)
	if err != nil {
		return nil, err
	}

	db := item.Source
	if side == project.SideTarget {
		db = item.Target
	}
	req := getDatabasesRequest{
		Region:   p.Region(side).String(),
		Database: db,
		SecretID: s.secrets.DbSecretID(p.ID, side, db),
	}

	var databases []string
	if err := s.runner.RunSync(ctx, replicator.MachineGetDatabases, req, &databases); err != nil {
		return nil, err
	}
	return databases, nil
}

// DbDumpHooks removes the password secrets of deleted database items.
type DbDumpHooks struct {
	NopHooks
	secrets DbSecrets
}

// NewDbDumpHooks creates the dump-kind side-effect hooks.
func NewDbDumpHooks(secrets DbSecrets) *DbDumpHooks {
	return &DbDumpHooks{secrets: secrets}
}

func (h *DbDumpHooks) ItemsRemoved(ctx context.Context, p *project.Project, removed []*project.Item) error {
	for _, item := range removed {
		if err := h.secrets.DeleteSecret(ctx, h.secrets.DbSecretID(p.ID, project.SideSource, item.Source)); err != nil {
			return err
		}
		if err := h.secrets.DeleteSecret(ctx, h.secrets.DbSecretID(p.ID, project.SideTarget, item.Target)); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup removes the password secrets of every item in the project.
func (h *DbDumpHooks) Cleanup(ctx context.Context, p *project.Project) error {
	return h.ItemsRemoved(ctx, p, p.Items())
}
