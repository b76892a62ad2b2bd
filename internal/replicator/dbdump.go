package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
)

// MachineGetDatabases enumerates the schemas of a MySQL-family instance.
// It is run synchronously on demand and never as a replication workflow.
const MachineGetDatabases = "DRPDbDumpMySqlGetDatabases"

// DbDumpKind handles dump-and-restore database items for the MySQL and Oracle
// dump flavors. Items of this kind are inventoried and validated but their
// data movement is operator-driven, so no workflow is attached.
type DbDumpKind struct {
	component project.Component
	inv       InventoryResolver
}

// NewDbDumpKind creates a dump kind handler for the given dump flavor.
func NewDbDumpKind(component project.Component, inv InventoryResolver) *DbDumpKind {
	return &DbDumpKind{component: component, inv: inv}
}

func (k *DbDumpKind) Component() project.Component { return k.component }
func (k *DbDumpKind) Mode() Mode                   { return ModeNone }
func (k *DbDumpKind) Machine() string              { return "" }

// Validate checks that both database instances exist in the regions the
// project declares.
func (k *DbDumpKind) Validate(ctx context.Context, p *project.Project, item *project.Item) error {
	if err := checkDBInstance(ctx, k.inv, p, project.SideSource, item.Source); err != nil {
		return err
	}
	return checkDBInstance(ctx, k.inv, p, project.SideTarget, item.Target)
}

func (k *DbDumpKind) Request(*project.Project, *project.Item) any { return nil }

func (k *DbDumpKind) MergeResult(*project.Item, string) error { return nil }

func checkDBInstance(ctx context.Context, res InventoryResolver, p *project.Project, side project.Side, id string) error {
	inv, err := res.InventoryFor(ctx, p, side)
	if err != nil {
		return err
	}
	exists, err := inv.HasDBInstance(ctx, id)
	if err != nil {
		return &project.ResourceNotFoundError{Side: side, Resource: id, Region: p.Region(side)}
	}
	if !exists {
		return &project.RegionMismatchError{Side: side, Resource: id, Want: p.Region(side)}
	}
	return nil
}
