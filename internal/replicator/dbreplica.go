package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
)

// DbReplicaKind handles EC2-hosted Oracle replica items. The replica pair is
// built out of band; the project only tracks the instances on both sides.
type DbReplicaKind struct {
	inv InventoryResolver
}

// NewDbReplicaKind creates the EC2 replica kind handler.
func NewDbReplicaKind(inv InventoryResolver) *DbReplicaKind {
	return &DbReplicaKind{inv: inv}
}

func (k *DbReplicaKind) Component() project.Component { return project.ComponentDbReplicaOracleEc2 }
func (k *DbReplicaKind) Mode() Mode                   { return ModeNone }
func (k *DbReplicaKind) Machine() string              { return "" }

// Validate checks that both EC2 instances exist in the regions the project
// declares.
func (k *DbReplicaKind) Validate(ctx context.Context, p *project.Project, item *project.Item) error {
	if err := k.checkInstance(ctx, p, project.SideSource, item.Source); err != nil {
		return err
	}
	return k.checkInstance(ctx, p, project.SideTarget, item.Target)
}

func (k *DbReplicaKind) checkInstance(ctx context.Context, p *project.Project, side project.Side, id string) error {
	inv, err := k.inv.InventoryFor(ctx, p, side)
	if err != nil {
		return err
	}
	exists, err := inv.HasInstance(ctx, id)
	if err != nil {
		return &project.ResourceNotFoundError{Side: side, Resource: id, Region: p.Region(side)}
	}
	if !exists {
		return &project.RegionMismatchError{Side: side, Resource: id, Want: p.Region(side)}
	}
	return nil
}

func (k *DbReplicaKind) Request(*project.Project, *project.Item) any { return nil }

func (k *DbReplicaKind) MergeResult(*project.Item, string) error { return nil }
