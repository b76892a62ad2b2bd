package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/inventory"
	"github.com/regionsync/regionsync/internal/project"
)

// Inventory is the narrow inventory contract kind handlers need to check
// region affinity.
type Inventory interface {
	BucketRegion(ctx context.Context, bucket string) (project.Region, error)
	HasTable(ctx context.Context, name string) (bool, error)
	HasVpc(ctx context.Context, id string) (bool, error)
	HasInstance(ctx context.Context, id string) (bool, error)
	HasDBInstance(ctx context.Context, id string) (bool, error)
}

// InventoryResolver returns a region-scoped inventory for one side of a
// project, carrying that side's credential.
type InventoryResolver interface {
	InventoryFor(ctx context.Context, p *project.Project, side project.Side) (Inventory, error)
}

// SideInventory resolves inventories by combining the client factory with the
// credential resolver: each side's client is scoped to the side's region and
// uses its stored credential when one exists.
type SideInventory struct {
	Factory *inventory.Factory
	Secrets CredentialResolver
}

// InventoryFor returns the inventory client for the given side.
func (s *SideInventory) InventoryFor(ctx context.Context, p *project.Project, side project.Side) (Inventory, error) {
	cred, err := s.Secrets.CredentialFor(ctx, p, side)
	if err != nil {
		return nil, err
	}
	return s.Factory.For(p.Region(side), cred), nil
}
