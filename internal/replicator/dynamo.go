package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
)

// MachineReplicateTable drives the DynamoDB table replication workflow.
const MachineReplicateTable = "DRPDynamoReplicateTable"

type tableRef struct {
	Table  string `json:"table"`
	Region string `json:"region"`
}

type replicateTableRequest struct {
	ProjectID string   `json:"projectId"`
	Source    tableRef `json:"source"`
	Target    tableRef `json:"target"`
}

// DynamoKind handles DynamoDB table replication items. Its workflow returns a
// cancellable execution handle, which enables the explicit stop operation.
type DynamoKind struct {
	inv InventoryResolver
}

// NewDynamoKind creates the DynamoDB kind handler.
func NewDynamoKind(inv InventoryResolver) *DynamoKind {
	return &DynamoKind{inv: inv}
}

func (k *DynamoKind) Component() project.Component { return project.ComponentDynamoDB }
func (k *DynamoKind) Mode() Mode                   { return ModeHandle }
func (k *DynamoKind) Machine() string              { return MachineReplicateTable }

// Validate checks that both tables exist in the regions the project declares.
func (k *DynamoKind) Validate(ctx context.Context, p *project.Project, item *project.Item) error {
	if err := k.checkTable(ctx, p, project.SideSource, item.Source); err != nil {
		return err
	}
	return k.checkTable(ctx, p, project.SideTarget, item.Target)
}

func (k *DynamoKind) checkTable(ctx context.Context, p *project.Project, side project.Side, table string) error {
	inv, err := k.inv.InventoryFor(ctx, p, side)
	if err != nil {
		return err
	}
	exists, err := inv.HasTable(ctx, table)
	if err != nil {
		return &project.ResourceNotFoundError{Side: side, Resource: table, Region: p.Region(side)}
	}
	if !exists {
		return &project.RegionMismatchError{Side: side, Resource: table, Want: p.Region(side)}
	}
	return nil
}

// Request builds the table replication workflow request.
func (k *DynamoKind) Request(p *project.Project, item *project.Item) any {
	return replicateTableRequest{
		ProjectID: p.ID,
		Source:    tableRef{Table: item.Source, Region: p.SourceRegion.String()},
		Target:    tableRef{Table: item.Target, Region: p.TargetRegion.String()},
	}
}

// MergeResult is a no-op; completion carries no payload to fold back.
func (k *DynamoKind) MergeResult(*project.Item, string) error { return nil }
