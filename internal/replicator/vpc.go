package replicator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/regionsync/regionsync/internal/machine"
	"github.com/regionsync/regionsync/internal/project"
)

// MachineReplicateVpc drives the VPC topology replication workflow.
const MachineReplicateVpc = "DRPVpcReplicateVpc"

type vpcInfo struct {
	VpcID  string `json:"vpcId,omitempty"`
	Region string `json:"region"`
}

type replicateVpcRequest struct {
	Cidr       string  `json:"cidr"`
	Continuous bool    `json:"continuous"`
	Source     vpcInfo `json:"source"`
	Target     vpcInfo `json:"target"`
}

// VpcKind handles VPC replication items. The workflow creates the target VPC
// and reports its id, which is folded back into the item on completion.
type VpcKind struct {
	inv    InventoryResolver
	prober ReadinessProber
}

// NewVpcKind creates the VPC kind handler.
func NewVpcKind(inv InventoryResolver, prober ReadinessProber) *VpcKind {
	return &VpcKind{inv: inv, prober: prober}
}

func (k *VpcKind) Component() project.Component { return project.ComponentVPC }
func (k *VpcKind) Mode() Mode                   { return ModeDetached }
func (k *VpcKind) Machine() string              { return MachineReplicateVpc }

// Validate checks that the source VPC lives in the project's source region
// and, for continuous mode, that the region is prepared for change capture.
func (k *VpcKind) Validate(ctx context.Context, p *project.Project, item *project.Item) error {
	inv, err := k.inv.InventoryFor(ctx, p, project.SideSource)
	if err != nil {
		return err
	}
	exists, err := inv.HasVpc(ctx, item.Source)
	if err != nil {
		return &project.ResourceNotFoundError{Side: project.SideSource, Resource: item.Source, Region: p.SourceRegion}
	}
	if !exists {
		return &project.RegionMismatchError{Side: project.SideSource, Resource: item.Source, Want: p.SourceRegion}
	}

	if item.Continuous {
		ready, err := k.prober.WatchReady(ctx, p.SourceRegion)
		if err != nil {
			return fmt.Errorf("failed to probe continuous replication readiness: %w", err)
		}
		if !ready {
			return &project.PreconditionError{
				Reason: fmt.Sprintf("region %s is not prepared for continuous VPC replication", p.SourceRegion),
			}
		}
	}
	return nil
}

// Request builds the VPC replication workflow request.
func (k *VpcKind) Request(p *project.Project, item *project.Item) any {
	return replicateVpcRequest{
		Cidr:       item.Cidr,
		Continuous: item.Continuous,
		Source:     vpcInfo{VpcID: item.Source, Region: p.SourceRegion.String()},
		Target:     vpcInfo{Region: p.TargetRegion.String()},
	}
}

// MergeResult records the created target VPC id reported by the workflow.
func (k *VpcKind) MergeResult(item *project.Item, output string) error {
	var targetVpcID string
	if err := json.Unmarshal([]byte(output), &targetVpcID); err != nil {
		return &machine.DeserializationError{Machine: MachineReplicateVpc, Err: err}
	}
	item.Target = targetVpcID
	return nil
}
