package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
)

// MachineReplicateBucket drives the S3 bucket sync workflow.
const MachineReplicateBucket = "DRPS3ReplicateBucket"

type bucketRef struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
}

type replicateBucketRequest struct {
	ProjectID string    `json:"projectId"`
	Source    bucketRef `json:"source"`
	Target    bucketRef `json:"target"`
}

// S3Kind handles S3 bucket replication items.
type S3Kind struct {
	inv InventoryResolver
}

// NewS3Kind creates the S3 kind handler.
func NewS3Kind(inv InventoryResolver) *S3Kind {
	return &S3Kind{inv: inv}
}

func (k *S3Kind) Component() project.Component { return project.ComponentS3 }
func (k *S3Kind) Mode() Mode                   { return ModeDetached }
func (k *S3Kind) Machine() string              { return MachineReplicateBucket }

// Validate checks that both buckets live in the regions the project declares.
func (k *S3Kind) Validate(ctx context.Context, p *project.Project, item *project.Item) error {
	if err := k.checkBucket(ctx, p, project.SideSource, item.Source); err != nil {
		return err
	}
	return k.checkBucket(ctx, p, project.SideTarget, item.Target)
}

func (k *S3Kind) checkBucket(ctx context.Context, p *project.Project, side project.Side, bucket string) error {
	inv, err := k.inv.InventoryFor(ctx, p, side)
	if err != nil {
		return err
	}
	region, err := inv.BucketRegion(ctx, bucket)
	if err != nil {
		return &project.ResourceNotFoundError{Side: side, Resource: bucket, Region: p.Region(side)}
	}
	if region != p.Region(side) {
		return &project.RegionMismatchError{Side: side, Resource: bucket, Want: p.Region(side)}
	}
	return nil
}

// Request builds the bucket sync workflow request.
func (k *S3Kind) Request(p *project.Project, item *project.Item) any {
	return replicateBucketRequest{
		ProjectID: p.ID,
		Source:    bucketRef{Bucket: item.Source, Region: p.SourceRegion.String()},
		Target:    bucketRef{Bucket: item.Target, Region: p.TargetRegion.String()},
	}
}

// MergeResult is a no-op; the bucket sync workflow returns no payload of
// interest.
func (k *S3Kind) MergeResult(*project.Item, string) error { return nil }
