package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/regionsync/regionsync/internal/project"
)

// Bucket describes an S3 bucket and the region it lives in.
type Bucket struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Region project.Region `json:"region"`
}

// Buckets lists all buckets visible to the client, resolving each bucket's
// region.
func (c *Client) Buckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	paginator := s3.NewListBucketsPaginator(c.s3, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		for _, b := range page.Buckets {
			name := aws.ToString(b.Name)
			region, err := c.BucketRegion(ctx, name)
			if err != nil {
				// A bucket that disappears mid-listing is skipped, not fatal.
				continue
			}
			buckets = append(buckets, Bucket{ID: name, Name: name, Region: region})
		}
	}
	return buckets, nil
}

// BucketRegion resolves the region a bucket lives in.
func (c *Client) BucketRegion(ctx context.Context, bucket string) (project.Region, error) {
	out, err := c.s3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", fmt.Errorf("failed to locate bucket %s: %w", bucket, err)
	}
	// S3 reports an empty constraint for us-east-1.
	if out.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return project.Region(out.LocationConstraint), nil
}
