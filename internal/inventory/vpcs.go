package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Vpc describes a VPC.
type Vpc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cidr  string `json:"cidr"`
	State string `json:"state"`
}

// Vpcs lists all VPCs in the client's region.
func (c *Client) Vpcs(ctx context.Context) ([]Vpc, error) {
	var vpcs []Vpc
	paginator := ec2.NewDescribeVpcsPaginator(c.ec2, &ec2.DescribeVpcsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe VPCs: %w", err)
		}
		for _, v := range page.Vpcs {
			vpcs = append(vpcs, convertVpc(v))
		}
	}
	return vpcs, nil
}

// Vpc returns the VPC with the given id in the client's region.
func (c *Client) Vpc(ctx context.Context, id string) (*Vpc, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		VpcIds: []string{id},
	})
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe VPC %s: %w", id, err)
	}
	if len(out.Vpcs) == 0 {
		return nil, nil
	}
	v := convertVpc(out.Vpcs[0])
	return &v, nil
}

// HasVpc reports whether the VPC exists in the client's region.
func (c *Client) HasVpc(ctx context.Context, id string) (bool, error) {
	v, err := c.Vpc(ctx, id)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func convertVpc(v types.Vpc) Vpc {
	vpc := Vpc{
		ID:    aws.ToString(v.VpcId),
		Cidr:  aws.ToString(v.CidrBlock),
		State: string(v.State),
	}
	for _, tag := range v.Tags {
		if aws.ToString(tag.Key) == "Name" {
			vpc.Name = aws.ToString(tag.Value)
		}
	}
	return vpc
}
