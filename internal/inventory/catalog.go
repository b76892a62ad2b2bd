package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// InstanceType describes an EC2 instance type offered in a region.
type InstanceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SecurityGroup describes a security group within a VPC.
type SecurityGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Regions lists all regions enabled for the account, sorted by name.
func (c *Client) Regions(ctx context.Context) ([]string, error) {
	out, err := c.ec2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}
	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		regions = append(regions, aws.ToString(r.RegionName))
	}
	sort.Strings(regions)
	return regions, nil
}

// InstanceTypes lists all instance types offered in the client's region.
func (c *Client) InstanceTypes(ctx context.Context) ([]InstanceType, error) {
	var instanceTypes []InstanceType
	paginator := ec2.NewDescribeInstanceTypesPaginator(c.ec2, &ec2.DescribeInstanceTypesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instance types: %w", err)
		}
		for _, t := range page.InstanceTypes {
			name := string(t.InstanceType)
			instanceTypes = append(instanceTypes, InstanceType{ID: name, Name: name})
		}
	}
	return instanceTypes, nil
}

// SecurityGroups lists the security groups of the given VPC.
func (c *Client) SecurityGroups(ctx context.Context, vpcID string) ([]SecurityGroup, error) {
	input := &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	}

	var groups []SecurityGroup
	paginator := ec2.NewDescribeSecurityGroupsPaginator(c.ec2, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe security groups: %w", err)
		}
		for _, g := range page.SecurityGroups {
			groups = append(groups, SecurityGroup{
				ID:   aws.ToString(g.GroupId),
				Name: aws.ToString(g.GroupName),
			})
		}
	}
	return groups, nil
}
