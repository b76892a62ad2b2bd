package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Instance describes an EC2 instance.
type Instance struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	State string `json:"state"`
}

// Instances lists all EC2 instances in the client's region.
func (c *Client) Instances(ctx context.Context) ([]Instance, error) {
	var instances []Instance
	paginator := ec2.NewDescribeInstancesPaginator(c.ec2, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, i := range reservation.Instances {
				instances = append(instances, convertInstance(i))
			}
		}
	}
	return instances, nil
}

// HasInstance reports whether the EC2 instance exists in the client's region.
func (c *Client) HasInstance(ctx context.Context, id string) (bool, error) {
	out, err := c.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe instance %s: %w", id, err)
	}
	for _, reservation := range out.Reservations {
		if len(reservation.Instances) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func convertInstance(i types.Instance) Instance {
	instance := Instance{
		ID:   aws.ToString(i.InstanceId),
		Type: string(i.InstanceType),
	}
	if i.State != nil {
		instance.State = string(i.State.Name)
	}
	for _, tag := range i.Tags {
		if aws.ToString(tag.Key) == "Name" {
			instance.Name = aws.ToString(tag.Value)
		}
	}
	return instance
}
