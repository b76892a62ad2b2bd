package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/regionsync/regionsync/internal/project"
)

// DBEndpoint is the connection endpoint of a database instance.
type DBEndpoint struct {
	Address string `json:"address"`
	Port    int32  `json:"port"`
}

// DBInstance describes an RDS database instance.
type DBInstance struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Engine           string     `json:"engine"`
	EngineVersion    string     `json:"engineVersion"`
	InstanceClass    string     `json:"instanceClass"`
	Status           string     `json:"status"`
	MasterUsername   string     `json:"masterUsername"`
	MultiAZ          bool       `json:"multiAZ"`
	Endpoint         DBEndpoint `json:"endpoint"`
	SubnetIDs        []string   `json:"subnetIds"`
	SecurityGroupIDs []string   `json:"securityGroupIds"`
}

// DBInstances lists RDS instances in the client's region whose engine matches
// the project's component kind.
func (c *Client) DBInstances(ctx context.Context, kind project.Component) ([]DBInstance, error) {
	var instances []DBInstance
	paginator := rds.NewDescribeDBInstancesPaginator(c.rds, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe DB instances: %w", err)
		}
		for _, db := range page.DBInstances {
			if !engineMatches(kind, aws.ToString(db.Engine)) {
				continue
			}
			instances = append(instances, convertDBInstance(db))
		}
	}
	return instances, nil
}

// HasDBInstance reports whether the DB instance exists in the client's region.
func (c *Client) HasDBInstance(ctx context.Context, id string) (bool, error) {
	_, err := c.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe DB instance %s: %w", id, err)
	}
	return true, nil
}

func engineMatches(kind project.Component, engine string) bool {
	switch kind {
	case project.ComponentDbDumpMySql:
		return strings.Contains(engine, "mysql") || strings.Contains(engine, "mariadb")
	case project.ComponentDbDumpOracle, project.ComponentDbReplicaOracleEc2:
		return strings.Contains(engine, "oracle")
	default:
		return false
	}
}

func convertDBInstance(db types.DBInstance) DBInstance {
	instance := DBInstance{
		ID:             aws.ToString(db.DBInstanceIdentifier),
		Name:           aws.ToString(db.DBName),
		Engine:         aws.ToString(db.Engine),
		EngineVersion:  aws.ToString(db.EngineVersion),
		InstanceClass:  aws.ToString(db.DBInstanceClass),
		Status:         aws.ToString(db.DBInstanceStatus),
		MasterUsername: aws.ToString(db.MasterUsername),
		MultiAZ:        aws.ToBool(db.MultiAZ),
	}
	if db.Endpoint != nil {
		instance.Endpoint = DBEndpoint{
			Address: aws.ToString(db.Endpoint.Address),
			Port:    aws.ToInt32(db.Endpoint.Port),
		}
	}
	if db.DBSubnetGroup != nil {
		for _, subnet := range db.DBSubnetGroup.Subnets {
			instance.SubnetIDs = append(instance.SubnetIDs, aws.ToString(subnet.SubnetIdentifier))
		}
	}
	for _, sg := range db.VpcSecurityGroups {
		instance.SecurityGroupIDs = append(instance.SecurityGroupIDs, aws.ToString(sg.VpcSecurityGroupId))
	}
	return instance
}
