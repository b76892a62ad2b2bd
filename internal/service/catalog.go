package service

import (
	"context"

	"github.com/regionsync/regionsync/internal/inventory"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
)

// Catalog lists the live cloud resources of a project side for display. Each
// call resolves the side's credential and region before listing.
type Catalog struct {
	store   project.Store
	factory *inventory.Factory
	secrets replicator.CredentialResolver
}

// NewCatalog creates the inventory catalog service.
func NewCatalog(store project.Store, factory *inventory.Factory, secrets replicator.CredentialResolver) *Catalog {
	return &Catalog{store: store, factory: factory, secrets: secrets}
}

func (s *Catalog) clientFor(ctx context.Context, projectID string, side project.Side) (*inventory.Client, *project.Project, error) {
	p, err := s.store.FindOne(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	cred, err := s.secrets.CredentialFor(ctx, p, side)
	if err != nil {
		return nil, nil, err
	}
	return s.factory.For(p.Region(side), cred), p, nil
}

// Buckets lists the S3 buckets visible to the given project side.
func (s *Catalog) Buckets(ctx context.Context, projectID string, side project.Side) ([]inventory.Bucket, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.Buckets(ctx)
}

// Tables lists the DynamoDB tables of the given project side.
func (s *Catalog) Tables(ctx context.Context, projectID string, side project.Side) ([]inventory.Table, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.Tables(ctx)
}

// Vpcs lists the VPCs of the given project side.
func (s *Catalog) Vpcs(ctx context.Context, projectID string, side project.Side) ([]inventory.Vpc, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.Vpcs(ctx)
}

// Instances lists the EC2 instances of the given project side.
func (s *Catalog) Instances(ctx context.Context, projectID string, side project.Side) ([]inventory.Instance, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.Instances(ctx)
}

// DBInstances lists the database instances of the given project side whose
// engine matches the project's kind.
func (s *Catalog) DBInstances(ctx context.Context, projectID string, side project.Side) ([]inventory.DBInstance, error) {
	client, p, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.DBInstances(ctx, p.Type)
}

// Regions lists the regions enabled for the given project side's account.
func (s *Catalog) Regions(ctx context.Context, projectID string, side project.Side) ([]string, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.Regions(ctx)
}

// InstanceTypes lists the instance types offered in the given project side's
// region.
func (s *Catalog) InstanceTypes(ctx context.Context, projectID string, side project.Side) ([]inventory.InstanceType, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.InstanceTypes(ctx)
}

// SecurityGroups lists the security groups of a VPC on the given project
// side.
func (s *Catalog) SecurityGroups(ctx context.Context, projectID string, side project.Side, vpcID string) ([]inventory.SecurityGroup, error) {
	client, _, err := s.clientFor(ctx, projectID, side)
	if err != nil {
		return nil, err
	}
	return client.SecurityGroups(ctx, vpcID)
}
