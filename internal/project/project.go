// Package project defines the replication project aggregate and its lifecycle.
package project

import (
	"fmt"

	"github.com/google/uuid"
)

// Component identifies the kind of resource a project replicates.
type Component string

// Supported component kinds.
const (
	ComponentS3                 Component = "S3"
	ComponentDynamoDB           Component = "DynamoDB"
	ComponentVPC                Component = "VPC"
	ComponentDbDumpMySql        Component = "DbDumpMySql"
	ComponentDbDumpOracle       Component = "DbDumpOracle"
	ComponentDbReplicaOracleEc2 Component = "DbReplicaOracleEc2"
	ComponentCloudEndure        Component = "CloudEndure"
	ComponentCloudEndureManager Component = "CloudEndureManager"
	ComponentBoot               Component = "Boot"
)

// Region is a named cloud region, e.g. "us-east-1".
type Region string

func (r Region) String() string { return string(r) }

// Side selects the source or target half of a replication pair.
type Side string

// Sides of a replication pair.
const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// Project is a named migration unit scoping one component kind, one source
// region, one target region and a list of replication items. It is persisted
// as a single document; at most one typed sub-project is populated, matching
// Type.
type Project struct {
	ID           string     `dynamodbav:"id" json:"id"`
	Name         string     `dynamodbav:"name" json:"name"`
	Type         Component  `dynamodbav:"type" json:"type"`
	SourceRegion Region     `dynamodbav:"sourceRegion" json:"sourceRegion"`
	TargetRegion Region     `dynamodbav:"targetRegion" json:"targetRegion"`
	State        string     `dynamodbav:"state,omitempty" json:"state,omitempty"`
	S3           *SubProject `dynamodbav:"s3Project,omitempty" json:"s3Project,omitempty"`
	Dynamo       *SubProject `dynamodbav:"dynamoProject,omitempty" json:"dynamoProject,omitempty"`
	Vpc          *SubProject `dynamodbav:"vpcProject,omitempty" json:"vpcProject,omitempty"`
	DbDump       *SubProject `dynamodbav:"dbDumpProject,omitempty" json:"dbDumpProject,omitempty"`
	DbReplica    *SubProject `dynamodbav:"dbReplicaProject,omitempty" json:"dbReplicaProject,omitempty"`
}

// SubProject holds the ordered item list of one component kind.
type SubProject struct {
	Items []*Item `dynamodbav:"items" json:"items"`
}

// New creates a project of the given kind with an empty item list.
func New(name string, kind Component, source, target Region) *Project {
	p := &Project{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         kind,
		SourceRegion: source,
		TargetRegion: target,
	}

	sub := &SubProject{Items: []*Item{}}
	switch kind {
	case ComponentS3:
		p.S3 = sub
	case ComponentDynamoDB:
		p.Dynamo = sub
	case ComponentVPC:
		p.Vpc = sub
	case ComponentDbDumpMySql, ComponentDbDumpOracle:
		p.DbDump = sub
	case ComponentDbReplicaOracleEc2:
		p.DbReplica = sub
	}
	return p
}

// Region returns the region of the given side.
func (p *Project) Region(side Side) Region {
	if side == SideTarget {
		return p.TargetRegion
	}
	return p.SourceRegion
}

// Sub returns the populated sub-project matching the project type.
func (p *Project) Sub() (*SubProject, error) {
	var sub *SubProject
	switch p.Type {
	case ComponentS3:
		sub = p.S3
	case ComponentDynamoDB:
		sub = p.Dynamo
	case ComponentVPC:
		sub = p.Vpc
	case ComponentDbDumpMySql, ComponentDbDumpOracle:
		sub = p.DbDump
	case ComponentDbReplicaOracleEc2:
		sub = p.DbReplica
	}
	if sub == nil {
		return nil, fmt.Errorf("project %s has no %s sub-project", p.ID, p.Type)
	}
	return sub, nil
}

// Items returns the project's item list.
func (p *Project) Items() []*Item {
	sub, err := p.Sub()
	if err != nil {
		return nil
	}
	return sub.Items
}

// Find returns the item with the given id.
func (p *Project) Find(itemID string) (*Item, error) {
	for _, item := range p.Items() {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, &NotFoundError{Kind: "item", ID: itemID}
}

// Contains reports whether an item with the given id exists in the project.
func (p *Project) Contains(itemID string) bool {
	_, err := p.Find(itemID)
	return err == nil
}

// Append adds an item to the project's item list.
func (p *Project) Append(item *Item) error {
	sub, err := p.Sub()
	if err != nil {
		return err
	}
	sub.Items = append(sub.Items, item)
	return nil
}

// Remove deletes all items whose id is in keys and returns the removed items.
func (p *Project) Remove(keys []string) []*Item {
	sub, err := p.Sub()
	if err != nil {
		return nil
	}

	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	var kept, removed []*Item
	for _, item := range sub.Items {
		if keySet[item.ID] {
			removed = append(removed, item)
		} else {
			kept = append(kept, item)
		}
	}
	sub.Items = kept
	return removed
}
