// Package store provides Project Store implementations over DynamoDB and memory.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/regionsync/regionsync/internal/project"
)

// Dynamo persists project aggregates as whole documents in a DynamoDB table.
// Save is an unconditional full-document overwrite; write serialization is
// the caller's responsibility.
type Dynamo struct {
	client *dynamodb.Client
	table  string
}

// NewDynamo creates a DynamoDB-backed project store.
func NewDynamo(client *dynamodb.Client, table string) *Dynamo {
	return &Dynamo{client: client, table: table}
}

// Save writes the full project document, replacing any previous version.
func (d *Dynamo) Save(ctx context.Context, p *project.Project) error {
	av, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project %s: %w", p.ID, err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}
	return nil
}

// FindOne returns the project with the given id.
func (d *Dynamo) FindOne(ctx context.Context, id string) (*project.Project, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, &project.NotFoundError{Kind: "project", ID: id}
	}

	var p project.Project
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project %s: %w", id, err)
	}
	return &p, nil
}

// FindByType returns all projects of the given component kind.
func (d *Dynamo) FindByType(ctx context.Context, kind project.Component) ([]*project.Project, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(d.table),
		FilterExpression: aws.String("#type = :type"),
		ExpressionAttributeNames: map[string]string{
			"#type": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: string(kind)},
		},
	}

	var projects []*project.Project
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan projects of type %s: %w", kind, err)
		}
		for _, item := range page.Items {
			var p project.Project
			if err := attributevalue.UnmarshalMap(item, &p); err != nil {
				return nil, fmt.Errorf("failed to unmarshal project: %w", err)
			}
			projects = append(projects, &p)
		}
	}
	return projects, nil
}

// Delete removes the project document with the given id.
func (d *Dynamo) Delete(ctx context.Context, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}
