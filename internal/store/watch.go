package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WatchRecord is a derived change-capture record tied to a watched source VPC.
type WatchRecord struct {
	ID     string      `dynamodbav:"id"`
	Source WatchSource `dynamodbav:"source"`
}

// WatchSource identifies the VPC a watch record tracks.
type WatchSource struct {
	VpcID string `dynamodbav:"vpcId"`
}

// Watch manages derived VPC watch records. Records are externally visible
// side effects of continuous VPC replication and must be cleaned up when the
// last project referencing their VPC goes away.
type Watch struct {
	client *dynamodb.Client
	table  string
}

// NewWatch creates a watch record client over the given table.
func NewWatch(client *dynamodb.Client, table string) *Watch {
	return &Watch{client: client, table: table}
}

// DeleteByVpc removes all watch records tracking the given source VPC.
func (w *Watch) DeleteByVpc(ctx context.Context, vpcID string) error {
	records, err := w.scan(ctx, aws.String("#source.vpcId = :vpcId"), map[string]types.AttributeValue{
		":vpcId": &types.AttributeValueMemberS{Value: vpcID},
	})
	if err != nil {
		return err
	}
	return w.deleteAll(ctx, records)
}

// Sweep removes every watch record whose VPC is not in the referenced set.
func (w *Watch) Sweep(ctx context.Context, referenced map[string]bool) error {
	records, err := w.scan(ctx, aws.String("attribute_exists(#source.vpcId)"), nil)
	if err != nil {
		return err
	}

	var orphaned []WatchRecord
	for _, r := range records {
		if !referenced[r.Source.VpcID] {
			orphaned = append(orphaned, r)
		}
	}
	return w.deleteAll(ctx, orphaned)
}

func (w *Watch) scan(ctx context.Context, filter *string, values map[string]types.AttributeValue) ([]WatchRecord, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(w.table),
		FilterExpression: filter,
		ExpressionAttributeNames: map[string]string{
			"#source": "source",
		},
		ExpressionAttributeValues: values,
	}

	var records []WatchRecord
	paginator := dynamodb.NewScanPaginator(w.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch records: %w", err)
		}
		for _, item := range page.Items {
			var r WatchRecord
			if err := attributevalue.UnmarshalMap(item, &r); err != nil {
				return nil, fmt.Errorf("failed to unmarshal watch record: %w", err)
			}
			records = append(records, r)
		}
	}
	return records, nil
}

func (w *Watch) deleteAll(ctx context.Context, records []WatchRecord) error {
	for _, r := range records {
		_, err := w.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(w.table),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: r.ID},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete watch record %s: %w", r.ID, err)
		}
	}
	return nil
}
