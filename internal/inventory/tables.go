package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Table describes a DynamoDB table.
type Table struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tables lists all DynamoDB tables in the client's region.
func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	var tables []Table
	paginator := dynamodb.NewListTablesPaginator(c.dynamo, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		for _, name := range page.TableNames {
			tables = append(tables, Table{ID: name, Name: name})
		}
	}
	return tables, nil
}

// HasTable reports whether the named table exists in the client's region.
func (c *Client) HasTable(ctx context.Context, name string) (bool, error) {
	_, err := c.dynamo.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe table %s: %w", name, err)
	}
	return true, nil
}
