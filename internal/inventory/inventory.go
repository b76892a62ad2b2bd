// Package inventory lists live cloud resources for validation and display.
package inventory

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/secret"
)

// Factory builds region-scoped inventory clients, optionally with an explicit
// credential for the cross-account side.
type Factory struct {
	base aws.Config
}

// NewFactory creates an inventory client factory from the base AWS config.
func NewFactory(base aws.Config) *Factory {
	return &Factory{base: base}
}

// For returns an inventory client scoped to the given region. A nil
// credential uses the ambient default chain.
func (f *Factory) For(region project.Region, cred *secret.Credential) *Client {
	cfg := f.base.Copy()
	cfg.Region = region.String()
	if cred != nil {
		cfg.Credentials = cred.Provider()
	}
	return &Client{
		region: region,
		s3:     s3.NewFromConfig(cfg),
		dynamo: dynamodb.NewFromConfig(cfg),
		ec2:    ec2.NewFromConfig(cfg),
		rds:    rds.NewFromConfig(cfg),
	}
}

// Client lists resources of one region. All listing calls drain pagination
// before returning.
type Client struct {
	region project.Region
	s3     *s3.Client
	dynamo *dynamodb.Client
	ec2    *ec2.Client
	rds    *rds.Client
}

// Region returns the region this client is scoped to.
func (c *Client) Region() project.Region { return c.region }

// notFound reports whether err is an AWS API error indicating that the
// requested resource does not exist (as opposed to a transport failure).
func notFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException",
		"NoSuchBucket",
		"DBInstanceNotFound",
		"DBInstanceNotFoundFault",
		"InvalidVpcID.NotFound",
		"InvalidInstanceID.NotFound",
		"InvalidInstanceID.Malformed":
		return true
	}
	return false
}
