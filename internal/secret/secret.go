// Package secret resolves temporary cloud credentials for project sides.
package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/regionsync/regionsync/internal/project"
)

// Credential is an opaque credential usable to construct a region-scoped
// cloud client. A nil Credential means the ambient default chain applies.
type Credential struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

// Provider adapts the credential to an AWS SDK credentials provider.
func (c *Credential) Provider() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// Manager resolves and stores secrets in AWS Secrets Manager.
type Manager struct {
	client *secretsmanager.Client
	prefix string
}

// NewManager creates a secret manager with the given secret id prefix.
func NewManager(client *secretsmanager.Client, prefix string) *Manager {
	return &Manager{client: client, prefix: prefix}
}

// CredentialFor returns the stored credential for the given project side, or
// nil when no explicit credential is registered and the default chain applies.
func (m *Manager) CredentialFor(ctx context.Context, p *project.Project, side project.Side) (*Credential, error) {
	value, err := m.getSecret(ctx, m.idOf(p.ID, side))
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	var cred Credential
	if err := json.Unmarshal([]byte(value), &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential for project %s %s: %w", p.ID, side, err)
	}
	return &cred, nil
}

// SaveCredential stores a credential for the given project side.
func (m *Manager) SaveCredential(ctx context.Context, p *project.Project, side project.Side, cred *Credential) error {
	value, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	return m.SaveSecret(ctx, m.idOf(p.ID, side), string(value))
}

// SaveSecret stores a secret value under the given id, creating or updating it.
func (m *Manager) SaveSecret(ctx context.Context, id, value string) error {
	_, err := m.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(id),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}

	var exists *types.ResourceExistsException
	if !errors.As(err, &exists) {
		return fmt.Errorf("failed to create secret %s: %w", id, err)
	}
	_, err = m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("failed to update secret %s: %w", id, err)
	}
	return nil
}

// DeleteSecret removes the secret with the given id. Missing secrets are not
// an error.
func (m *Manager) DeleteSecret(ctx context.Context, id string) error {
	_, err := m.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(id),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to delete secret %s: %w", id, err)
	}
	return nil
}

// DeleteCredentials removes the stored credentials of both project sides.
func (m *Manager) DeleteCredentials(ctx context.Context, projectID string) error {
	for _, side := range []project.Side{project.SideSource, project.SideTarget} {
		if err := m.DeleteSecret(ctx, m.idOf(projectID, side)); err != nil {
			return err
		}
	}
	return nil
}

// DbSecretID returns the secret id holding the database password of one side
// of a dump item.
func (m *Manager) DbSecretID(projectID string, side project.Side, dbID string) string {
	return fmt.Sprintf("%s/%s/%s/db/%s", m.prefix, projectID, side, dbID)
}

func (m *Manager) idOf(projectID string, side project.Side) string {
	return fmt.Sprintf("%s/%s/%s", m.prefix, projectID, side)
}

func (m *Manager) getSecret(ctx context.Context, id string) (string, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret %s: %w", id, err)
	}
	return aws.ToString(out.SecretString), nil
}
