// Package secrets resolves the RobotEvents API credential from AWS Secrets
// Manager. The secret value is either a bare string or a JSON object with an
// "api_key" field.
package secrets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	sonic "github.com/bytedance/sonic"

	"github.com/intelicampusai/vex5hub-site/internal/usecase"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ManagerSource reads the secret once and caches it for the process
// lifetime. A failed read is not cached so a later run can recover.
type ManagerSource struct {
	client     secretsAPI
	secretName string

	mu     sync.Mutex
	cached string
}

func NewManagerSource(client *secretsmanager.Client, secretName string) *ManagerSource {
	return &ManagerSource{client: client, secretName: secretName}
}

func (s *ManagerSource) APIKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != "" {
		return s.cached, nil
	}

	resp, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		return "", fmt.Errorf("%w: read secret %s: %v", usecase.ErrMissingCredential, s.secretName, err)
	}
	if resp.SecretString == nil {
		return "", fmt.Errorf("%w: secret %s has no string value", usecase.ErrMissingCredential, s.secretName)
	}

	key, err := extractAPIKey(*resp.SecretString)
	if err != nil {
		return "", fmt.Errorf("%w: secret %s: %v", usecase.ErrMissingCredential, s.secretName, err)
	}
	s.cached = key
	return key, nil
}

func extractAPIKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty secret value")
	}

	if strings.HasPrefix(raw, "{") {
		var payload struct {
			APIKey string `json:"api_key"`
		}
		if err := sonic.Unmarshal([]byte(raw), &payload); err != nil {
			return "", fmt.Errorf("decode secret payload: %w", err)
		}
		if strings.TrimSpace(payload.APIKey) == "" {
			return "", fmt.Errorf("secret payload has no api_key field")
		}
		return strings.TrimSpace(payload.APIKey), nil
	}

	return raw, nil
}
