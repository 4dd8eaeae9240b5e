package secrets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/intelicampusai/vex5hub-site/internal/usecase"
)

type fakeSecretsAPI struct {
	value string
	err   error
	calls int
}

func (f *fakeSecretsAPI) GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.value)}, nil
}

func TestAPIKeyFromJSONPayload(t *testing.T) {
	api := &fakeSecretsAPI{value: `{"api_key":"tok-123"}`}
	source := &ManagerSource{client: api, secretName: "vex5hub/robotevents-api-key"}

	key, err := source.APIKey(context.Background())
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "tok-123" {
		t.Fatalf("got key %q, want tok-123", key)
	}

	// Second call served from cache.
	if _, err := source.APIKey(context.Background()); err != nil {
		t.Fatalf("APIKey cached: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("made %d secret reads, want 1", api.calls)
	}
}

func TestAPIKeyFromBareString(t *testing.T) {
	source := &ManagerSource{client: &fakeSecretsAPI{value: " tok-raw \n"}, secretName: "name"}
	key, err := source.APIKey(context.Background())
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "tok-raw" {
		t.Fatalf("got key %q, want tok-raw", key)
	}
}

func TestAPIKeyFailureIsMissingCredential(t *testing.T) {
	cases := []struct {
		name string
		api  *fakeSecretsAPI
	}{
		{"read error", &fakeSecretsAPI{err: fmt.Errorf("access denied")}},
		{"empty value", &fakeSecretsAPI{value: "  "}},
		{"json without api_key", &fakeSecretsAPI{value: `{"other":"x"}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := &ManagerSource{client: tc.api, secretName: "name"}
			_, err := source.APIKey(context.Background())
			if !errors.Is(err, usecase.ErrMissingCredential) {
				t.Fatalf("got %v, want ErrMissingCredential", err)
			}
		})
	}
}
