package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParameterStore struct {
	values    map[string]string
	decrypted []bool
}

func (f *fakeParameterStore) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.decrypted = append(f.decrypted, aws.ToBool(in.WithDecryption))
	v, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}, nil
}

// go test -v --run TestResolveSecretsFromSSM
func TestResolveSecretsFromSSM(t *testing.T) {
	cfg := &Config{
		Discord: DiscordConfig{Token: "from-env"},
		Secrets: SecretsConfig{
			Source: SecretsFromSSM,
			SSM: SSMConfig{
				DiscordToken: "/tornbot/discord_token",
				ServiceKey:   "/tornbot/service_key",
			},
		},
	}
	store := &fakeParameterStore{values: map[string]string{
		"/tornbot/discord_token": "ssm-token",
		"/tornbot/service_key":   "ssm-key",
	}}

	require.NoError(t, cfg.ResolveSecrets(context.Background(), store))
	assert.Equal(t, "ssm-token", cfg.Discord.Token)
	assert.Equal(t, "ssm-key", cfg.Torn.ServiceKey)
	assert.Empty(t, cfg.Postgres.Password, "unnamed parameters are skipped")
	assert.Equal(t, []bool{true, true}, store.decrypted)
}

// go test -v --run TestResolveSecretsErrors
func TestResolveSecretsErrors(t *testing.T) {
	cfg := &Config{Secrets: SecretsConfig{Source: SecretsFromSSM, SSM: SSMConfig{DiscordToken: "/missing"}}}

	assert.Error(t, cfg.ResolveSecrets(context.Background(), nil))
	assert.Error(t, cfg.ResolveSecrets(context.Background(), &fakeParameterStore{values: map[string]string{}}))
}

// go test -v --run TestResolveSecretsEnvSource
func TestResolveSecretsEnvSource(t *testing.T) {
	cfg := &Config{Discord: DiscordConfig{Token: "keep"}, Secrets: SecretsConfig{Source: SecretsFromEnv}}

	require.NoError(t, cfg.ResolveSecrets(context.Background(), nil))
	assert.Equal(t, "keep", cfg.Discord.Token)
	assert.False(t, cfg.UsesParameterStore())
}
