package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	SecretsFromEnv = "env"
	SecretsFromSSM = "ssm"
)

// SecretsConfig selects where credentials come from. With "env" they are read like any
// other key (config.yaml, .env, environment); with "ssm" the named Parameter Store
// entries replace them at startup.
type SecretsConfig struct {
	Source string    `mapstructure:"source"`
	SSM    SSMConfig `mapstructure:"ssm"`
}

// SSMConfig holds Parameter Store names. Empty names are skipped.
type SSMConfig struct {
	Region           string `mapstructure:"region"`
	DiscordToken     string `mapstructure:"discord_token"`
	ServiceKey       string `mapstructure:"service_key"`
	PostgresPassword string `mapstructure:"postgres_password"`
}

// ParameterStore is the part of the SSM client used to resolve secrets.
type ParameterStore interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

const parameterStoreTimeout = 5 * time.Second

// NewParameterStore builds an SSM client from the default AWS credential chain.
func NewParameterStore(ctx context.Context, region string) (ParameterStore, error) {
	ctx, cancel := context.WithTimeout(ctx, parameterStoreTimeout)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return ssm.NewFromConfig(cfg), nil
}

// UsesParameterStore reports whether ResolveSecrets needs a ParameterStore.
func (c *Config) UsesParameterStore() bool {
	return c.Secrets.Source == SecretsFromSSM
}

// ResolveSecrets overwrites the bot token, the shared service key and the postgres
// password with their Parameter Store values when secrets.source is "ssm".
func (c *Config) ResolveSecrets(ctx context.Context, store ParameterStore) error {
	if !c.UsesParameterStore() {
		return nil
	}
	if store == nil {
		return fmt.Errorf("secrets.source is %q but no parameter store was provided", SecretsFromSSM)
	}

	targets := []struct {
		name string
		dst  *string
	}{
		{c.Secrets.SSM.DiscordToken, &c.Discord.Token},
		{c.Secrets.SSM.ServiceKey, &c.Torn.ServiceKey},
		{c.Secrets.SSM.PostgresPassword, &c.Postgres.Password},
	}

	for _, t := range targets {
		if t.name == "" {
			continue
		}
		value, err := getParameterStoreValue(ctx, store, t.name, true)
		if err != nil {
			return err
		}
		*t.dst = value
	}

	return nil
}

func getParameterStoreValue(ctx context.Context, store ParameterStore, parameterName string, decrypt bool) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, parameterStoreTimeout)
	defer cancel()

	input := &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(decrypt),
	}

	result, err := store.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", parameterName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", parameterName)
	}

	return *result.Parameter.Value, nil
}
