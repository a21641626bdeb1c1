package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Discord   DiscordConfig   `mapstructure:"discord"`
	Torn      TornConfig      `mapstructure:"torn"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	TOS       TOSConfig       `mapstructure:"tos"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Health    HealthConfig    `mapstructure:"health"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type DiscordConfig struct {
	Token       string `mapstructure:"token"`
	AppID       string `mapstructure:"app_id"`   // resolved from the Ready event when empty
	GuildID     string `mapstructure:"guild_id"` // register commands to one guild (dev)
	Permissions int64  `mapstructure:"permissions"`
}

type TornConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ServiceKey        string        `mapstructure:"service_key"` // shared key used by the stock loop
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
}

type BroadcastConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	Epsilon          float64       `mapstructure:"epsilon"`
	FirstObservation string        `mapstructure:"first_observation"` // "omit" or "placeholder"
}

type TOSConfig struct {
	Required             bool   `mapstructure:"required"`
	PromptKeyAfterAccept bool   `mapstructure:"prompt_key_after_accept"`
	Text                 string `mapstructure:"text"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // "json", "postgres" or "memory"
	KeysFile string `mapstructure:"keys_file"`
	TOSFile  string `mapstructure:"tos_file"`
	CreateDB bool   `mapstructure:"create_db"`
}

type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Compress    bool   `mapstructure:"compress"`
}

const (
	FirstObservationOmit        = "omit"
	FirstObservationPlaceholder = "placeholder"

	StorageJSON     = "json"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const defaultTermsText = "This bot stores your Torn API key to query the Torn API on your behalf. " +
	"Use a limited-access key. Your key is never shared and you can delete it at any time with /removekey."

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.app_id", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.permissions", 2048+16384) // send messages + embed links

	v.SetDefault("torn.base_url", "https://api.torn.com")
	v.SetDefault("torn.timeout", 10*time.Second)
	v.SetDefault("torn.service_key", "")
	v.SetDefault("torn.requests_per_minute", 100)
	v.SetDefault("torn.burst", 5)

	v.SetDefault("broadcast.interval", 30*time.Second)
	v.SetDefault("broadcast.epsilon", 0.001)
	v.SetDefault("broadcast.first_observation", FirstObservationOmit)

	v.SetDefault("tos.required", true)
	v.SetDefault("tos.prompt_key_after_accept", true)
	v.SetDefault("tos.text", defaultTermsText)

	v.SetDefault("storage.driver", StorageJSON)
	v.SetDefault("storage.keys_file", "user_keys.json")
	v.SetDefault("storage.tos_file", "accepted_tos.json")
	v.SetDefault("storage.create_db", false)

	v.SetDefault("health.port", 10000)

	v.SetDefault("secrets.source", SecretsFromEnv)
	v.SetDefault("secrets.ssm.region", "")
	v.SetDefault("secrets.ssm.discord_token", "")
	v.SetDefault("secrets.ssm.service_key", "")
	v.SetDefault("secrets.ssm.postgres_password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", true)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "tornbot")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
}

// Load loads application configuration using Viper.
// It reads .env (if present), then config.yaml, and overrides with environment variables.
// args are the command line arguments without the program name.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("tornbot", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config.yaml file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
	}

	// Support environment variables with dot notation (e.g., DISCORD_TOKEN, TORN_SERVICE_KEY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// hosting platforms hand the listener port over as PORT
	if err := v.BindEnv("health.port", "PORT", "HEALTH_PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values that cannot be defaulted.
// It runs after secrets are resolved.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return errors.New("discord.token is required (DISCORD_TOKEN)")
	}
	if c.Torn.BaseURL == "" {
		return errors.New("torn.base_url is required")
	}
	if c.Broadcast.Interval <= 0 {
		return fmt.Errorf("broadcast.interval must be positive, got %s", c.Broadcast.Interval)
	}
	if c.Broadcast.Epsilon < 0 {
		return fmt.Errorf("broadcast.epsilon must not be negative, got %v", c.Broadcast.Epsilon)
	}
	switch c.Broadcast.FirstObservation {
	case FirstObservationOmit, FirstObservationPlaceholder:
	default:
		return fmt.Errorf("broadcast.first_observation must be %q or %q, got %q",
			FirstObservationOmit, FirstObservationPlaceholder, c.Broadcast.FirstObservation)
	}
	switch c.Storage.Driver {
	case StorageJSON, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Health.Port <= 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port out of range: %d", c.Health.Port)
	}
	return nil
}
