package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tornbot/config"
	"tornbot/internal/discord"
	"tornbot/internal/health"
	"tornbot/internal/metrics"
	"tornbot/internal/torn/broadcast"
	"tornbot/internal/torn/commands"
	"tornbot/internal/torn/memorystore"
	"tornbot/pkg/storage/jsonfile"
	"tornbot/pkg/storage/memory"
	"tornbot/pkg/storage/postgres"
	"tornbot/pkg/torn"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is a credential store that owns resources.
type Store interface {
	commands.CredentialStore
	Close() error
}

// OpenStore opens the credential store selected by cfg.Driver.
func OpenStore(cfg config.StorageConfig, pg config.PostgresConfig, logger *zap.Logger) (Store, health.Checker, error) {
	switch cfg.Driver {
	case config.StorageJSON:
		s, err := jsonfile.Open(cfg.KeysFile, cfg.TOSFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using json credential store", zap.String("keys", cfg.KeysFile), zap.String("tos", cfg.TOSFile))
		return s, nil, nil

	case config.StoragePostgres:
		c, err := postgres.InitializeAndMigrate(pg, cfg.CreateDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		logger.Info("using postgres credential store", zap.String("host", pg.Host), zap.String("db", pg.DBName))
		check := func(ctx context.Context) error {
			if !c.IsHealthy(ctx) {
				return errors.New("postgres unreachable")
			}
			return nil
		}
		return c, check, nil

	case config.StorageMemory:
		logger.Warn("using in-memory credential store, keys are lost on restart")
		return memory.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Run builds every component from cfg and blocks until ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	m := metrics.New()

	store, storeCheck, err := OpenStore(cfg.Storage, cfg.Postgres, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	tornClient := torn.NewRESTClient(cfg.Torn.BaseURL, cfg.Torn.Timeout,
		torn.WithRateLimit(cfg.Torn.RequestsPerMinute, cfg.Torn.Burst),
		torn.WithObserver(m.ObserveUpstream),
	)

	bot, err := discord.New(discord.Config{
		Token:          cfg.Discord.Token,
		GuildID:        cfg.Discord.GuildID,
		CommandTimeout: cfg.Torn.Timeout + 5*time.Second,
	}, nil, logger.Named("discord"))
	if err != nil {
		return err
	}

	guilds := memorystore.NewGuildStore()
	broadcaster := broadcast.New(broadcast.Config{
		Interval:         cfg.Broadcast.Interval,
		Epsilon:          decimal.NewFromFloat(cfg.Broadcast.Epsilon),
		FirstObservation: cfg.Broadcast.FirstObservation,
	},
		tornClient.StockSource(cfg.Torn.ServiceKey),
		discord.NewPublisher(bot.Session()),
		guilds,
		logger.Named("broadcast"),
		broadcast.WithRecorder(m),
	)
	defer broadcaster.Close()

	if cfg.Torn.ServiceKey == "" {
		logger.Warn("torn.service_key is empty, /stock is disabled")
	}

	dispatcher := commands.NewDispatcher(commands.Config{
		TOSRequired:          cfg.TOS.Required,
		PromptKeyAfterAccept: cfg.TOS.PromptKeyAfterAccept,
		TermsText:            cfg.TOS.Text,
		TrackingEnabled:      cfg.Torn.ServiceKey != "",
		TrackingInterval:     cfg.Broadcast.Interval,
		AppID:                cfg.Discord.AppID,
		Permissions:          cfg.Discord.Permissions,
	}, store, tornClient, broadcaster, logger.Named("commands"), commands.WithRecorder(m))
	bot.SetDispatcher(dispatcher)

	hs := health.NewServer(cfg.Health.Port, m.Handler(), logger.Named("health"))
	if storeCheck != nil {
		hs.AddCheck("storage", storeCheck)
	}
	if err := hs.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, hs.Shutdown(shutdownCtx))
	}()

	if err := bot.Open(ctx); err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, bot.Close()) }()

	logger.Info("tornbot started",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("health_port", cfg.Health.Port),
		zap.Bool("tos_required", cfg.TOS.Required),
	)

	<-ctx.Done()
	logger.Info("shutting down", zap.Error(ctx.Err()))
	return nil
}
