package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tornbot/config"
	"tornbot/internal/torn/bot"
	"tornbot/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// secrets from parameter store in prod
	if cfg.UsesParameterStore() {
		store, err := config.NewParameterStore(ctx, cfg.Secrets.SSM.Region)
		if err != nil {
			log.Fatal("failed to create parameter store client", zap.Error(err))
		}
		if err := cfg.ResolveSecrets(ctx, store); err != nil {
			log.Fatal("failed to resolve secrets", zap.Error(err))
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	// run bot
	if err := bot.Run(ctx, cfg, log); err != nil {
		log.Fatal("bot failed", zap.Error(err))
	}
}
