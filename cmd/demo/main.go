package main

import (
	"bufio"
	"context"
	"os"

	"dukaan-guru/internal/adapters/repl"
	"dukaan-guru/internal/ai"
	"dukaan-guru/internal/app"
	"dukaan-guru/internal/config"
	"dukaan-guru/internal/share"
	"dukaan-guru/internal/store"
	"dukaan-guru/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()

	var st store.Store
	if cfg.Database.URL != "" {
		pool, err := store.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		pg, err := store.NewPostgres(ctx, pool)
		if err != nil {
			log.Fatal("database schema", zap.Error(err))
		}
		st = pg
	} else {
		st = store.NewMemory()
	}

	if cfg.AI.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; chat turns will fail until it is configured")
	}
	agent := ai.NewAgent(cfg.AI.OpenAIKey)

	var shareClient share.Client
	if cfg.WhatsAppEnabled() {
		shareClient = share.NewWhatsAppClient(cfg.WhatsApp)
	}

	svc := app.NewService(st, agent, app.Options{
		ShareClient: shareClient,
		Logger:      logger.Named(log, "app"),
		TurnTimeout: cfg.AI.TurnTimeout,
	})
	if err := svc.Bootstrap(ctx); err != nil {
		log.Warn("failed to restore session from setup record", zap.Error(err))
	}

	if err := repl.Run(ctx, svc, bufio.NewReader(os.Stdin)); err != nil {
		log.Fatal("demo", zap.Error(err))
	}
}
