package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/pandr/coldcallbot/internal/api"
	"github.com/pandr/coldcallbot/internal/bot"
	"github.com/pandr/coldcallbot/internal/config"
	"github.com/pandr/coldcallbot/internal/crm"
	"github.com/pandr/coldcallbot/internal/webapp"
)

func main() {
	godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("cold call bot starting", zap.Int64("results_group", cfg.GroupID))

	store := crm.NewStore()

	var push bot.Pusher
	if cfg.WebappURL != "" {
		push = webapp.New(cfg.WebappURL)
		logger.Info("webapp sync enabled", zap.String("url", cfg.WebappURL))
	}

	b, err := bot.New(bot.Config{
		Token:     cfg.Token,
		GroupID:   cfg.GroupID,
		WebappURL: cfg.WebappURL,
	}, store, push, logger)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	srv := api.NewServer(store, cfg.WebappURL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx, cfg.HTTPAddr)
	})

	g.Go(func() error {
		b.Start()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		b.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("shutdown with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
