package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tazhibayda/portal-service/internal/config"
	api "github.com/tazhibayda/portal-service/internal/http"
	"github.com/tazhibayda/portal-service/internal/log"
	"github.com/tazhibayda/portal-service/internal/metrics"
	"github.com/tazhibayda/portal-service/internal/queue"
	"github.com/tazhibayda/portal-service/internal/repo"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Prod())
	if err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("mongo indexes", zap.Error(err))
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	defer rds.Close()
	if err := rds.Ping(ctx); err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, "portal.events")
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer pub.Close()

	metrics.MustRegister()

	h := api.NewHandler(store, store, rds, pub,
		cfg.CookieName, cfg.CookieSecure,
		time.Duration(cfg.SessionTTLHours)*time.Hour)
	h.HealthPing = func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return err
		}
		return rds.Ping(ctx)
	}

	r := api.NewRouter(h, "web/templates/*.html")

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("portal-service listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
