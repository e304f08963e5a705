package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/foyerhq/foyer/internal/config/kiosk-api"
	"github.com/foyerhq/foyer/internal/obs"
	"github.com/foyerhq/foyer/internal/obs/retry"
	ob "github.com/foyerhq/foyer/internal/outbox"
	kafkaRepo "github.com/foyerhq/foyer/internal/repository/kafka"
	pg "github.com/foyerhq/foyer/internal/repository/postgres"
	"github.com/foyerhq/foyer/internal/services/kiosk"
	"github.com/foyerhq/foyer/internal/signout"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/kiosk-api.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting kiosk-api", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(ctx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	tokens, err := signout.NewVerifier(signout.Config{
		Secret:        []byte(cfg.SignOut.Secret),
		DefaultRegion: cfg.SignOut.DefaultRegion,
	})
	if err != nil {
		logger.Fatal("sign-out verifier init", zap.Error(err))
	}

	producer := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = producer.Close() }()
	publisher := kafkaRepo.NewVisitEventsKafka(producer)

	visits := pg.NewVisitRepo(db)
	box := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, logger)

	uc := kiosk.NewUsecase(logger, visits, box, tx, tokens, kiosk.Config{TokenTTL: cfg.SignOut.TTL})

	runner := ob.NewOutboxRunner(
		logger, box,
		ob.MakeGlobalOutboxHandler(publisher, retry.DefaultKafkaPolicy(logger)),
		cfg.Outbox.Workers, cfg.Outbox.BatchSize, cfg.Outbox.WaitTime, cfg.Outbox.InProgressTTL,
	)
	runner.Start(ctx)

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, logger)

	httpSrv := buildHTTPServer(cfg, logger, uc)
	errCh := make(chan error, 1)
	go func() { errCh <- serveHTTP(httpSrv, logger) }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal")
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	logger.Info("bye")
}
