package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asistia/care-api/internal/config"
	"github.com/asistia/care-api/internal/repository/postgres"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/messaging/redis"
	"github.com/asistia/care-api/pkg/metrics"
	"github.com/asistia/care-api/pkg/worker"
)

// The worker drains the outbox table and publishes record events to
// redis channels. It runs separately from the API so a broker outage
// never slows request handling.
func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	m := metrics.New("care_worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Worker.BatchSize,
		PollInterval:  cfg.Worker.PollInterval,
		RetryAttempts: cfg.Worker.MaxRetries,
		RetryDelay:    time.Second,
		RetentionAge:  cfg.Worker.RetentionAge,
	}, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)
}
