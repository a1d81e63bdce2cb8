package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/settlement-worker/consumer"
	"github.com/radieske/pub-bets/internal/settlement-worker/repository"
	"github.com/radieske/pub-bets/internal/settlement-worker/tracker"
	"github.com/radieske/pub-bets/internal/shared/cache"
	"github.com/radieske/pub-bets/internal/shared/config"
	"github.com/radieske/pub-bets/internal/shared/kafka"
	"github.com/radieske/pub-bets/internal/shared/logger"
	"github.com/radieske/pub-bets/internal/shared/metrics"
	"github.com/radieske/pub-bets/internal/store/factory"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres direto: o worker lê o estado completo e grava o histórico
	pg, err := factory.OpenPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal("postgres", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group único para os três tópicos
	reader := kafka.NewReader(cfg.Brokers(), "settlement-worker", cfg.TopicBetPlaced, cfg.TopicCatalogUpdated, cfg.TopicBetsCleared)
	defer reader.Close()

	settled := kafka.NewWriter(cfg.Brokers(), cfg.TopicBetSettled)
	defer settled.Close()

	var dlq kafka.MessageWriter
	if cfg.TopicBetSettledDLQ != "" {
		w := kafka.NewWriter(cfg.Brokers(), cfg.TopicBetSettledDLQ)
		defer w.Close()
		dlq = w
	}

	m := metrics.NewSettlement(prometheus.DefaultRegisterer)
	proc := &consumer.Processor{
		Log:              log,
		Reader:           reader,
		Source:           pg,
		Tracker:          tracker.NewRedisTracker(redisClient),
		History:          repository.NewPostgresRepo(pg.DB()),
		Settled:          settled,
		DLQ:              dlq,
		TopicBetsCleared: cfg.TopicBetsCleared,
		Retries:          3,
		RetryBackoff:     300 * time.Millisecond,

		OnConsumed:   func(topic string) { m.Consumed.WithLabelValues(topic).Inc() },
		OnTransition: func(status string) { m.Transitions.WithLabelValues(status).Inc() },
		OnError:      func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
		OnLiability:  m.OpenLiability.Set,
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	}, func(err error) {
		log.Error("metrics server", zap.Error(err))
	})
	defer metricsSrv.Close()

	// Reconciliação inicial: cobre o que mudou enquanto o worker estava parado
	if err := proc.Reconcile(ctx); err != nil {
		log.Warn("initial reconcile", zap.Error(err))
	}

	log.Info("settlement-worker started",
		zap.Strings("consume", []string{cfg.TopicBetPlaced, cfg.TopicCatalogUpdated, cfg.TopicBetsCleared}),
		zap.String("publish", cfg.TopicBetSettled),
	)
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped", zap.Error(err))
		return
	}
	log.Info("settlement-worker stopped")
}
