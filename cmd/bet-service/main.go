package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/pub-bets/internal/bet-service/archive"
	"github.com/radieske/pub-bets/internal/bet-service/board"
	bhttp "github.com/radieske/pub-bets/internal/bet-service/http"
	kpub "github.com/radieske/pub-bets/internal/bet-service/producer"
	"github.com/radieske/pub-bets/internal/bet-service/ws"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/blob"
	"github.com/radieske/pub-bets/internal/shared/config"
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

	// Store: Postgres + Redis, ou memória em STORE=memory
	st, err := factory.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	defer st.Close()

	def := catalog.Default(cfg.EventTitle)
	if _, err := st.LoadOrInitialize(ctx, def); err != nil {
		log.Fatal("seed catalog", zap.Error(err))
	}

	// Kafka: só quando há infraestrutura real
	var publ bhttp.Publisher = kpub.Nop{}
	if cfg.Store != "memory" {
		kp := kpub.NewKafkaPublisher(cfg.Brokers(), cfg.TopicBetPlaced, cfg.TopicCatalogUpdated, cfg.TopicBetsCleared)
		defer kp.Close()
		publ = kp
	}

	// Export opcional do arquivo de apostas
	var arch bhttp.Archiver
	if cfg.S3Bucket != "" {
		w, err := blob.NewS3Writer(ctx, blob.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal("s3", zap.Error(err))
		}
		arch = archive.NewExporter(w, cfg.S3Prefix)
		log.Info("bets archive export enabled", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
	}

	// Quadro ao vivo: re-liquida a cada snapshot e empurra pelo WebSocket
	hub := ws.NewHub(log, allowOrigin(cfg.CORSOrigins))
	stopBoard, err := board.New(log, hub).Start(ctx, st, def)
	if err != nil {
		log.Fatal("live board", zap.Error(err))
	}
	defer stopBoard()

	api := bhttp.NewServer(log, st, publ, metrics.NewBetService(prometheus.DefaultRegisterer), bhttp.Options{
		AccessCode:     cfg.AccessCode,
		AdminPIN:       cfg.AdminPIN,
		MaxPayout:      cfg.MaxPayout,
		DefaultCatalog: def,
		CORSOrigins:    cfg.CORSOrigins,
		Archive:        arch,
		WS:             http.HandlerFunc(hub.HandleWS),
	})
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, st.Ping, func(err error) {
		log.Error("metrics server", zap.Error(err))
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	if cfg.AccessCode == "" {
		log.Warn("ACCESS_CODE not set, every session may place bets")
	}
	if cfg.AdminPIN == "" {
		log.Warn("ADMIN_PIN not set, admin routes are disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr), zap.String("store", cfg.Store))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("bet-service stopped", zap.Error(err))
		return
	}
	log.Info("bet-service stopped")
}

// allowOrigin aplica CORS_ORIGINS também ao upgrade do WebSocket
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}
