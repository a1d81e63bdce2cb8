package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/radieske/pub-bets/internal/bet-service/archive"
	kpub "github.com/radieske/pub-bets/internal/bet-service/producer"
	"github.com/radieske/pub-bets/internal/betctl"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/blob"
	"github.com/radieske/pub-bets/internal/shared/config"
	"github.com/radieske/pub-bets/internal/shared/logger"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/internal/store/factory"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "betctl"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &betctl.App{
		Out:            os.Stdout,
		Log:            log,
		DefaultCatalog: catalog.Default(cfg.EventTitle),
		Open: func(ctx context.Context) (store.Store, error) {
			return factory.Open(ctx, cfg, log)
		},
	}
	// sem broker com STORE=memory; senão o settlement-worker precisa saber das mudanças
	app.Publisher = kpub.Nop{}
	var kp *kpub.KafkaPublisher
	if cfg.Store != "memory" {
		kp = kpub.NewKafkaPublisher(cfg.Brokers(), cfg.TopicBetPlaced, cfg.TopicCatalogUpdated, cfg.TopicBetsCleared)
		app.Publisher = kp
	}

	// export pro S3 só quando configurado
	if cfg.S3Bucket != "" {
		app.NewArchiver = func(ctx context.Context) (betctl.Archiver, error) {
			w, err := blob.NewS3Writer(ctx, blob.Config{
				Bucket:    cfg.S3Bucket,
				Region:    cfg.S3Region,
				Endpoint:  cfg.S3Endpoint,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			})
			if err != nil {
				return nil, err
			}
			return archive.NewExporter(w, cfg.S3Prefix), nil
		}
	}

	err = betctl.NewRootCommand(app).ExecuteContext(ctx)
	app.Close()
	if kp != nil {
		kp.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "betctl:", err)
		stop()
		os.Exit(1)
	}
}
