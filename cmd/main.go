package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gadgettrust/orderflow/internal/cache"
	"github.com/gadgettrust/orderflow/internal/config"
	"github.com/gadgettrust/orderflow/internal/db"
	"github.com/gadgettrust/orderflow/internal/gateway"
	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/logger"
	"github.com/gadgettrust/orderflow/internal/notify"
	"github.com/gadgettrust/orderflow/internal/repository/postgresql"
	"github.com/gadgettrust/orderflow/internal/server"
	"github.com/gadgettrust/orderflow/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logg := logger.New()
	defer func() { _ = logg.Sync() }()

	producer := buildProducer(cfg, logg)
	dispatcher := notify.NewDispatcher(producer, logg, cfg.Notify.Workers, cfg.Notify.BatchSize, cfg.Notify.FlushTimeout)
	dispatcher.Start(ctx)

	selector := lifecycle.NewSelector(cfg.DirectEscrowEnabled)

	var (
		stg      server.Storage
		userRepo server.UserRepo
	)

	switch cfg.StorageBackend {
	case "postgres":
		database, err := db.NewDB(ctx, cfg.DB)
		if err != nil {
			logg.Fatal("failed to connect to database", zap.Error(err))
		}

		users := postgresql.NewUserRepo(database)
		if err := users.CreateUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logg.Fatal("failed to seed admin user", zap.Error(err))
		}

		pg := storage.NewPostgresStorage(
			database,
			postgresql.NewOrderRepo(database),
			postgresql.NewItemRepo(database),
			postgresql.NewStepRepo(database),
			postgresql.NewHistoryRepo(database),
			selector,
			dispatcher,
		).WithCache(cache.NewOrderCache())
		if err := pg.WarmCache(ctx); err != nil {
			logg.Warn("failed to warm order cache", zap.Error(err))
		}

		stg = pg
		userRepo = users

	default:
		var opts []storage.MemoryOption
		if cfg.SnapshotPath != "" {
			opts = append(opts, storage.WithSnapshot(storage.NewSnapshot(cfg.SnapshotPath)))
		}

		mem, err := storage.NewMemoryStorage(selector, dispatcher, opts...)
		if err != nil {
			logg.Fatal("failed to initialize memory storage", zap.Error(err))
		}

		users, err := storage.NewStaticUserRepo(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logg.Fatal("failed to initialize user repo", zap.Error(err))
		}

		stg = mem
		userRepo = users
	}

	srv := server.New(stg, userRepo, logg)
	consumer := gateway.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GatewayTopic, cfg.Kafka.GatewayGroup, stg, logg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})

	g.Go(func() error {
		return consumer.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("shutdown with error", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	dispatcher.Shutdown(drainCtx)

	logg.Info("service stopped")
}

func buildProducer(cfg *config.Config, logg *zap.Logger) notify.Producer {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Brokers[0] == "" {
		return notify.NewConsoleProducer(logg)
	}
	return notify.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic)
}
