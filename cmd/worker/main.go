package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Raymond9734/storefront-backend/internal/config"
	"github.com/Raymond9734/storefront-backend/internal/db"
	"github.com/Raymond9734/storefront-backend/internal/observability/logger"
	"github.com/Raymond9734/storefront-backend/internal/queue"
	"github.com/Raymond9734/storefront-backend/internal/repository"
	"github.com/Raymond9734/storefront-backend/internal/worker"
)

const serviceName = "storefront-worker"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: serviceName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("worker exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting stock alert worker")

	if cfg.Queue.RedisURL == "" {
		return errors.New("REDIS_URL is required for the worker")
	}

	// Connect to database
	database, err := db.New(ctx, db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, log)
	if err != nil {
		return err
	}
	defer database.Close()

	// Connect to Redis queue
	redisClient, err := queue.Connect(ctx, cfg.Queue.RedisURL, log)
	if err != nil {
		return err
	}
	queueClient := queue.NewRedisClient(redisClient, cfg.Queue.QueueName, log)
	defer queueClient.Close()

	processor := worker.NewAlertProcessor(
		repository.NewProductRepository(database.DB),
		worker.NewLogNotifier(log),
		log,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := queueClient.Consume(gctx, processor.Handle, cfg.Worker.Concurrency)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.Worker.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Info("worker metrics listening", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("worker stopped gracefully")
	return nil
}
