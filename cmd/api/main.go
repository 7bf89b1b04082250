package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/cache"
	"github.com/Raymond9734/storefront-backend/internal/config"
	"github.com/Raymond9734/storefront-backend/internal/db"
	"github.com/Raymond9734/storefront-backend/internal/handler"
	"github.com/Raymond9734/storefront-backend/internal/observability/logger"
	"github.com/Raymond9734/storefront-backend/internal/observability/tracing"
	"github.com/Raymond9734/storefront-backend/internal/queue"
	"github.com/Raymond9734/storefront-backend/internal/repository"
	"github.com/Raymond9734/storefront-backend/internal/service"
	"github.com/Raymond9734/storefront-backend/internal/storage"
)

const serviceName = "storefront-api"

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
		log.Error("api server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting storefront API server", zap.String("env", cfg.App.Env))

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: serviceName,
		Environment: cfg.App.Env,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

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

	// Redis backs the stock alert queue and, optionally, the product cache.
	// An empty REDIS_URL runs the API without alerts.
	var (
		redisClient *redis.Client
		alerts      queue.Client
	)
	if cfg.Queue.RedisURL != "" {
		redisClient, err = queue.Connect(ctx, cfg.Queue.RedisURL, log)
		if err != nil {
			return err
		}
		alerts = queue.NewRedisClient(redisClient, cfg.Queue.QueueName, log)
		defer alerts.Close()
	} else {
		log.Warn("REDIS_URL not set: stock alerts disabled")
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	productRepo, err := productRepository(cfg, database, redisClient, log)
	if err != nil {
		return err
	}

	// Initialize services
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptRounds)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.JWTIssuer,
		Audience:  cfg.Auth.JWTAudience,
		ExpiresIn: cfg.Auth.JWTExpiresIn,
	})

	var publisher queue.Publisher
	if alerts != nil {
		publisher = alerts
	}

	customerSvc := service.NewCustomerService(customerRepo, hasher, tokens, log)
	productSvc := service.NewProductService(productRepo, publisher, log)
	userSvc := service.NewUserService(userRepo, hasher, tokens, log)

	images, err := storage.NewLocalImageStore(cfg.Upload.Dir, cfg.Upload.MaxFileBytes, log)
	if err != nil {
		return err
	}

	// Initialize handlers
	var queueHealth handler.HealthChecker
	if alerts != nil {
		queueHealth = alerts
	}

	router := handler.NewRouter(handler.RouterConfig{
		Health:    handler.NewHealthHandler(database, queueHealth, log),
		Customers: handler.NewCustomerHandler(customerSvc, log),
		Products: handler.NewProductHandler(productSvc, images, handler.UploadLimits{
			MaxFileBytes: cfg.Upload.MaxFileBytes,
			MaxFiles:     cfg.Upload.MaxFiles,
		}, log),
		Users:     handler.NewUserHandler(userSvc, log),
		Tokens:    tokens,
		UploadDir: cfg.Upload.Dir,
		Logger:    log,
	})

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// productRepository wraps the SQL repository with the configured cache
func productRepository(cfg *config.Config, database *db.DB, redisClient *redis.Client, log *zap.Logger) (repository.ProductRepository, error) {
	base := repository.NewProductRepository(database.DB)

	switch strings.ToLower(cfg.Cache.Kind) {
	case "memory":
		log.Info("product cache enabled", zap.String("kind", "memory"), zap.Duration("ttl", cfg.Cache.TTL))
		return repository.NewCachedProductRepository(base, cache.NewMemory(cfg.Cache.TTL), cfg.Cache.TTL, log), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("CACHE_KIND=redis requires REDIS_URL")
		}
		log.Info("product cache enabled", zap.String("kind", "redis"), zap.Duration("ttl", cfg.Cache.TTL))
		return repository.NewCachedProductRepository(base, cache.NewRedis(redisClient, "storefront:", log), cfg.Cache.TTL, log), nil
	default:
		return base, nil
	}
}
