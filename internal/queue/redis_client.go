package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// MaxConcurrency caps Consume's concurrency argument
const MaxConcurrency = 5

// redisClient implements Client using Redis
type redisClient struct {
	client    *redis.Client
	queueName string
	logger    *zap.Logger
}

// Connect parses a Redis URL and verifies the connection
func Connect(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}

// NewRedisClient creates a queue on an existing Redis connection
func NewRedisClient(client *redis.Client, queueName string, logger *zap.Logger) Client {
	return &redisClient{
		client:    client,
		queueName: queueName,
		logger:    logger.With(zap.String("queue", queueName)),
	}
}

// Publish sends a stock alert job to the queue
func (c *redisClient) Publish(ctx context.Context, job *models.StockAlertJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	// LPUSH + BRPOP gives FIFO order
	if err := c.client.LPush(ctx, c.queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to push job to queue: %w", err)
	}

	c.logger.Debug("job published to queue",
		zap.String("product_id", job.ProductID),
		zap.String("store_id", job.TenantID),
	)

	return nil
}

// Consume receives jobs until ctx is cancelled, then waits for in-flight
// jobs. concurrency is clamped to [1, MaxConcurrency].
func (c *redisClient) Consume(ctx context.Context, handler AlertHandler, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	c.logger.Info("starting queue consumer", zap.Int("concurrency", concurrency))

	// Semaphore to limit concurrent processing
	semaphore := make(chan struct{}, concurrency)
	drain := func() {
		for i := 0; i < concurrency; i++ {
			semaphore <- struct{}{}
		}
	}

	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped by context, waiting for in-flight jobs to complete")
			drain()
			return ctx.Err()
		}

		// Blocks for up to a second when the list is empty
		result, err := c.client.BRPop(ctx, time.Second, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopped by context")
				drain()
				return err
			}
			c.logger.Error("failed to pop from queue", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		// BRPOP returns [queueName, value]
		if len(result) < 2 {
			c.logger.Error("unexpected BRPOP result format")
			continue
		}

		var job models.StockAlertJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			c.logger.Error("failed to unmarshal job", zap.Error(err), zap.String("data", result[1]))
			continue
		}

		semaphore <- struct{}{}

		go func(job models.StockAlertJob) {
			defer func() { <-semaphore }()

			if err := handler(ctx, &job); err != nil {
				// The job is already popped; there is no redelivery.
				c.logger.Error("handler failed to process job",
					zap.String("product_id", job.ProductID),
					zap.Error(err),
				)
			}
		}(job)
	}
}

// Close closes the Redis connection
func (c *redisClient) Close() error {
	c.logger.Info("closing Redis connection")
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *redisClient) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
