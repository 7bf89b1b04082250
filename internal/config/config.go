package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only acceptable outside production
const DefaultJWTSecret = "default-secret"

// Config holds all application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Queue    QueueConfig    `yaml:"queue"`
	API      APIConfig      `yaml:"api"`
	Worker   WorkerConfig   `yaml:"worker"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// AppConfig holds environment and logging settings
type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// QueueConfig holds queue configuration (Redis)
type QueueConfig struct {
	RedisURL  string `yaml:"redis_url"`
	QueueName string `yaml:"queue_name"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port int `yaml:"port"`
}

// WorkerConfig holds stock alert worker configuration
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
	// MetricsPort serves /metrics; 0 disables it.
	MetricsPort int `yaml:"metrics_port"`
}

// CacheConfig selects the product cache backend: none, memory or redis
type CacheConfig struct {
	Kind string        `yaml:"kind"`
	TTL  time.Duration `yaml:"ttl"`
}

// AuthConfig holds password hashing and token settings
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	JWTExpiresIn time.Duration `yaml:"jwt_expires_in"`
	JWTIssuer    string        `yaml:"jwt_issuer"`
	JWTAudience  string        `yaml:"jwt_audience"`
	BcryptRounds int           `yaml:"bcrypt_rounds"`
}

// UploadConfig holds image upload settings
type UploadConfig struct {
	Dir          string `yaml:"dir"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
	MaxFiles     int    `yaml:"max_files"`
}

// TracingConfig holds the OTLP exporter endpoint; empty disables tracing
type TracingConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:      "dev",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "storefront",
			Password: "storefront",
			DBName:   "storefront",
			SSLMode:  "disable",
		},
		Queue: QueueConfig{
			RedisURL:  "redis://localhost:6379/0",
			QueueName: "stock_alerts",
		},
		API: APIConfig{
			Port: 3000,
		},
		Worker: WorkerConfig{
			Concurrency: 3,
			MetricsPort: 9091,
		},
		Cache: CacheConfig{
			Kind: "memory",
			TTL:  30 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:    DefaultJWTSecret,
			JWTExpiresIn: time.Hour,
			BcryptRounds: 10,
		},
		Upload: UploadConfig{
			Dir:          "uploads/images",
			MaxFileBytes: 5 * 1024 * 1024,
			MaxFiles:     5,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, an optional .env file and finally environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	envString("APP_ENV", &c.App.Env)
	envString("LOG_LEVEL", &c.App.LogLevel)

	envString("DB_HOST", &c.Database.Host)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.DBName)
	envString("DB_SSLMODE", &c.Database.SSLMode)

	envString("REDIS_URL", &c.Queue.RedisURL)
	envString("QUEUE_NAME", &c.Queue.QueueName)

	envString("CACHE_KIND", &c.Cache.Kind)

	envString("JWT_SECRET", &c.Auth.JWTSecret)
	envString("JWT_ISS", &c.Auth.JWTIssuer)
	envString("JWT_AUD", &c.Auth.JWTAudience)

	envString("UPLOAD_DIR", &c.Upload.Dir)
	envString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)

	ints := []struct {
		key string
		dst *int
	}{
		{"DB_PORT", &c.Database.Port},
		{"API_PORT", &c.API.Port},
		{"WORKER_CONCURRENCY", &c.Worker.Concurrency},
		{"WORKER_METRICS_PORT", &c.Worker.MetricsPort},
		{"BCRYPT_ROUNDS", &c.Auth.BcryptRounds},
		{"UPLOAD_MAX_FILES", &c.Upload.MaxFiles},
	}
	for _, v := range ints {
		if err := envInt(v.key, v.dst); err != nil {
			return err
		}
	}

	if raw := os.Getenv("UPLOAD_MAX_FILE_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_FILE_BYTES: %w", err)
		}
		c.Upload.MaxFileBytes = n
	}

	if err := envDuration("CACHE_TTL", &c.Cache.TTL); err != nil {
		return err
	}
	if err := envDuration("JWT_EXPIRES_IN", &c.Auth.JWTExpiresIn); err != nil {
		return err
	}

	return nil
}

// Validate rejects configurations that cannot work
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Kind) {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("invalid CACHE_KIND: %s (must be none, memory or redis)", c.Cache.Kind)
	}
	if c.Auth.BcryptRounds < 4 || c.Auth.BcryptRounds > 31 {
		return fmt.Errorf("invalid BCRYPT_ROUNDS: %d", c.Auth.BcryptRounds)
	}
	if c.Auth.JWTExpiresIn <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRES_IN: %s", c.Auth.JWTExpiresIn)
	}
	if strings.EqualFold(c.App.Env, "prod") && c.Auth.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Upload.MaxFiles < 1 || c.Upload.MaxFileBytes < 1 {
		return errors.New("upload limits must be positive")
	}
	return nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// envDuration accepts Go durations ("90s", "1h"); bare integers are seconds.
func envDuration(key string, dst *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
