package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret = "your-secret-key-change-in-production"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	VariantsInline = "inline"
	VariantsQueue  = "queue"
	VariantsOff    = "off"
)

// Config chứa toàn bộ application configuration, đọc từ env.
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
	JWT    JWTConfig
	Import ImportConfig
	Media  MediaConfig
	Queue  QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	Root        string // base for relative paths (import file)
	StoreDriver string // postgres | memory
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// ImportConfig cấu hình cho batch importer.
type ImportConfig struct {
	FilePath           string // well-known catalog file, relative to App.Root
	BatchSize          int
	MaxBatchSize       int
	ProgressTTL        time.Duration
	DefaultDescription string
}

type MediaConfig struct {
	HTTPTimeout  time.Duration
	MaxBytes     int64
	VariantsMode string // inline | queue | off
	UserAgent    string
}

// QueueConfig drives cmd/worker.
type QueueConfig struct {
	Concurrency int
	SweepSpec   string // cron spec for the variant sweep, empty disables it
	SweepLimit  int
	HealthAddr  string
}

// DefaultDescription is the filler applied to products without a description.
const DefaultDescription = "Lorem Ipsum is simply dummy text of the printing and typesetting industry. " +
	"Lorem Ipsum has been the industry's standard dummy text ever since the 1500s."

// Load đọc config từ environment variables.
func Load() (*Config, error) {
	root := getEnv("APP_ROOT", ".")

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Catalog Importer"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Root:        root,
			StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "catalog"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Import: ImportConfig{
			FilePath:           resolvePath(root, getEnv("IMPORT_FILE_PATH", "csv/VG.csv")),
			BatchSize:          getEnvInt("IMPORT_BATCH_SIZE", 100),
			MaxBatchSize:       getEnvInt("IMPORT_MAX_BATCH_SIZE", 1000),
			ProgressTTL:        getEnvDuration("IMPORT_PROGRESS_TTL", time.Hour),
			DefaultDescription: getEnv("IMPORT_DEFAULT_DESCRIPTION", DefaultDescription),
		},
		Media: MediaConfig{
			HTTPTimeout:  getEnvDuration("MEDIA_HTTP_TIMEOUT", 30*time.Second),
			MaxBytes:     int64(getEnvInt("MEDIA_MAX_BYTES", 10*1024*1024)),
			VariantsMode: strings.ToLower(getEnv("MEDIA_VARIANTS_MODE", VariantsInline)),
			UserAgent:    getEnv("MEDIA_USER_AGENT", "catalog-importer/1.0"),
		},
		Queue: QueueConfig{
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 5),
			SweepSpec:   getEnv("WORKER_SWEEP_SPEC", "*/15 * * * *"),
			SweepLimit:  getEnvInt("WORKER_SWEEP_LIMIT", 100),
			HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reject các settings không hợp lệ.
func (c *Config) Validate() error {
	switch c.App.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.App.StoreDriver)
	}

	switch c.Media.VariantsMode {
	case VariantsInline, VariantsQueue, VariantsOff:
	default:
		return fmt.Errorf("MEDIA_VARIANTS_MODE must be inline, queue or off, got %q", c.Media.VariantsMode)
	}

	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}
	if c.Import.MaxBatchSize < c.Import.BatchSize {
		return fmt.Errorf("IMPORT_MAX_BATCH_SIZE (%d) must be >= IMPORT_BATCH_SIZE (%d)", c.Import.MaxBatchSize, c.Import.BatchSize)
	}
	if c.Import.ProgressTTL <= 0 {
		return fmt.Errorf("IMPORT_PROGRESS_TTL must be positive")
	}

	if c.App.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
