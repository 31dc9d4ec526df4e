package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/config"
	importHandler "catalog-importer/internal/domains/importer/handler"
	importService "catalog-importer/internal/domains/importer/service"
	mediaRepo "catalog-importer/internal/domains/media/repository"
	mediaService "catalog-importer/internal/domains/media/service"
	productHandler "catalog-importer/internal/domains/product/handler"
	productRepo "catalog-importer/internal/domains/product/repository"
	productService "catalog-importer/internal/domains/product/service"
	taxonomyRepo "catalog-importer/internal/domains/taxonomy/repository"
	taxonomyService "catalog-importer/internal/domains/taxonomy/service"
	infraCache "catalog-importer/internal/infrastructure/cache"
	"catalog-importer/internal/infrastructure/database"
	"catalog-importer/internal/infrastructure/memory"
	"catalog-importer/internal/infrastructure/storage"
	"catalog-importer/pkg/cache"
	"catalog-importer/pkg/httpclient"
	"catalog-importer/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies, dùng chung cho cmd/api,
// cmd/worker và cmd/importer.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB // nil with the memory driver
	Cache       cache.Cache
	Storage     mediaService.ObjectStorage
	Images      *storage.ImageProcessor
	Fetcher     *httpclient.Client
	QueueClient *asynq.Client // set only when variants are queued
	JWTManager  *jwt.Manager

	// Repositories
	ProductRepo  productRepo.Repository
	TaxonomyRepo taxonomyRepo.Repository
	MediaRepo    mediaRepo.Repository

	// Services
	TaxonomyService taxonomyService.TaxonomyService
	VariantService  *mediaService.VariantService
	MediaService    mediaService.MediaService
	ProductService  productService.ProductService
	ImportService   importService.ImportService

	// Handlers
	ImportHandler  *importHandler.ImportHandler
	ProductHandler *productHandler.ProductHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer loads config from the environment and builds every layer.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(ctx, cfg)
}

// NewContainerWithConfig build graph theo thứ tự:
// infrastructure, repositories, services, handlers.
func NewContainerWithConfig(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().
		Str("env", cfg.App.Environment).
		Str("store", cfg.App.StoreDriver).
		Str("variants", cfg.Media.VariantsMode).
		Msg("Initializing container")

	c := &Container{
		Config:     cfg,
		Images:     storage.NewImageProcessor(),
		Fetcher:    httpclient.New(cfg.Media.HTTPTimeout, cfg.Media.UserAgent),
		JWTManager: jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry),
	}

	var err error
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		c.initMemoryStores()
	default:
		err = c.initPostgresStores(ctx)
	}
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initServices()
	c.initHandlers()

	log.Info().Msg("Container initialized")
	return c, nil
}

// ========================================
// INFRASTRUCTURE + REPOSITORIES
// ========================================

func (c *Container) initMemoryStores() {
	terms := memory.NewTermRepository()
	c.TaxonomyRepo = terms
	c.ProductRepo = memory.NewProductRepository(terms)
	c.MediaRepo = memory.NewMediaRepository()
	c.Storage = memory.NewBlobStorage("memory://" + c.Config.MinIO.Bucket)
	c.Cache = cache.NewMemoryCache()
	log.Warn().Msg("Using in-memory stores, nothing survives a restart")
}

func (c *Container) initPostgresStores(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(connectCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := database.EnsureSchema(connectCtx, db.Pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	c.ProductRepo = productRepo.NewPostgresRepository(db.Pool)
	c.TaxonomyRepo = taxonomyRepo.NewPostgresRepository(db.Pool)
	c.MediaRepo = mediaRepo.NewPostgresRepository(db.Pool)

	blobs, err := storage.NewMinIOStorage(connectCtx, c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = blobs

	// Redis only holds import progress; a process-local cache keeps a
	// single instance usable without it.
	redisCache := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := redisCache.Connect(connectCtx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, import progress is kept in memory")
		c.Cache = cache.NewMemoryCache()
	} else {
		c.Cache = redisCache
	}

	return nil
}

// ========================================
// SERVICES + HANDLERS
// ========================================

func (c *Container) initServices() {
	c.TaxonomyService = taxonomyService.NewTaxonomyService(c.TaxonomyRepo)
	c.VariantService = mediaService.NewVariantService(c.MediaRepo, c.Storage, c.Images)
	c.ProductService = productService.NewProductService(c.ProductRepo)

	var variants mediaService.VariantGenerator
	switch c.Config.Media.VariantsMode {
	case config.VariantsInline:
		variants = mediaService.InlineVariants{Service: c.VariantService}
	case config.VariantsQueue:
		c.QueueClient = asynq.NewClient(c.RedisClientOpt())
		variants = mediaService.QueuedVariants{Client: c.QueueClient, Repo: c.MediaRepo}
	default:
		variants = mediaService.NoopVariants{}
	}

	c.MediaService = mediaService.NewMediaService(
		c.MediaRepo,
		c.Storage,
		c.Fetcher,
		c.Images,
		variants,
		mediaService.Options{MaxBytes: c.Config.Media.MaxBytes},
	)

	rows := importService.NewRowImporter(
		c.ProductRepo,
		c.TaxonomyService,
		mediaService.NewResolver(c.Fetcher),
		c.MediaService,
		importService.RowImporterOptions{DefaultDescription: c.Config.Import.DefaultDescription},
	)
	c.ImportService = importService.NewImportService(
		rows,
		importService.NewProgressStore(c.Cache, c.Config.Import.ProgressTTL),
		importService.OrchestratorOptions{FilePath: c.Config.Import.FilePath},
	)
}

func (c *Container) initHandlers() {
	c.ImportHandler = importHandler.NewImportHandler(c.ImportService, importHandler.Options{
		DefaultBatchSize: c.Config.Import.BatchSize,
		MaxBatchSize:     c.Config.Import.MaxBatchSize,
	})
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService)
}

// ========================================
// HELPERS
// ========================================

// RedisClientOpt is the asynq connection derived from the Redis config.
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// HealthCheck kiểm tra trạng thái của từng backing system.
func (c *Container) HealthCheck(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"store": c.Config.App.StoreDriver}
	healthy := true

	check := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			status[name] = "unhealthy: " + err.Error()
			healthy = false
			return
		}
		status[name] = "healthy"
	}

	if c.DB != nil {
		check("database", c.DB.Ping)
	}
	check("cache", c.Cache.Ping)
	if blobs, ok := c.Storage.(*storage.MinIOStorage); ok {
		check("storage", blobs.HealthCheck)
	}
	return status, healthy
}

// Cleanup đóng connections; an toàn cả khi container mới build một phần.
func (c *Container) Cleanup() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close queue client")
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
	log.Info().Msg("Container cleanup completed")
}
