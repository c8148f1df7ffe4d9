package container

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"marketplace/aggregator/internal/catalog"
	"marketplace/aggregator/internal/client"
	"marketplace/aggregator/internal/config"
	"marketplace/aggregator/internal/proxy"
	"marketplace/aggregator/internal/queue"
	"marketplace/aggregator/internal/repository"
	"marketplace/aggregator/internal/service"
	"marketplace/aggregator/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.SourceClient
	Repository   repository.ProductRepository
	Queue        queue.Queue
	StateManager state.StateManager
	Catalog      *catalog.Catalog

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	// The engine cannot serve anything without a category catalog, so a
	// load failure here is fatal for the whole process.
	catalogLoader := catalog.NewLoader(func() ([]byte, error) {
		data, err := os.ReadFile(cfg.Catalog.DocumentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read category document %s: %w", cfg.Catalog.DocumentPath, err)
		}
		return data, nil
	})
	cat, err := catalogLoader.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}
	container.Catalog = cat

	// Initialize ProxySupplier
	var testURL string
	for _, baseURL := range cfg.Source.BaseURLs {
		testURL = baseURL
		break
	}
	proxySupplier, err := proxy.NewProxySupplier(context.Background(), cfg.Source.Proxies, testURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	// Initialize repository
	db, err := pgxpool.New(context.Background(),
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
		))
	if err != nil {
		return nil, err
	}
	container.db = db

	productRepo := repository.NewProductRepository(db)
	container.Repository = productRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	_, err = rdb.Ping(context.Background()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(rdb, cfg.Redis)
	if err != nil {
		return nil, err
	}
	container.Queue = redisQueue

	container.redis = rdb
	stateManager := state.NewRedisStateManager(rdb)
	container.StateManager = stateManager

	// Initialize client with queue (after queue is created)
	sourceClient := client.NewSourceClient(cfg.Source, proxySupplier, redisQueue)
	container.Client = sourceClient

	service := service.NewService(
		productRepo,
		sourceClient,
		redisQueue,
		stateManager,
		cat,
		cfg.Source.MaxWorkers,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)
	container.Service = service

	return container, nil
}

// Run executes a full ingestion cycle
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Run IngestAll to enqueue tasks
	g.Go(func() error {
		return c.Service.IngestAll(ctx)
	})

	// Run workers to process tasks
	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Source.MaxWorkers)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	c.redis.Close()

	log.Info("Container shut down successfully")
	return nil
}
