package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/app/services"
	"github.com/kruegge82/adressCorrector/internal/parser"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"github.com/kruegge82/adressCorrector/internal/search"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// App holds the wired services.
type App struct {
	Settings  Settings
	Corrector config.CorrectorCfg
	Logger    *zap.Logger

	Repository  *reference.CachedRepository
	Searcher    *search.CitySearcher
	Cache       services.ICacheService
	Corrections *services.CorrectionService
	Jobs        *services.JobService
	Admin       *services.AdminService
	Checks      map[string]controllers.HealthCheck

	mongoDB *mongo.Database
	closers []func()
}

// New connects the configured backends and builds the services. Optional
// backends (Meilisearch, the result cache) degrade with a warning; the
// reference backend is required.
func New(ctx context.Context, s Settings, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Settings: s,
		Logger:   logger,
		Checks:   make(map[string]controllers.HealthCheck),
	}

	// 1. Corrector tuning
	cfg, err := config.LoadFile(s.CorrectorFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("corrector config not found, using defaults", zap.String("file", s.CorrectorFile))
		cfg = config.Default()
		config.ApplyEnv(&cfg)
	case err != nil:
		return nil, err
	}
	a.Corrector = cfg

	// 2. Reference data
	repo, err := a.newRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repository, err = reference.NewCachedRepository(repo, s.LookupCacheSize, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 3. City index
	var index reference.CityIndex
	if s.MeiliURL != "" {
		searcher, err := search.NewCitySearcher(search.SearchConfig{
			Host:      s.MeiliURL,
			APIKey:    s.MeiliKey,
			IndexName: s.MeiliIndex,
			Timeout:   2 * time.Second,
		}, logger)
		if err != nil {
			logger.Warn("meilisearch unavailable, city index disabled", zap.Error(err))
		} else {
			a.Searcher = searcher
			a.Checks["meilisearch"] = searcher.Ping
			index = searcher
		}
	}

	// 4. Result cache
	a.Cache = a.newCache(ctx)

	// 5. Services
	store := reference.NewStore(a.Repository, index, logger)
	pipeline := parser.NewPipeline(store, cfg, logger)
	a.Corrections = services.NewCorrectionService(pipeline, a.Cache, cfg, logger)
	a.Jobs = services.NewJobService(a.Corrections, s.JobRetention, logger)

	var indexer services.CityIndexer
	if a.Searcher != nil {
		indexer = a.Searcher
	}
	a.Admin = services.NewAdminService(a.Corrections, a.Repository, indexer, logger)

	logger.Info("services ready",
		zap.String("reference_backend", s.ReferenceBackend),
		zap.String("cache_backend", s.CacheBackend),
		zap.Bool("city_index", a.Searcher != nil))
	return a, nil
}

func (a *App) newRepository(ctx context.Context) (reference.Repository, error) {
	s := a.Settings
	switch s.ReferenceBackend {
	case "memory", "":
		data := models.Dataset{}
		if s.ReferenceFile != "" {
			loaded, err := reference.LoadFile(s.ReferenceFile)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				a.Logger.Warn("reference file not found, starting empty", zap.String("file", s.ReferenceFile))
			case err != nil:
				return nil, err
			default:
				data = loaded
			}
		}
		a.Logger.Info("reference data loaded",
			zap.Int("cities", len(data.Cities)),
			zap.Int("streets", len(data.Streets)),
			zap.Int("districts", len(data.Districts)))
		return reference.NewMemoryRepository(data), nil

	case "mongo":
		db, err := a.connectMongo(ctx)
		if err != nil {
			return nil, err
		}
		return reference.NewMongoRepository(db, a.Logger), nil

	case "postgres":
		repo, err := reference.NewPostgresRepository(ctx, s.PostgresURL, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.Checks["postgres"] = repo.Ping
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown reference backend %q", s.ReferenceBackend)
	}
}

// newCache returns nil when caching is off. A cache backend that cannot be
// reached falls back to the in-memory cache.
func (a *App) newCache(ctx context.Context) services.ICacheService {
	s := a.Settings
	memory := func() services.ICacheService {
		return services.NewMemoryCacheService(s.CacheL1Size, s.CacheTTL, a.Logger)
	}

	switch s.CacheBackend {
	case "none", "off":
		return nil
	case "memory", "":
		return memory()
	case "redis", "hybrid":
		redisCache, err := services.NewRedisCacheService(s.RedisURL, s.CacheTTL, a.Logger)
		if err != nil {
			a.Logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
			return memory()
		}
		a.Checks["redis"] = redisCache.Ping
		a.closers = append(a.closers, func() { _ = redisCache.Close() })
		if s.CacheBackend == "hybrid" {
			return services.NewHybridCacheService(memory(), redisCache, a.Logger)
		}
		return redisCache
	case "mongo":
		db, err := a.connectMongo(ctx)
		if err != nil {
			a.Logger.Warn("mongo unavailable, using in-memory cache", zap.Error(err))
			return memory()
		}
		mongoCache, err := services.NewMongoCacheService(db, s.CacheTTL, a.Logger)
		if err != nil {
			a.Logger.Warn("mongo cache unavailable, using in-memory cache", zap.Error(err))
			return memory()
		}
		return services.NewHybridCacheService(memory(), mongoCache, a.Logger)
	default:
		a.Logger.Warn("unknown cache backend, using in-memory cache", zap.String("backend", s.CacheBackend))
		return memory()
	}
}

// connectMongo connects once and shares the database between the reference
// repository and the cache.
func (a *App) connectMongo(ctx context.Context) (*mongo.Database, error) {
	if a.mongoDB != nil {
		return a.mongoDB, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Settings.MongoURL))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	a.closers = append(a.closers, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			a.Logger.Error("error disconnecting mongo", zap.Error(err))
		}
	})
	a.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	a.mongoDB = client.Database(a.Settings.MongoDatabase)
	a.Logger.Info("connected to mongo", zap.String("database", a.Settings.MongoDatabase))
	return a.mongoDB, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
