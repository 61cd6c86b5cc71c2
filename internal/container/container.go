package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener-go/internal/audit"
	"github.com/serroba/url-shortener-go/internal/events"
	"github.com/serroba/url-shortener-go/internal/handlers"
	"github.com/serroba/url-shortener-go/internal/health"
	"github.com/serroba/url-shortener-go/internal/messaging"
	"github.com/serroba/url-shortener-go/internal/middleware"
	"github.com/serroba/url-shortener-go/internal/shortener"
	"github.com/serroba/url-shortener-go/internal/store"
	"go.uber.org/zap"
)

const (
	connectTimeout     = 5 * time.Second
	auditConsumerGroup = "audit"
)

// Redis owns the shared client so the injector can close it.
type Redis struct {
	*redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres owns the connection pool so the injector can close it.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()
	return nil
}

// Strategies maps request strategy names to shortening strategies.
type Strategies map[handlers.Strategy]shortener.Strategy

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		level, err := zap.ParseAtomicLevel(options.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}

		cfg := zap.NewProductionConfig()
		if options.LogFormat == "console" {
			cfg = zap.NewDevelopmentConfig()
		}

		cfg.Level = level

		return cfg.Build()
	})
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		options := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		})

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", options.RedisAddr, err)
		}

		return &Redis{Client: client}, nil
	})
}

func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		options := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}

		if err := store.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage selects the mapping store. Backing services are only
// connected when the chosen store needs them.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch options.Storage {
		case StoragePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			var repo shortener.Repository = store.NewPostgresStore(pg.Pool)

			if options.CacheTTL > 0 {
				rdb, err := do.Invoke[*Redis](i)
				if err != nil {
					return nil, err
				}

				repo = store.NewRedisCacheRepository(repo, rdb.Client, time.Duration(options.CacheTTL)*time.Second, logger)
			}

			return repo, nil
		case StorageRedis:
			rdb, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			return store.NewRedisStore(rdb.Client), nil
		default:
			logger.Warn("using in-memory store, mappings are lost on restart")
			return store.NewMemoryStore(), nil
		}
	})
}

func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (Strategies, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[shortener.Repository](i)

		generator, err := shortener.NewCodeGenerator(shortener.Base62Alphabet, options.CodeLength)
		if err != nil {
			return nil, err
		}

		return Strategies{
			handlers.StrategyToken: shortener.NewTokenStrategy(repo, generator, options.MaxAttempts, logger),
			handlers.StrategyHash:  shortener.NewHashStrategy(repo, generator, options.MaxAttempts, logger),
		}, nil
	})
}

// PublisherGroupPackage provides the url.shortened publish function. With
// events disabled it is a no-op and Redis is never contacted.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     rdb.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("event publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.URLShortened], error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.NoopPublish[events.URLShortened](), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[events.URLShortened](
			group.Publisher(),
			events.TopicURLShortened,
			middleware.RequestIDFromContext,
		), nil
	})
}

func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: auditConsumerGroup,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("event subscriber: %w", err)
		}

		auditLogger := audit.NewLogger(logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicURLShortened, auditLogger.HandleURLShortened, logger))

		return group, nil
	})
}

func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		options := do.MustInvoke[*Options](i)

		router := chi.NewMux()
		router.Use(middleware.CORS(options.CORSOrigins))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		strategies, err := do.Invoke[Strategies](i)
		if err != nil {
			return nil, err
		}

		publish, err := do.Invoke[messaging.Publish[events.URLShortened]](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMetaMiddleware(api), middleware.AccessLog(logger))

		urlHandler := handlers.NewURLHandler(
			repo,
			options.PublicBaseURL(),
			strategies,
			handlers.Strategy(options.DefaultStrategy),
			publish,
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, options), logger))

		return api, nil
	})
}

// healthCheckers returns checkers for the backing services in use.
func healthCheckers(i *do.Injector, options *Options) map[string]health.Checker {
	checkers := make(map[string]health.Checker)

	if options.Storage == StoragePostgres {
		if pg, err := do.Invoke[*Postgres](i); err == nil {
			checkers["postgres"] = health.NewPostgresChecker(pg.Pool)
		}
	}

	usesRedis := options.Storage == StorageRedis ||
		(options.Storage == StoragePostgres && options.CacheTTL > 0) ||
		options.Events

	if usesRedis {
		if rdb, err := do.Invoke[*Redis](i); err == nil {
			checkers["redis"] = health.NewRedisChecker(rdb.Client)
		}
	}

	return checkers
}
