package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vinoddotcom/ecom-learn-backend/internal/auth"
	"github.com/vinoddotcom/ecom-learn-backend/internal/config"
	"github.com/vinoddotcom/ecom-learn-backend/internal/event"
	handler "github.com/vinoddotcom/ecom-learn-backend/internal/handler/http"
	mongorepo "github.com/vinoddotcom/ecom-learn-backend/internal/repository/mongo"
	redisrepo "github.com/vinoddotcom/ecom-learn-backend/internal/repository/redis"
	"github.com/vinoddotcom/ecom-learn-backend/internal/service"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/database"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/health"
	pkgkafka "github.com/vinoddotcom/ecom-learn-backend/pkg/kafka"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/middleware"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/tracing"
)

// App wires together all dependencies and runs the backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongoClient    *mongo.Client
	redisClient    *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "shop-backend",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Connect to MongoDB.
	mongoClient, err := database.NewMongoClient(ctx, database.MongoConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
		MinPoolSize:    5,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		slog.String("database", cfg.MongoDatabase),
	)

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	// Connect to Redis.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	productRepo := mongorepo.NewProductRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	orderRepo := mongorepo.NewOrderRepository(db)
	tokenRepo := redisrepo.NewRefreshTokenRepository(redisClient)
	eventProducer := event.NewProducer(producer, logger)

	userService := service.NewUserService(userRepo, tokenRepo, jwtManager, eventProducer, logger)
	productService := service.NewProductService(productRepo, eventProducer, logger)
	reviewService := service.NewReviewService(productRepo, eventProducer, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("mongodb", func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		UserService:    userService,
		ProductService: productService,
		ReviewService:  reviewService,
		OrderService:   orderService,
		JWTManager:     jwtManager,
		HealthHandler:  healthHandler,
		Logger:         logger,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		ProductsPerPage: cfg.ProductsPerPage,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		mongoClient:    mongoClient,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain HTTP, flush
// spans, then close Kafka, Redis, and MongoDB.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer mongoCancel()
	if err := a.mongoClient.Disconnect(mongoCtx); err != nil {
		a.logger.Error("mongodb disconnect error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
