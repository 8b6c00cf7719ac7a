package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	emailadapter "github.com/vaibhavvatsbhartiya/storefront/internal/adapter/email"
	mongoadapter "github.com/vaibhavvatsbhartiya/storefront/internal/adapter/mongo"
	natsadapter "github.com/vaibhavvatsbhartiya/storefront/internal/adapter/nats"
	redisadapter "github.com/vaibhavvatsbhartiya/storefront/internal/adapter/redis"
	"github.com/vaibhavvatsbhartiya/storefront/internal/adapter/storage/s3"
	"github.com/vaibhavvatsbhartiya/storefront/internal/app/config"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/tracer"
	grpcserver "github.com/vaibhavvatsbhartiya/storefront/internal/port/grpc"
	"github.com/vaibhavvatsbhartiya/storefront/internal/port/rest"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"github.com/vaibhavvatsbhartiya/storefront/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	cfg            *config.Config
	log            logger.Logger
	httpServer     *http.Server
	grpcServer     *grpcserver.Server
	sessions       *cart.Sessions
	tracerProvider *sdktrace.TracerProvider
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
}

func New(cfg *config.Config) (_ *App, err error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, GRPC Port: %s", cfg.Env, cfg.HTTPServer.Port, cfg.GRPCServer.Port)

	tp := tracer.Init(cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, appLogger)
	metricsManager := metrics.NewManager(cfg.Telemetry.MetricsNamespace)

	application := &App{
		cfg:            cfg,
		log:            appLogger,
		tracerProvider: tp,
	}
	defer func() {
		if err != nil {
			application.close(ctx)
		}
	}()

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	application.mongoClient = mongoClient
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	appLogger.Info("MongoDB client initialized successfully")

	// Redis and NATS are optional: the catalog reads straight from MongoDB
	// without a cache, and events are dropped without a broker.
	var productCache repository.ProductDetailCache
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Warnf("Redis unavailable, product cache disabled: %v", err)
	} else {
		application.redisClient = redisClient
		productCache = redisadapter.NewProductCacheRepository(redisClient)
		appLogger.Info("Redis client initialized successfully")
	}

	publisher := natsadapter.NewNoopPublisher()
	natsConn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
	if err != nil {
		appLogger.Warnf("NATS unavailable, domain events disabled: %v", err)
	} else {
		application.natsConn = natsConn
		if publisher, err = natsadapter.NewNATSPublisher(natsConn); err != nil {
			return nil, err
		}
		appLogger.Info("NATS publisher initialized successfully")
	}

	emailSender := emailadapter.NewNoopSender(appLogger)
	if cfg.SMTP.Enabled() {
		if emailSender, err = emailadapter.NewSMTPSender(cfg.SMTP, appLogger); err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
	}

	var imageStorage service.ImageStorage
	if cfg.Storage.Enabled() {
		storage, err := s3.NewS3Storage(ctx, cfg.Storage, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image storage: %w", err)
		}
		imageStorage = storage
	}

	productRepo := mongoadapter.NewProductRepository(db)
	orderRepo := mongoadapter.NewOrderRepository(db)
	userRepo := mongoadapter.NewUserRepository(db)

	catalogSvc := service.NewCatalogService(productRepo, productCache, imageStorage, publisher, metricsManager, appLogger,
		service.CatalogServiceConfig{ProductCacheTTL: cfg.ProductCache.TTL})
	cartSvc := service.NewCartService(catalogSvc, appLogger, service.CartServiceConfig{QuoteWorkers: cfg.Cart.QuoteWorkers})
	orderSvc := service.NewOrderService(orderRepo, userRepo, catalogSvc, publisher, emailSender, metricsManager, appLogger)
	userSvc := service.NewUserService(userRepo, appLogger)

	application.sessions = newCartSessions(cfg.Cart, metricsManager, appLogger)

	application.httpServer = &http.Server{
		Addr: ":" + cfg.HTTPServer.Port,
		Handler: rest.NewRouter(rest.RouterConfig{
			Catalog:        catalogSvc,
			Carts:          cartSvc,
			Orders:         orderSvc,
			Users:          userSvc,
			Sessions:       application.sessions,
			Metrics:        metricsManager,
			Log:            appLogger,
			MaxUploadBytes: cfg.HTTPServer.MaxUploadBytes,
			SecureCookies:  cfg.HTTPServer.SecureCookies,
		}),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	application.grpcServer = grpcserver.NewServer(
		appLogger,
		cfg.GRPCServer.Port,
		cfg.GRPCServer.TimeoutGraceful,
		cfg.GRPCServer.MaxConnectionIdle,
	)

	return application, nil
}

func newCartSessions(cfg config.CartConfig, m *metrics.Manager, log logger.Logger) *cart.Sessions {
	return cart.NewSessions(cart.SessionsConfig{
		IdleTTL: cfg.SessionIdleTTL,
		OnCreate: func(sessionID string, store *cart.Store) {
			m.CartSessionOpened()
			store.Subscribe(func(items []cart.LineItem) {
				m.IncCartMutations()
				log.Debugf("Cart %s changed, %d line items", sessionID, len(items))
			})
		},
		OnDrop: func(sessionID string) {
			m.CartSessionClosed()
			log.Debugf("Cart session %s expired", sessionID)
		},
	})
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.sessions.Run(ctx, a.cfg.Cart.SweepInterval)

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	go func() {
		a.log.Infof("HTTP server is starting on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)
	cancel()

	a.grpcServer.SetServing(false)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancelShutdown()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	if err := a.grpcServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during gRPC server graceful shutdown: %v", err)
	}

	a.close(shutdownCtx)
	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) close(ctx context.Context) {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}
}
