package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application/actions"
	mongoRepo "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/infrastructure/mongodb"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/infrastructure/pooling"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/cloudevents"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/i18n"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/idempotency"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/kafka"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/middleware"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/outbox"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/resilience"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/tracing"
)

func main() {
	config := loadConfig()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = config.LogLevel
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting tms-core API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.WithError(err).Error("Service stopped with error")
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, config *Config, logger *logging.Logger) error {
	tracerProvider, err := tracing.Initialize(ctx, config.Tracing)
	if err != nil {
		// Tracing is optional; keep serving without it
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", config.Tracing.OTLPEndpoint)
	}

	m := metrics.New(metrics.DefaultConfig(serviceName))

	translator, err := i18n.New(config.DefaultLanguage)
	if err != nil {
		return err
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 5
	retry.RetryableErrors = func(err error) bool { return !errors.Is(err, context.Canceled) }
	mongoClient, err := resilience.RetryWithResult(ctx, retry, func() (*mongodb.Client, error) {
		return mongodb.NewClient(ctx, config.MongoDB)
	})
	if err != nil {
		return err
	}
	if err := mongoClient.SupportsTransactions(ctx); err != nil {
		_ = mongoClient.Close(ctx)
		return err
	}
	db := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer db.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	if err := mongoRepo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	keys := idempotency.NewMongoRepository(db.Database())
	if err := keys.EnsureIndexes(ctx); err != nil {
		return err
	}

	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Repositories
	orders := mongoRepo.NewOrderRepository(db)
	shippings := mongoRepo.NewShippingRepository(db)
	tariffRepo := mongoRepo.NewTariffRepository(db)
	stats := mongoRepo.NewCarrierRequestStatRepository(db)
	history := mongoRepo.NewHistoryRepository(db)
	dictionaries := mongoRepo.NewDictionaries(db)
	uow := mongoRepo.NewUnitOfWork(db, cloudevents.NewEventFactory(cloudevents.SourceTMS), logger)

	// Application services
	clock := func() time.Time { return time.Now().UTC() }
	scopes := application.NewScopeFactory(dictionaries, tariffRepo, clock)
	tariffs := application.NewTariffService(tariffRepo, uow, m, logger, clock)
	costs := application.NewDeliveryCostService(tariffs, logger)
	calc := application.NewShippingCalculationService(costs, logger)

	numbers := application.NewShippingNumberProvider()
	count, err := shippings.Count(ctx)
	if err != nil {
		return err
	}
	numbers.Init(count)

	shippingActions := application.NewShippingActionService(shippings, orders, calc, numbers, m, logger)
	poolingService := application.NewPoolingService(pooling.NewClient(config.Pooling, m, logger), logger)
	carrierStats := application.NewCarrierRequestStats(stats)
	sender := application.NewSendShippingService(poolingService, carrierStats, calc, logger)

	orderEdit := application.NewOrderEditService(scopes, uow, orders, shippings, calc, poolingService, logger)
	orderEdit.OnCreate(actions.CreateOrderHook())

	catalog := actions.NewCatalog(actions.Services{Shippings: shippingActions, Sender: sender, Stats: carrierStats})
	dispatcher := actions.NewDispatcher(catalog, scopes, uow, orders, shippings, m, logger)

	handlers := &Handlers{
		dispatcher: dispatcher,
		orderEdit:  orderEdit,
		tariffs:    tariffs,
		pooling:    poolingService,
		backlight:  application.NewBacklightService(scopes, uow),
		scopes:     scopes,
		orders:     orders,
		shippings:  shippings,
		history:    history,
		translator: translator,
		logger:     logger,

		idempotency: idempotency.Middleware(idempotency.DefaultConfig(keys, m, logger)),
	}

	router := gin.New()
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middlewareConfig.Metrics = m
	middlewareConfig.Translator = translator
	middlewareConfig.EnableTracing = config.Tracing.Enabled
	middleware.Setup(router, middlewareConfig)

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, db.HealthCheck))
	router.GET("/metrics", middleware.MetricsEndpoint(m))
	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	publisher := outbox.NewPublisher(uow.Outbox(), kafka.NewInstrumentedProducer(producer, m, logger), logger, m, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server started", "addr", config.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return publisher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
