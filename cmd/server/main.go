package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamestore/config"
	"gamestore/internal/api"
	"gamestore/internal/broker"
	"gamestore/internal/redisclient"
	"gamestore/internal/service"
	"gamestore/internal/store"
	"gamestore/internal/util"
	"gamestore/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting gamestore service", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(util.TracerOptions{
		ServiceName:    cfg.Observ.ServiceName,
		Environment:    cfg.Server.Env,
		JaegerEndpoint: cfg.Observ.JaegerEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL, store.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	if cfg.Database.MigrateOnStart {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		logger.Info("Schema applied")
	}

	// The API keeps serving without Redis; counts and idempotency are skipped.
	var (
		countCache  service.GamesCountCache
		idempotency service.IdempotencyStore
	)
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		countCache = redisClient
		idempotency = redisClient
		logger.Info("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicCatalog))

	eventPublisher := broker.NewEventPublisher(producer)

	ttl := service.CacheConfig{
		GamesCountTTL:  cfg.Cache.GamesCountTTL(),
		IdempotencyTTL: cfg.Cache.IdempotencyTTL(),
	}
	gameService := service.NewGameService(db, eventPublisher, countCache, idempotency, ttl)
	genreService := service.NewGenreService(db, eventPublisher)
	platformService := service.NewPlatformService(db, eventPublisher)
	publisherService := service.NewPublisherService(db, eventPublisher)
	orderService := service.NewOrderService(db, eventPublisher, idempotency, ttl)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var cacheWorker *worker.CacheWorker
	if redisClient != nil {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		cacheWorker = worker.NewCacheWorker(consumer, redisClient)
		go func() {
			if err := cacheWorker.Start(workerCtx); err != nil {
				logger.Error("Cache worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Services{
		Games:      gameService,
		Genres:     genreService,
		Platforms:  platformService,
		Publishers: publisherService,
		Orders:     orderService,
		DB:         db,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if cacheWorker != nil {
		if err := cacheWorker.Stop(); err != nil {
			logger.Warn("Error stopping cache worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
