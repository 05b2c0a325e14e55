package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ywang1110/SentimentSense/internal/adapter/client"
	"github.com/ywang1110/SentimentSense/internal/adapter/http/router"
	"github.com/ywang1110/SentimentSense/internal/domain/service"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/cache"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/config"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/logger"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/metrics"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/pool"
	"github.com/ywang1110/SentimentSense/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize metrics
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	// Initialize Redis (optional, continue without it)
	var redisClient *redis.Client
	if cfg.Model.EnableCache {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis")
		}
	}

	// Initialize the classification backend
	mlClient := client.NewMLClient(cfg.Backend.URL, cfg.Backend.InferenceTimeout)
	classifier := client.NewSentimentClassifier(
		mlClient,
		log,
		cfg.Backend.WarmupText,
		cfg.Backend.LoadTimeout,
		client.WithStateHook(func(state service.BackendState) {
			if collector != nil {
				collector.SetModelLoaded(state == service.StateReady)
			}
		}),
	)

	// Load the model in the background so the server answers health and
	// validation traffic immediately
	go func() {
		if err := classifier.Load(context.Background()); err != nil {
			log.Error("Model load failed", zap.Error(err))
			return
		}
		log.Info("Model loaded", zap.String("model_name", cfg.Model.Name))
	}()

	// Assemble the analysis pipeline
	workers := pool.New(cfg.Backend.InferenceConcurrency)
	results := cache.NewResultCache(redisClient, cfg.Model.Name, cfg.Model.CacheTTL)
	analysisUC := usecase.NewAnalysisUsecase(classifier, &cfg.Model, workers, results, collector, log)

	// Setup router
	r := router.Setup(router.Deps{
		Config:     cfg,
		Logger:     log,
		Collector:  collector,
		Classifier: classifier,
		AnalysisUC: analysisUC,
		Redis:      redisClient,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Dedicated metrics listener when configured
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 && cfg.Metrics.Port != cfg.Server.Port {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		metricsSrv = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("Starting metrics server", zap.String("address", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}

	// Close Redis connection
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Server exited")
	return nil
}
