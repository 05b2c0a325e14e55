package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ywang1110/SentimentSense/internal/adapter/http/handler"
	"github.com/ywang1110/SentimentSense/internal/adapter/http/middleware"
	"github.com/ywang1110/SentimentSense/internal/domain/service"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/config"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/metrics"
	"github.com/ywang1110/SentimentSense/internal/usecase"
)

// Deps carries everything the router wires into handlers
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Collector  *metrics.Collector
	Classifier service.Classifier
	AnalysisUC usecase.AnalysisUsecase
	Redis      *redis.Client
}

// Setup creates and configures the Gin router
func Setup(deps Deps) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())
	if deps.Config.Metrics.Enabled && deps.Collector != nil {
		router.Use(middleware.Metrics(deps.Collector))
	}

	// Service info
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "SentimentSense",
			"version": handler.Version,
			"model":   deps.Config.Model.Name,
			"docs":    "https://github.com/ywang1110/SentimentSense",
		})
	})

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Classifier, deps.Redis, &deps.Config.Health, deps.Config.Model.Name)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/simple", healthHandler.HealthSimple)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled && deps.Collector != nil {
		router.GET("/metrics", gin.WrapH(deps.Collector.Handler()))
	}

	// Analysis endpoints
	analyzeHandler := handler.NewAnalyzeHandler(deps.AnalysisUC)
	router.POST("/analyze", analyzeHandler.Analyze)
	router.POST("/analyze/batch", analyzeHandler.AnalyzeBatch)

	return router
}
