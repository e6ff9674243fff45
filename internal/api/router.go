package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/api/handlers"
	"github.com/beautysoda/quoteapi/internal/api/middleware"
	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/repository"
)

// Services are the application services behind the routes
type Services struct {
	Quotes      handlers.QuoteSubmitter
	Catalog     handlers.Catalog
	Diagnostics handlers.Diagnostics
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, services Services, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public form routes
		v1.GET("/catalog", handlers.HandleGetCatalog(services.Catalog))
		v1.POST("/quotes/price", handlers.HandlePreviewPrice(services.Catalog))
		v1.POST("/quotes", handlers.HandleSubmitQuote(services.Quotes, logger))

		// Operator routes (require authentication)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			adminRoutes.GET("/diagnostics", handlers.HandleDiagnostics(services.Diagnostics, logger))
			adminRoutes.POST("/diagnostics/test-submit", handlers.HandleTestSubmit(services.Diagnostics, logger))
			adminRoutes.GET("/submissions", handlers.HandleListSubmissions(repos, logger))
			adminRoutes.GET("/submissions/:id", handlers.HandleGetSubmission(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
