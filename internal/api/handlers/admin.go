package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/api/middleware"
	"github.com/beautysoda/quoteapi/internal/service"
)

// Diagnostics runs the endpoint checks
type Diagnostics interface {
	Run(ctx context.Context, testSubmit bool) service.DiagnosticsReport
}

// HandleDiagnostics handles GET /v1/admin/diagnostics. ?format=text returns the plain report.
func HandleDiagnostics(diag Diagnostics, logger *zap.Logger) gin.HandlerFunc {
	return runDiagnostics(diag, false, logger)
}

// HandleTestSubmit handles POST /v1/admin/diagnostics/test-submit
func HandleTestSubmit(diag Diagnostics, logger *zap.Logger) gin.HandlerFunc {
	return runDiagnostics(diag, true, logger)
}

func runDiagnostics(diag Diagnostics, testSubmit bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, ok := middleware.GetOperatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		logger.Info("Running diagnostics",
			zap.String("operator", operator.Name),
			zap.Bool("test_submit", testSubmit),
		)
		report := diag.Run(c.Request.Context(), testSubmit)

		if c.Query("format") == "text" {
			c.String(http.StatusOK, report.Text())
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
