package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

const operatorContextKey = "operator"

// AuthMiddleware resolves the Bearer API key to an active operator
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		apiKey, ok := strings.CutPrefix(header, "Bearer ")
		apiKey = strings.TrimSpace(apiKey)
		if !ok || apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		operator, err := repos.Operator.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); !ok {
				logger.Error("Failed to resolve operator", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			logger.Warn("Rejected API key", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(operatorContextKey, operator)
		c.Next()
	}
}

// GetOperatorFromContext returns the operator set by AuthMiddleware
func GetOperatorFromContext(c *gin.Context) (*domain.Operator, bool) {
	v, exists := c.Get(operatorContextKey)
	if !exists {
		return nil, false
	}
	operator, ok := v.(*domain.Operator)
	return operator, ok
}
