package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/form"
	"github.com/beautysoda/quoteapi/internal/service"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

// QuoteSubmitter runs a quote through the form checks and the submission pipeline
type QuoteSubmitter interface {
	SubmitQuote(ctx context.Context, req service.QuoteSubmitRequest) (*service.QuoteSubmitResponse, error)
}

// Catalog serves the price list and the price preview
type Catalog interface {
	Catalog() service.CatalogResponse
	PreviewPrice(req service.SelectionRequest) service.PriceResponse
}

// HandleSubmitQuote handles POST /v1/quotes
func HandleSubmitQuote(quotes QuoteSubmitter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.QuoteSubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		resp, err := quotes.SubmitQuote(c.Request.Context(), req)
		if err != nil {
			switch e := err.(type) {
			case *form.StepError:
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":   "validation failed",
					"step":    e.Step,
					"fields":  e.Fields,
					"details": e.Messages(),
				})
			case *errors.ErrValidation:
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":   "validation failed",
					"details": e.Errors,
					"result":  resp,
				})
			default:
				logger.Error("Failed to submit quote", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit quote"})
			}
			return
		}

		if !resp.Success {
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandlePreviewPrice handles POST /v1/quotes/price
func HandlePreviewPrice(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, catalog.PreviewPrice(req))
	}
}

// HandleGetCatalog handles GET /v1/catalog
func HandleGetCatalog(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.Catalog())
	}
}
