package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

// SubmissionResponse represents one audited pipeline run
type SubmissionResponse struct {
	ID           string                 `json:"id"`
	QuoteNumber  string                 `json:"quote_number"`
	CustomerType domain.CustomerType    `json:"customer_type"`
	Plan         domain.PlanType        `json:"plan"`
	TotalPrice   int64                  `json:"total_price"`
	Transport    *domain.Transport      `json:"transport,omitempty"`
	Attempts     int                    `json:"attempts"`
	State        domain.SubmissionState `json:"state"`
	Message      string                 `json:"message"`
	ErrorDetail  *string                `json:"error_detail,omitempty"`
	Events       []EventResponse        `json:"events,omitempty"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

type EventResponse struct {
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

func toSubmissionResponse(s *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           s.ID.String(),
		QuoteNumber:  s.QuoteNumber,
		CustomerType: s.CustomerType,
		Plan:         s.Plan,
		TotalPrice:   s.TotalPrice,
		Transport:    s.Transport,
		Attempts:     s.Attempts,
		State:        s.State,
		Message:      s.Message,
		ErrorDetail:  s.ErrorDetail,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}

// HandleGetSubmission handles GET /v1/admin/submissions/:id
func HandleGetSubmission(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
			return
		}

		submission, err := repos.Submission.GetByID(c.Request.Context(), id)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
				return
			}
			logger.Error("Failed to get submission", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		events, err := repos.SubmissionEvent.GetBySubmissionID(c.Request.Context(), id)
		if err != nil {
			logger.Error("Failed to get submission events", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		response := toSubmissionResponse(submission)
		response.Events = lo.Map(events, func(e *domain.SubmissionEvent, _ int) EventResponse {
			return EventResponse{
				EventType: e.EventType,
				EventData: e.EventData,
				CreatedAt: e.CreatedAt.Format(time.RFC3339),
			}
		})

		c.JSON(http.StatusOK, response)
	}
}

// HandleListSubmissions handles GET /v1/admin/submissions
func HandleListSubmissions(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.SubmissionFilter{
			QuoteNumber: c.Query("quote_number"),
		}

		if stateStr := c.Query("state"); stateStr != "" {
			state := domain.SubmissionState(stateStr)
			if !state.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
				return
			}
			filter.State = &state
		}

		var err error
		if filter.Limit, err = intQuery(c, "limit", repository.DefaultListLimit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if filter.Offset, err = intQuery(c, "offset", 0); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}

		submissions, err := repos.Submission.List(c.Request.Context(), filter)
		if err != nil {
			logger.Error("Failed to list submissions", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"submissions": lo.Map(submissions, func(s *domain.Submission, _ int) SubmissionResponse {
				return toSubmissionResponse(s)
			}),
			"limit":  repository.NormalizeLimit(filter.Limit),
			"offset": filter.Offset,
		})
	}
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
