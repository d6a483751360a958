package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarkovlens/backend/internal/domain"
)

// ItemLookup is the use case the handlers depend on
type ItemLookup interface {
	Lookup(ctx context.Context, query string) (*domain.ItemSummary, error)
	LookupBatch(ctx context.Context, queries []string) ([]domain.LookupResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup ItemLookup
}

// NewHandler creates a new HTTP handler
func NewHandler(lookup ItemLookup) *Handler {
	return &Handler{lookup: lookup}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tarkovlens-backend",
		"version": "1.0.0",
	})
}

// SearchItem resolves the q query parameter to the closest item and returns its price summary
func (h *Handler) SearchItem(c *gin.Context) {
	if h.lookup == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "not_configured",
			"message": "item lookup service not configured",
		})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "query parameter q is required")
		return
	}

	summary, err := h.lookup.Lookup(c.Request.Context(), req.Query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// LookupBatch resolves a list of queries in one request
func (h *Handler) LookupBatch(c *gin.Context) {
	if h.lookup == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "not_configured",
			"message": "item lookup service not configured",
		})
		return
	}

	var req domain.BatchLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "body must be {\"queries\": [...]}")
		return
	}

	results, err := h.lookup.LookupBatch(c.Request.Context(), req.Queries)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrEmptyCatalog):
		respondError(c, http.StatusNotFound, "empty_catalog", "item catalog is empty")
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrMissingRequiredField):
		log.Printf("[HTTP] Malformed upstream data: %v", err)
		respondError(c, http.StatusBadGateway, "malformed_upstream_data", err.Error())
	case errors.Is(err, domain.ErrUpstreamFailure):
		log.Printf("[HTTP] Upstream failure: %v", err)
		respondError(c, http.StatusBadGateway, "upstream_failure", "tarkov.dev API temporarily unavailable")
	case errors.Is(err, domain.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, "rate_limited", err.Error())
	default:
		log.Printf("[HTTP] Unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}
