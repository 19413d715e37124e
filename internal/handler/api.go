package handler

import (
	"context"
	"net/http"

	"nlp-pipeline/internal/models"
	"nlp-pipeline/internal/nlp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CollectionCounter reports document counts from the posts collection.
type CollectionCounter interface {
	Count(ctx context.Context) (int64, error)
	EnrichedCount(ctx context.Context) (int64, error)
}

// IndexCounter reports the document count of the search index.
type IndexCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Handler handles HTTP requests
type Handler struct {
	analyzer *nlp.Analyzer
	posts    CollectionCounter
	index    IndexCounter
	logger   *zap.Logger
}

// NewHandler creates a new API handler. posts and index may be nil when the
// corresponding backend is unreachable; status then reports it unavailable.
func NewHandler(posts CollectionCounter, index IndexCounter, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: nlp.NewAnalyzer(),
		posts:    posts,
		index:    index,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)
		api.GET("/status", h.Status)
	}

	r.GET("/health", h.HealthCheck)
}

// Analyze returns language and sentiment for a single text on demand.
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	label, scores, tokens := h.analyzer.Analyze(req.Text)
	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Text:            req.Text,
		Language:        nlp.DetectLanguage(req.Text),
		Sentiment:       label,
		SentimentScores: scores,
		SentimentTokens: tokens,
	})
}

// Status returns aggregate pipeline counts from the collection and the index.
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	status := gin.H{"status": "ok"}

	if h.posts != nil {
		if total, err := h.posts.Count(ctx); err != nil {
			h.logger.Warn("Failed to count posts", zap.Error(err))
			status["documents"] = "unavailable"
		} else {
			status["documents"] = total
		}
		if enriched, err := h.posts.EnrichedCount(ctx); err != nil {
			h.logger.Warn("Failed to count enriched posts", zap.Error(err))
			status["enriched"] = "unavailable"
		} else {
			status["enriched"] = enriched
		}
	} else {
		status["documents"] = "unavailable"
		status["enriched"] = "unavailable"
	}

	if h.index != nil {
		if indexed, err := h.index.Count(ctx); err != nil {
			h.logger.Warn("Failed to count index", zap.Error(err))
			status["indexed"] = "unavailable"
		} else {
			status["indexed"] = indexed
		}
	} else {
		status["indexed"] = "unavailable"
	}

	c.JSON(http.StatusOK, status)
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
