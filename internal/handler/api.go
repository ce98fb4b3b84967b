package handler

import (
	"errors"
	"net/http"

	"github.com/bencullenn/chronicle-voice/internal/models"
	"github.com/bencullenn/chronicle-voice/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	syncer *service.Syncer
	dialer *service.Dialer
	logger *zap.Logger
}

// checkCallsRequest carries the ID batch for reconciliation and transcript
// fetching.
type checkCallsRequest struct {
	CallIDs []string `json:"callIds" binding:"required"`
}

// NewHandler creates a new API handler
func NewHandler(syncer *service.Syncer, dialer *service.Dialer, logger *zap.Logger) *Handler {
	return &Handler{
		syncer: syncer,
		dialer: dialer,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Sync pipeline
		api.POST("/sync", h.RunSync)
		api.POST("/calls/check", h.CheckCalls)
		api.POST("/transcripts", h.FetchTranscripts)

		// Data retrieval
		api.GET("/entries", h.GetEntries)

		// Outbound calls
		api.POST("/call", h.StartCall)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// RunSync runs the full sync pipeline and returns the merged entry list.
func (h *Handler) RunSync(c *gin.Context) {
	entries, err := h.syncer.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Sync run failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch calls"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

// CheckCalls reports which of the given call IDs already have entries.
func (h *Handler) CheckCalls(c *gin.Context) {
	var req checkCallsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.syncer.CheckCalls(c.Request.Context(), req.CallIDs)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Msg})
			return
		}
		h.logger.Error("Failed to check calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to check calls"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"existingCallIds": result.ExistingCallIDs,
		"missingCallIds":  result.MissingCallIDs,
	})
}

// FetchTranscripts fetches and stores transcripts for the given call IDs,
// returning the per-ID outcomes.
func (h *Handler) FetchTranscripts(c *gin.Context) {
	var req checkCallsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	results, err := h.syncer.FetchTranscripts(c.Request.Context(), req.CallIDs)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Msg})
			return
		}
		h.logger.Error("Failed to fetch transcripts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch transcripts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// GetEntries returns all persisted entries.
func (h *Handler) GetEntries(c *gin.Context) {
	entries, err := h.syncer.ListEntries(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

// StartCall initiates an outbound journal call.
func (h *Handler) StartCall(c *gin.Context) {
	var req models.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	status, err := h.dialer.StartCall(c.Request.Context(), req.PhoneNumber, req.Mode)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Msg})
			return
		}
		h.logger.Error("Failed to start call", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to process call request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"callId":      status.CallID,
		"status":      status.Status,
		"mode":        status.Mode,
		"assistantId": status.AssistantID,
		"timestamp":   status.Timestamp,
	})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
