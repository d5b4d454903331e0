package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/notify"
	"github.com/callwork/backend/internal/services/quality"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QualityHandler handles the QC review queue
type QualityHandler struct {
	qualityService *quality.QualityService
	hub            *notify.Hub
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(qualityService *quality.QualityService, hub *notify.Hub) *QualityHandler {
	return &QualityHandler{qualityService: qualityService, hub: hub}
}

// ListReviews returns reviews with lock annotations
func (h *QualityHandler) ListReviews(c *gin.Context) {
	status := models.ReviewStatus(c.DefaultQuery("status", string(models.ReviewStatusPending)))

	reviews, err := h.qualityService.ListReviews(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// reviewerFromContext extracts the caller's id and display name. The name
// comes from the same FullName the queue listing shows, so a reviewer reads
// identically in events and in lock annotations.
func reviewerFromContext(c *gin.Context) (uuid.UUID, string, bool) {
	reviewerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, "", false
	}
	return reviewerID, c.GetString("name"), true
}

// Lock acquires the review lock for the caller
func (h *QualityHandler) Lock(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, reviewerName, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	view, err := h.qualityService.Lock(c.Request.Context(), reviewID, reviewerID, reviewerName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Heartbeat renews the caller's lock TTL
func (h *QualityHandler) Heartbeat(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, _, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	if err := h.qualityService.Heartbeat(reviewID, reviewerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lock renewed"})
}

// Unlock releases the caller's lock
func (h *QualityHandler) Unlock(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, reviewerName, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	if err := h.qualityService.Unlock(c.Request.Context(), reviewID, reviewerID, reviewerName); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lock released"})
}

// ResolveRequest represents the request body for approve/reject/comment
type ResolveRequest struct {
	Comment string `json:"comment"`
}

// Approve resolves a review as approved and settles the payout
func (h *QualityHandler) Approve(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, reviewerName, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.qualityService.Approve(c.Request.Context(), reviewID, reviewerID, reviewerName, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Reject resolves a review as rejected without crediting anything
func (h *QualityHandler) Reject(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, reviewerName, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.qualityService.Reject(c.Request.Context(), reviewID, reviewerID, reviewerName, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Comment records a QC note on a pending review
func (h *QualityHandler) Comment(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	reviewerID, _, ok := reviewerFromContext(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.qualityService.AddComment(reviewID, reviewerID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Stream pushes queue events to the client over SSE. Push is a latency
// optimization; clients keep their poll as the correctness fallback.
func (h *QualityHandler) Stream(c *gin.Context) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-keepalive.C:
			c.SSEvent("keepalive", time.Now().Unix())
			return true
		}
	})
}
