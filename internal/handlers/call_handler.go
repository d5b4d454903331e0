package handlers

import (
	"net/http"

	"github.com/callwork/backend/internal/jobs"
	"github.com/callwork/backend/internal/queue"
	"github.com/callwork/backend/internal/services/telephony"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CallHandler handles telephony requests and vendor callbacks
type CallHandler struct {
	callService *telephony.CallService
	jobQueue    queue.QueueInterface
}

// NewCallHandler creates a new call handler
func NewCallHandler(callService *telephony.CallService, jobQueue queue.QueueInterface) *CallHandler {
	return &CallHandler{callService: callService, jobQueue: jobQueue}
}

// DialRequest represents the request body for initiating a call
type DialRequest struct {
	LeadID uuid.UUID `json:"lead_id" binding:"required"`
}

// Dial initiates a call to a lead through the vendor
func (h *CallHandler) Dial(c *gin.Context) {
	operatorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req DialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.callService.StartCall(c.Request.Context(), operatorID, req.LeadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Hangup terminates the operator's call
func (h *CallHandler) Hangup(c *gin.Context) {
	operatorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call session ID"})
		return
	}

	if err := h.callService.Hangup(c.Request.Context(), operatorID, sessionID); err != nil {
		switch err {
		case telephony.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case telephony.ErrNotSessionOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "call terminated"})
}

// VendorWebhookRequest represents a status callback from the vendor
type VendorWebhookRequest struct {
	CallID string `json:"call_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// TelephonyWebhook accepts a vendor status callback and processes it
// asynchronously; the vendor gets an immediate acknowledgement
func (h *CallHandler) TelephonyWebhook(c *gin.Context) {
	var req VendorWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.jobQueue.EnqueueJob(jobs.JobTypeProcessCallWebhook, jobs.CallWebhookPayload{
		VendorCallID: req.CallID,
		Status:       req.Status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue webhook"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}
