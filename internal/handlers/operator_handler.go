package handlers

import (
	"errors"
	"net/http"

	"github.com/callwork/backend/internal/services/lead"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OperatorHandler handles the operator call workflow
type OperatorHandler struct {
	leadService *lead.LeadService
}

// NewOperatorHandler creates a new operator handler
func NewOperatorHandler(leadService *lead.LeadService) *OperatorHandler {
	return &OperatorHandler{leadService: leadService}
}

// Status returns the operator's lead currently in work
func (h *OperatorHandler) Status(c *gin.Context) {
	operatorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	current, err := h.leadService.CurrentLead(operatorID)
	if err != nil {
		if errors.Is(err, lead.ErrNoActiveLead) {
			c.JSON(http.StatusOK, gin.H{"lead": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": current})
}

// Next claims the oldest unassigned lead for the operator
func (h *OperatorHandler) Next(c *gin.Context) {
	operatorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	claimed, err := h.leadService.ClaimNext(operatorID)
	if err != nil {
		if errors.Is(err, lead.ErrNoLeadsAvailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no leads available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim lead"})
		return
	}

	c.JSON(http.StatusOK, claimed)
}

// CompleteRequest represents the request body for outcome submission
type CompleteRequest struct {
	LeadID  *uuid.UUID   `json:"lead_id"`
	Outcome lead.Outcome `json:"outcome" binding:"required"`
	Comment string       `json:"comment"`
}

// Complete records the operator's outcome for a lead
func (h *OperatorHandler) Complete(c *gin.Context) {
	operatorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.leadService.Complete(operatorID, req.LeadID, req.Outcome, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
