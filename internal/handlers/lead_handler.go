package handlers

import (
	"net/http"
	"strconv"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/lead"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadHandler handles lead CRUD requests
type LeadHandler struct {
	db          *gorm.DB
	leadService *lead.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(db *gorm.DB, leadService *lead.LeadService) *LeadHandler {
	return &LeadHandler{db: db, leadService: leadService}
}

// List returns leads matching the query. Operators only see their own
// assignments; supervisors and admins see everything.
func (h *LeadHandler) List(c *gin.Context) {
	filter := lead.ListFilter{
		Status:   models.LeadStatus(c.Query("status")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	if projectID := c.Query("project_id"); projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
			return
		}
		filter.ProjectID = &id
	}

	role := models.Role(c.GetString("role"))
	if role == models.RoleOperator {
		userID, err := uuid.Parse(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		filter.AssignedTo = &userID
	}

	leads, total, err := h.leadService.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": total,
		"page":  filter.Page,
	})
}

// Get returns one lead
func (h *LeadHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead ID"})
		return
	}

	result, err := h.leadService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	role := models.Role(c.GetString("role"))
	if role == models.RoleOperator {
		userID, _ := uuid.Parse(c.GetString("user_id"))
		if result.AssignedTo == nil || *result.AssignedTo != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

// CreateLeadRequest represents the request body for lead creation
type CreateLeadRequest struct {
	Name      string    `json:"name" binding:"required"`
	Phone     string    `json:"phone" binding:"required"`
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
	Comment   string    `json:"comment"`
}

// Create creates a lead in the pool
func (h *LeadHandler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newLead := models.Lead{
		Name:      req.Name,
		Phone:     req.Phone,
		ProjectID: req.ProjectID,
		Comment:   req.Comment,
	}

	if err := h.leadService.Create(&newLead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lead"})
		return
	}

	c.JSON(http.StatusCreated, newLead)
}

// UpdateLeadRequest represents the request body for lead updates
type UpdateLeadRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Comment *string `json:"comment"`
}

// Update applies field changes to a lead
func (h *LeadHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead ID"})
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	result, err := h.leadService.Update(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete removes a lead (admin only, wired in routes)
func (h *LeadHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead ID"})
		return
	}

	if err := h.leadService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lead deleted"})
}

// Import creates leads from an uploaded CSV file
func (h *LeadHandler) Import(c *gin.Context) {
	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	created, err := h.leadService.ImportCSV(file, projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// intQuery parses an integer query parameter with a default
func intQuery(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return value
}
