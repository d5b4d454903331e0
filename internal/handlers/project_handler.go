package handlers

import (
	"errors"
	"net/http"

	"github.com/callwork/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ProjectHandler handles project and call script reference data
type ProjectHandler struct {
	db *gorm.DB
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

// ListProjects returns all active projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var projects []models.Project
	query := h.db.Order("name")
	if c.Query("all") != "true" {
		query = query.Where("is_active = true")
	}
	if err := query.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// ProjectRequest represents the request body for project create/update
type ProjectRequest struct {
	Name         string   `json:"name" binding:"required"`
	SuccessPrice *float64 `json:"success_price"`
	IsActive     *bool    `json:"is_active"`
}

// CreateProject creates a project (admin only, wired in routes)
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{
		Name: req.Name,
		Slug: slug.Make(req.Name),
	}
	if req.SuccessPrice != nil {
		project.SuccessPrice = *req.SuccessPrice
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	} else {
		project.IsActive = true
	}

	if err := h.db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject updates a project's name, payout price or active flag
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	var project models.Project
	if err := h.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find project"})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name": req.Name,
		"slug": slug.Make(req.Name),
	}
	if req.SuccessPrice != nil {
		updates["success_price"] = *req.SuccessPrice
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&project).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject deactivates a project; leads and ledger rows keep their
// references, so projects are never hard-deleted
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	result := h.db.Model(&models.Project{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deactivated"})
}

// ListScripts returns the call scripts for a project, in reading order
func (h *ProjectHandler) ListScripts(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	var scripts []models.Script
	if err := h.db.Where("project_id = ?", projectID).Order("position").Find(&scripts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scripts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scripts": scripts})
}

// ScriptRequest represents the request body for script create/update
type ScriptRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

// CreateScript adds a call script to a project (admin only, wired in routes)
func (h *ProjectHandler) CreateScript(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	var req ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script := models.Script{
		ProjectID: projectID,
		Title:     req.Title,
		Body:      req.Body,
		Position:  req.Position,
	}

	if err := h.db.Create(&script).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create script"})
		return
	}

	c.JSON(http.StatusCreated, script)
}

// UpdateScript edits a call script (admin only, wired in routes)
func (h *ProjectHandler) UpdateScript(c *gin.Context) {
	scriptID, err := uuid.Parse(c.Param("scriptId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid script ID"})
		return
	}

	var script models.Script
	if err := h.db.First(&script, "id = ?", scriptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find script"})
		return
	}

	var req ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Model(&script).Updates(map[string]interface{}{
		"title":    req.Title,
		"body":     req.Body,
		"position": req.Position,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update script"})
		return
	}

	c.JSON(http.StatusOK, script)
}

// DeleteScript removes a call script (admin only, wired in routes)
func (h *ProjectHandler) DeleteScript(c *gin.Context) {
	scriptID, err := uuid.Parse(c.Param("scriptId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid script ID"})
		return
	}

	result := h.db.Delete(&models.Script{}, "id = ?", scriptID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete script"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "script deleted"})
}
