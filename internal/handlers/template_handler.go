package handlers

import (
	"net/http"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	templateService services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// CreateTemplate handles POST /templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	var input models.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.templateService.Create(c.Request.Context(), cc, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetAllTemplates handles GET /templates
func (h *TemplateHandler) GetAllTemplates(c *gin.Context) {
	page, limit := pagination(c)
	items, total, err := h.templateService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged{Items: items, Total: total, Page: page, Limit: limit})
}

// GetTemplateCount handles GET /templates/count
func (h *TemplateHandler) GetTemplateCount(c *gin.Context) {
	count, err := h.templateService.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetTemplateByID handles GET /templates/:id
func (h *TemplateHandler) GetTemplateByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTemplate handles PUT /templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.templateService.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTemplate handles DELETE /templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
