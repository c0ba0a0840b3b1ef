package handlers

import (
	"net/http"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ChannelSettingsHandler handles channel settings requests
type ChannelSettingsHandler struct {
	settingsService services.ChannelSettingsService
}

// NewChannelSettingsHandler creates a new ChannelSettingsHandler
func NewChannelSettingsHandler(settingsService services.ChannelSettingsService) *ChannelSettingsHandler {
	return &ChannelSettingsHandler{settingsService: settingsService}
}

// GetSettings handles GET /settings/channels
func (h *ChannelSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings/channels
func (h *ChannelSettingsHandler) UpdateSettings(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	var request struct {
		Slack *bool `json:"slackEnabled" binding:"required"`
		Email *bool `json:"emailEnabled" binding:"required"`
		SMS   *bool `json:"smsEnabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), cc, models.ChannelSettings{
		SlackEnabled: *request.Slack,
		EmailEnabled: *request.Email,
		SMSEnabled:   *request.SMS,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
