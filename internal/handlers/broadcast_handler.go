package handlers

import (
	"context"
	"net/http"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// BroadcastHandler handles broadcast-related HTTP requests
type BroadcastHandler struct {
	broadcastService services.BroadcastService
	dispatcher       services.BroadcastDispatcher
	inboxService     services.InboxService
}

// NewBroadcastHandler creates a new BroadcastHandler
func NewBroadcastHandler(broadcastService services.BroadcastService, dispatcher services.BroadcastDispatcher, inboxService services.InboxService) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
		dispatcher:       dispatcher,
		inboxService:     inboxService,
	}
}

// CreateBroadcast handles POST /broadcasts
func (h *BroadcastHandler) CreateBroadcast(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	var input models.BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.broadcastService.Create(c.Request.Context(), cc, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBroadcasts handles GET /broadcasts
func (h *BroadcastHandler) GetBroadcasts(c *gin.Context) {
	page, limit := pagination(c)
	filter := models.BroadcastFilter{
		Status:    models.BroadcastStatus(c.Query("status")),
		CreatedBy: c.Query("createdBy"),
		Search:    c.Query("q"),
	}

	items, total, err := h.broadcastService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged{Items: items, Total: total, Page: page, Limit: limit})
}

// GetBroadcastByID handles GET /broadcasts/:id
func (h *BroadcastHandler) GetBroadcastByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.broadcastService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateBroadcast handles PUT /broadcasts/:id
func (h *BroadcastHandler) UpdateBroadcast(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.broadcastService.Update(c.Request.Context(), cc, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DeleteBroadcast handles DELETE /broadcasts/:id
func (h *BroadcastHandler) DeleteBroadcast(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.broadcastService.Delete(c.Request.Context(), cc, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Broadcast deleted successfully"})
}

// SendBroadcast handles POST /broadcasts/:id/send
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// A client disconnect must not strand the broadcast half sent
	res, err := h.dispatcher.Dispatch(context.WithoutCancel(c.Request.Context()), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ResumeBroadcast handles POST /broadcasts/:id/resume
func (h *BroadcastHandler) ResumeBroadcast(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.dispatcher.Resume(context.WithoutCancel(c.Request.Context()), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetRecipients handles GET /broadcasts/:id/recipients
func (h *BroadcastHandler) GetRecipients(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipients, err := h.broadcastService.PreviewRecipients(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": recipients, "count": len(recipients)})
}

// GetDeliveries handles GET /broadcasts/:id/deliveries
func (h *BroadcastHandler) GetDeliveries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, limit := pagination(c)
	items, total, err := h.inboxService.DeliveriesForBroadcast(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged{Items: items, Total: total, Page: page, Limit: limit})
}
