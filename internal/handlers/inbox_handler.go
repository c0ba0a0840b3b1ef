package handlers

import (
	"net/http"

	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// InboxHandler serves a host's received broadcasts
type InboxHandler struct {
	inboxService services.InboxService
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(inboxService services.InboxService) *InboxHandler {
	return &InboxHandler{inboxService: inboxService}
}

// GetInbox handles GET /inbox
func (h *InboxHandler) GetInbox(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	views, err := h.inboxService.ListInbox(c.Request.Context(), cc.EffectiveHostID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

// GetUnreadCount handles GET /inbox/unread-count
func (h *InboxHandler) GetUnreadCount(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	n, err := h.inboxService.UnreadCount(c.Request.Context(), cc.EffectiveHostID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// MarkRead handles POST /inbox/:broadcastId/read. An admin acting as a host
// sees the inbox but does not change its read state.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	cc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "broadcastId")
	if !ok {
		return
	}
	if cc.IsImpersonating() {
		c.JSON(http.StatusOK, gin.H{"message": "Read state unchanged while acting as another host"})
		return
	}
	if err := h.inboxService.MarkRead(c.Request.Context(), id, cc.EffectiveHostID()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}
