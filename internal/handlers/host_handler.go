package handlers

import (
	"net/http"
	"strings"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HostHandler handles host directory requests
type HostHandler struct {
	hostService services.HostService
}

// NewHostHandler creates a new HostHandler
func NewHostHandler(hostService services.HostService) *HostHandler {
	return &HostHandler{hostService: hostService}
}

// GetHosts handles GET /hosts
func (h *HostHandler) GetHosts(c *gin.Context) {
	page, limit := pagination(c)
	filter := models.HostFilter{
		Roles:      splitQuery(c.Query("role")),
		Locations:  splitQuery(c.Query("location")),
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("q"),
	}

	items, total, err := h.hostService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged{Items: items, Total: total, Page: page, Limit: limit})
}

// GetHostByID handles GET /hosts/:id
func (h *HostHandler) GetHostByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	host, err := h.hostService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, host)
}

func splitQuery(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
