package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get machine status
// @Description  Current state, admin flag and catalog as last published by the controller
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/status [get]
// @Security     BearerAuth
func (h *Handler) machineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Status())
}

// @Summary      List items
// @Description  Catalog slice of the last published snapshot
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, items"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/items [get]
// @Security     BearerAuth
func (h *Handler) machineItems(c *gin.Context) {
	snap := h.services.Monitoring.Status()
	c.JSON(http.StatusOK, gin.H{
		"count": len(snap.Items),
		"items": snap.Items,
	})
}
