package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staybot/utils"
)

// HealthHandler reports the latest dependency snapshot.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	if h.Monitor == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	st := h.Monitor.Status()
	if !st.Healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "health": st})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "health": st})
}
