package handlers

import (
	"net/http"
	"os"

	"remindme/internal/services"

	"github.com/gin-gonic/gin"
)

// OpsHandler exposes administrative operations guarded by a shared secret
type OpsHandler struct {
	worker *services.ReminderWorker
	token  string
}

func NewOpsHandler(worker *services.ReminderWorker) *OpsHandler {
	return &OpsHandler{
		worker: worker,
		token:  os.Getenv("ADMIN_TOKEN"),
	}
}

// RunSchedulerTick triggers one scheduler pass outside the fixed
// interval, e.g. from cron or a manual curl during incident handling
func (h *OpsHandler) RunSchedulerTick(c *gin.Context) {
	if h.token == "" || c.GetHeader("X-Admin-Token") != h.token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
		return
	}

	stats := h.worker.RunTickOnce()
	c.JSON(http.StatusOK, stats)
}
