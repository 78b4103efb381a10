package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
)

type syncHandler struct {
	syncService portssvc.SyncSvc
}

func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvc) {
	h := &syncHandler{syncService: syncService}
	rg.POST("/sync", h.refreshData)
	rg.GET("/sync", h.syncStatus)
}

// refreshData re-runs the full sync and resolves once the replica is
// repopulated. A trigger during an in-flight run attaches to that run.
func (h *syncHandler) refreshData(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.syncService.SyncAll(c.Request.Context(), who); err != nil {
		respondError(c, err, "Sync failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}

func (h *syncHandler) syncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"inProgress": h.syncService.InProgress()})
}
