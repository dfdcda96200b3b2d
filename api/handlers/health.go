package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/store"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status reports store sizes and whether a sync pass is in flight
func Status(mailStore *store.MailStore, syncService interfaces.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"accounts": len(mailStore.Accounts()),
			"emails":   len(mailStore.Emails()),
			"folders":  len(mailStore.Folders()),
			"syncing":  syncService.IsSyncing(),
			"theme":    mailStore.Theme(),
		})
	}
}
