package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/flowyn/flowyn-core/interfaces"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/services"
)

type SyncHandler struct {
	sync interfaces.SyncService
}

func NewSyncHandler(s *services.Services) *SyncHandler {
	return &SyncHandler{sync: s.SyncService}
}

// Trigger runs a full sync pass across every linked account.
func (h *SyncHandler) Trigger() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := h.sync.SyncAll(c.Request.Context())
		if err != nil {
			if errors.Is(err, flowynerrors.ErrSyncInProgress) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
