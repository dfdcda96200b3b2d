package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/services"
)

type AIHandler struct {
	ai    interfaces.AIService
	store *store.MailStore
}

func NewAIHandler(s *services.Services) *AIHandler {
	return &AIHandler{
		ai:    s.AIService,
		store: s.MailStore,
	}
}

type summarizeRequest struct {
	ThreadID string `json:"threadId" binding:"required"`
}

func (h *AIHandler) Summarize() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request summarizeRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		emails := h.store.EmailsByThread(request.ThreadID)
		if len(emails) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}

		summary := h.ai.SummarizeThread(c.Request.Context(), dto.SummarizeThreadRequest{
			ThreadID: request.ThreadID,
			Subject:  emails[0].Subject,
			Emails:   emails,
		})
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}

type draftRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	ReplyToID string `json:"replyToId"`
}

func (h *AIHandler) Draft() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request draftRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		draft := h.ai.GenerateDraft(c.Request.Context(), dto.GenerateDraftRequest{
			Prompt:  request.Prompt,
			ReplyTo: h.store.EmailByID(request.ReplyToID),
		})
		c.JSON(http.StatusOK, gin.H{"draft": draft})
	}
}

func (h *AIHandler) Triage() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := h.store.EmailByID(c.Param("id"))
		if email == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}

		c.JSON(http.StatusOK, h.ai.TriageEmail(c.Request.Context(), email))
	}
}

type classifyRequest struct {
	IDs []string `json:"ids"`
}

// Classify suggests a folder per message; with no ids it covers the whole
// collection.
func (h *AIHandler) Classify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request classifyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		emails := h.store.Emails()
		if len(request.IDs) > 0 {
			wanted := make(map[string]struct{}, len(request.IDs))
			for _, id := range request.IDs {
				wanted[id] = struct{}{}
			}
			filtered := emails[:0]
			for _, e := range emails {
				if _, ok := wanted[e.ID]; ok {
					filtered = append(filtered, e)
				}
			}
			emails = filtered
		}

		c.JSON(http.StatusOK, gin.H{"folders": h.ai.ClassifyEmails(c.Request.Context(), emails)})
	}
}
