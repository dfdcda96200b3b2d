package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowyn/flowyn-core/internal/enum"
	"github.com/flowyn/flowyn-core/internal/mailbox"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/internal/utils"
	"github.com/flowyn/flowyn-core/services"
)

const snippetLength = 120

type EmailsHandler struct {
	store *store.MailStore
}

func NewEmailsHandler(s *services.Services) *EmailsHandler {
	return &EmailsHandler{store: s.MailStore}
}

// List returns the filtered, sorted message list plus unread counts.
func (h *EmailsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := mailbox.Query{
			AccountID: c.Query("accountId"),
			FolderID:  c.DefaultQuery("folderId", models.FolderIDInbox),
			Search:    c.Query("search"),
			Fields:    mailbox.DefaultSearchFields(),
		}
		if c.Query("searchBody") == "true" {
			query.Fields.Body = true
		}

		if !h.store.FolderExists(query.FolderID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"emails":       h.store.Visible(query),
			"unreadCounts": h.store.UnreadCounts(),
		})
	}
}

func (h *EmailsHandler) Folders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"folders":      h.store.Folders(),
			"unreadCounts": h.store.UnreadCounts(),
		})
	}
}

// Open marks a message as the one shown in the thread view and returns its
// whole thread.
func (h *EmailsHandler) Open() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		email := h.store.OpenEmail(id)
		if email == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"email":  email,
			"thread": h.store.EmailsByThread(email.ThreadID),
		})
	}
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Action applies one of star/read/unread/archive/delete to a single message.
func (h *EmailsHandler) Action() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "EmailsHandler.Action")
		defer span.Finish()

		id := c.Param("id")
		tracing.TagEntity(span, id)

		var request actionRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		action := mailbox.Action(request.Action)
		if !action.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
			return
		}
		if h.store.EmailByID(id) == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}

		if err := h.store.ApplyAction(ctx, id, action); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"email":        h.store.EmailByID(id),
			"unreadCounts": h.store.UnreadCounts(),
		})
	}
}

type batchActionRequest struct {
	IDs    []string `json:"ids" binding:"required"`
	Action string   `json:"action" binding:"required"`
}

// BatchAction applies one action over a selection set and clears it.
func (h *EmailsHandler) BatchAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "EmailsHandler.BatchAction")
		defer span.Finish()

		var request batchActionRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		action := mailbox.Action(request.Action)
		if !action.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
			return
		}

		h.store.SelectMany(request.IDs)
		if err := h.store.ApplyBatchAction(ctx, action); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"applied":      len(request.IDs),
			"unreadCounts": h.store.UnreadCounts(),
		})
	}
}

type sendEmailRequest struct {
	AccountID string   `json:"accountId" binding:"required"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	ReplyToID string   `json:"replyToId"`
}

// Send appends an outgoing message to the sent folder. A reply joins the
// original thread, a fresh message starts a new one.
func (h *EmailsHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "EmailsHandler.Send")
		defer span.Finish()

		var request sendEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(request.To) == 0 || request.Subject == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipient and subject are required"})
			return
		}

		account := h.store.AccountByID(request.AccountID)
		if account == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		tracing.TagAccount(span, account.ID)

		threadID := utils.GenerateThreadID()
		if request.ReplyToID != "" {
			if original := h.store.EmailByID(request.ReplyToID); original != nil {
				threadID = original.ThreadID
			}
		}

		to := make([]models.EmailParty, 0, len(request.To))
		for _, address := range request.To {
			to = append(to, models.EmailParty{EmailAddress: utils.NormalizeEmailAddress(address)})
		}

		email := &models.Email{
			ID:        utils.GenerateMessageID(),
			ThreadID:  threadID,
			AccountID: account.ID,
			From: models.EmailParty{
				Name:         account.DisplayName,
				EmailAddress: account.EmailAddress,
				Avatar:       account.Avatar,
			},
			To:          to,
			Subject:     request.Subject,
			Snippet:     utils.Snippet(request.Body, snippetLength),
			Body:        request.Body,
			Date:        time.Now().UTC(),
			IsRead:      true,
			Labels:      []string{},
			Attachments: []models.AttachmentRef{},
			FolderID:    models.FolderIDSent,
		}

		if err := h.store.AppendEmail(ctx, email); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, email)
	}
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *EmailsHandler) SetTheme() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request themeRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		theme := enumTheme(request.Theme)
		if theme == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be dark or light"})
			return
		}

		if err := h.store.SetTheme(c.Request.Context(), theme); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"theme": theme})
	}
}

func enumTheme(value string) enum.Theme {
	theme := enum.Theme(value)
	if theme == enum.ThemeDark || theme == enum.ThemeLight {
		return theme
	}
	return ""
}
