package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/services"
)

type AccountsHandler struct {
	accounts interfaces.AccountService
	store    *store.MailStore
}

func NewAccountsHandler(s *services.Services) *AccountsHandler {
	return &AccountsHandler{
		accounts: s.AccountService,
		store:    s.MailStore,
	}
}

func (h *AccountsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.accounts.ListAccounts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

type createAccountRequest struct {
	EmailAddress string   `json:"email" binding:"required"`
	DisplayName  string   `json:"name"`
	Provider     string   `json:"type" binding:"required"`
	Protocol     string   `json:"protocol"`
	Services     []string `json:"linkedServices"`
}

func (h *AccountsHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "AccountsHandler.Create")
		defer span.Finish()

		var request createAccountRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		provider := enum.AccountProvider(request.Provider)
		if !provider.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider type"})
			return
		}

		account := &models.Account{
			EmailAddress:   request.EmailAddress,
			DisplayName:    request.DisplayName,
			Provider:       provider,
			Protocol:       enum.AuthProtocol(request.Protocol),
			LinkedServices: request.Services,
		}

		created, err := h.accounts.CreateAccount(ctx, account)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, flowynerrors.ErrAccountExists):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, flowynerrors.ErrInvalidEmail):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		h.store.AddAccount(created)
		c.JSON(http.StatusCreated, created)
	}
}

type updateAccountRequest struct {
	DisplayName    *string  `json:"name"`
	Status         *string  `json:"status"`
	ErrorMessage   *string  `json:"errorMessage"`
	LinkedServices []string `json:"linkedServices"`
}

func (h *AccountsHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var request updateAccountRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if request.Status != nil && !enum.ConnectionStatus(*request.Status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown connection status"})
			return
		}

		updated, err := h.accounts.UpdateAccount(ctx, id, interfaces.AccountUpdate{
			DisplayName:    request.DisplayName,
			Status:         request.Status,
			ErrorMessage:   request.ErrorMessage,
			LinkedServices: request.LinkedServices,
		})
		if err != nil {
			if errors.Is(err, flowynerrors.ErrAccountNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if request.Status != nil {
			h.store.SetAccountStatus(id, updated.Status, updated.ErrorMessage)
		}
		c.JSON(http.StatusOK, updated)
	}
}

func (h *AccountsHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		if err := h.accounts.DeleteAccount(ctx, id); err != nil {
			if errors.Is(err, flowynerrors.ErrAccountNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		h.store.RemoveAccount(id)
		c.JSON(http.StatusOK, gin.H{"status": "account removed", "id": id})
	}
}
