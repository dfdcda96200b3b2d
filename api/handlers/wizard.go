package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/wizard"
	"github.com/flowyn/flowyn-core/services"
)

// WizardHandler drives the account-linking flow over HTTP. One session at a
// time: opening a new one replaces a closed predecessor.
type WizardHandler struct {
	mu       sync.Mutex
	session  *wizard.Session
	services *services.Services
}

func NewWizardHandler(s *services.Services) *WizardHandler {
	return &WizardHandler{services: s}
}

func (h *WizardHandler) current() *wizard.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil || h.session.Closed() {
		return nil
	}
	return h.session
}

// Open starts a fresh session at the account list.
func (h *WizardHandler) Open() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		if h.session != nil && !h.session.Closed() {
			session := h.session
			h.mu.Unlock()
			c.JSON(http.StatusOK, stepResponse(session.Step()))
			return
		}
		s := h.services
		h.session = wizard.NewSession(s.WizardConfig, s.AIService, s.AccountService, s.EventsPublisher, s.MailStore, s.Log)
		session := h.session
		h.mu.Unlock()

		c.JSON(http.StatusCreated, stepResponse(session.Step()))
	}
}

func (h *WizardHandler) Step() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := h.current()
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no wizard session"})
			return
		}
		c.JSON(http.StatusOK, stepResponse(session.Step()))
	}
}

func (h *WizardHandler) AddNew() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		return session.AddNew()
	})
}

type providerRequest struct {
	Provider string `json:"provider" binding:"required"`
}

func (h *WizardHandler) ChooseProvider() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		var request providerRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			return err
		}
		return session.ChooseProvider(enum.AccountProvider(request.Provider))
	})
}

type oauthInputRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *WizardHandler) OAuthSubmit() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		var request oauthInputRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			return err
		}
		return session.OAuthSubmit(request.Value)
	})
}

func (h *WizardHandler) ApproveGrant() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		return session.ApproveGrant(c.Request.Context())
	})
}

func (h *WizardHandler) DeclineGrant() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		return session.DeclineGrant()
	})
}

func (h *WizardHandler) Back() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		return session.Back()
	})
}

type infoRequest struct {
	DisplayName  string `json:"name"`
	EmailAddress string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

func (h *WizardHandler) SubmitInfo() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		var request infoRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			return err
		}
		return session.SubmitInfo(wizard.IdentityForm{
			DisplayName:  request.DisplayName,
			EmailAddress: request.EmailAddress,
			Password:     request.Password,
		})
	})
}

func (h *WizardHandler) Verify() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		var settings dto.ServerSettings
		if err := c.ShouldBindJSON(&settings); err != nil {
			return err
		}
		return session.VerifyAndSync(c.Request.Context(), settings)
	})
}

type toggleRequest struct {
	Service string `json:"service" binding:"required"`
}

func (h *WizardHandler) ToggleService() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, session *wizard.Session) error {
		var request toggleRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			return err
		}
		return session.ToggleService(request.Service)
	})
}

// Ingest persists the account, seeds its mailbox and closes the session.
func (h *WizardHandler) Ingest() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := h.current()
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no wizard session"})
			return
		}

		outcome, err := session.IngestMailbox(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, flowynerrors.ErrInvalidTransition):
				status = http.StatusConflict
			case errors.Is(err, flowynerrors.ErrAccountExists):
				status = http.StatusConflict
			case errors.Is(err, flowynerrors.ErrInvalidEmail):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error(), "current": stepResponse(session.Step())})
			return
		}

		c.JSON(http.StatusCreated, outcome)
	}
}

// Close discards the session; refused while verification is running.
func (h *WizardHandler) Close() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := h.current()
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no wizard session"})
			return
		}

		if err := session.Close(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "wizard closed"})
	}
}

func (h *WizardHandler) transition(apply func(*gin.Context, *wizard.Session) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := h.current()
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no wizard session"})
			return
		}

		if err := apply(c, session); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, flowynerrors.ErrInvalidTransition) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error(), "current": stepResponse(session.Step())})
			return
		}
		c.JSON(http.StatusOK, stepResponse(session.Step()))
	}
}

func stepResponse(step wizard.Step) gin.H {
	return gin.H{
		"step": step.StepName(),
		"data": step,
	}
}
