package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/flowyn/flowyn-core/api/handlers"
	"github.com/flowyn/flowyn-core/api/middleware"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// setup handlers
	apiHandlers := handlers.InitHandlers(s)

	// Health check and status endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.MailStore, s.SyncService))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-FLOWYN-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and tracing
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TracingMiddleware())
	{
		// Linked account endpoints
		accounts := api.Group("/accounts")
		{
			accounts.GET("", apiHandlers.Accounts.List())
			accounts.POST("", apiHandlers.Accounts.Create())
			accounts.PUT("/:id", apiHandlers.Accounts.Update())
			accounts.DELETE("/:id", apiHandlers.Accounts.Delete())
		}

		// Mailbox endpoints
		emails := api.Group("/emails")
		{
			emails.GET("", apiHandlers.Emails.List())
			emails.GET("/folders", apiHandlers.Emails.Folders())
			emails.POST("/send", apiHandlers.Emails.Send())
			emails.POST("/actions", apiHandlers.Emails.BatchAction())
			emails.POST("/:id/open", apiHandlers.Emails.Open())
			emails.POST("/:id/actions", apiHandlers.Emails.Action())
		}

		// Assistant endpoints
		ai := api.Group("/ai")
		{
			ai.POST("/summarize", apiHandlers.AI.Summarize())
			ai.POST("/draft", apiHandlers.AI.Draft())
			ai.POST("/classify", apiHandlers.AI.Classify())
			ai.GET("/triage/:id", apiHandlers.AI.Triage())
		}

		// Account-linking wizard endpoints; the flow is a strict state
		// machine, so most routes just name a transition
		wizard := api.Group("/wizard")
		{
			wizard.POST("", apiHandlers.Wizard.Open())
			wizard.GET("", apiHandlers.Wizard.Step())
			wizard.DELETE("", apiHandlers.Wizard.Close())
			wizard.POST("/add-new", apiHandlers.Wizard.AddNew())
			wizard.POST("/provider", apiHandlers.Wizard.ChooseProvider())
			wizard.POST("/oauth", apiHandlers.Wizard.OAuthSubmit())
			wizard.POST("/oauth/approve", apiHandlers.Wizard.ApproveGrant())
			wizard.POST("/oauth/decline", apiHandlers.Wizard.DeclineGrant())
			wizard.POST("/info", apiHandlers.Wizard.SubmitInfo())
			wizard.POST("/back", apiHandlers.Wizard.Back())
			wizard.POST("/verify", apiHandlers.Wizard.Verify())
			wizard.POST("/services/toggle", apiHandlers.Wizard.ToggleService())
			wizard.POST("/ingest", apiHandlers.Wizard.Ingest())
		}

		api.POST("/sync", apiHandlers.Sync.Trigger())
		api.PUT("/settings/theme", apiHandlers.Emails.SetTheme())
	}
}
