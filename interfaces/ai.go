package interfaces

import (
	"golang.org/x/net/context"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/models"
)

// AIService is the generative backend. Implementations must degrade to the
// documented fallback values instead of surfacing transport or parse
// failures, except GenerateMailbox whose error drives the account status.
type AIService interface {
	GenerateMailbox(ctx context.Context, request dto.GenerateMailboxRequest) ([]*models.Email, error)
	SummarizeThread(ctx context.Context, request dto.SummarizeThreadRequest) string
	GenerateDraft(ctx context.Context, request dto.GenerateDraftRequest) string
	TriageEmail(ctx context.Context, email *models.Email) *dto.TriageResult
	ClassifyEmails(ctx context.Context, emails []*models.Email) map[string]string
	ValidateServerSettings(ctx context.Context, settings dto.ServerSettings) *dto.ServerValidationReport
}
