package dto

import (
	"github.com/flowyn/flowyn-core/internal/enum"
	"github.com/flowyn/flowyn-core/internal/models"
)

type GenerateMailboxRequest struct {
	AccountID    string               `json:"accountId"`
	EmailAddress string               `json:"emailAddress"`
	Provider     enum.AccountProvider `json:"provider"`
	Count        int                  `json:"count"`
}

type SummarizeThreadRequest struct {
	ThreadID string          `json:"threadId"`
	Subject  string          `json:"subject"`
	Emails   []*models.Email `json:"emails"`
}

type GenerateDraftRequest struct {
	Prompt  string        `json:"prompt"`
	ReplyTo *models.Email `json:"replyTo,omitempty"`
}

type TriageResult struct {
	Importance int    `json:"importance"`
	Category   string `json:"category"`
}

// DefaultTriageResult is the safe fallback when the AI response is missing
// or unparseable.
func DefaultTriageResult() *TriageResult {
	return &TriageResult{Importance: 5, Category: "Work"}
}

// ServerSettings is the manually entered configuration handed to the
// external settings validator.
type ServerSettings struct {
	EmailAddress string                 `json:"emailAddress"`
	Password     string                 `json:"-"`
	Protocol     enum.AuthProtocol      `json:"protocol"`
	IncomingHost string                 `json:"incomingHost"`
	IncomingPort int                    `json:"incomingPort"`
	OutgoingHost string                 `json:"outgoingHost"`
	OutgoingPort int                    `json:"outgoingPort"`
	Security     enum.TransportSecurity `json:"security"`
}

// Named verification checks rendered by the wizard, in execution order.
const (
	CheckIncomingServer = "incoming_server"
	CheckCredentials    = "credentials"
	CheckOutgoingServer = "outgoing_server"
)

type ServerCheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

type ServerValidationReport struct {
	Success bool                `json:"success"`
	Checks  []ServerCheckResult `json:"checks"`
	Error   string              `json:"error,omitempty"`
}

// FailedValidationReport builds the explicit failure report used when the
// validator itself is unreachable.
func FailedValidationReport(message string) *ServerValidationReport {
	return &ServerValidationReport{
		Success: false,
		Checks: []ServerCheckResult{
			{Name: CheckIncomingServer, Passed: false, Message: message},
			{Name: CheckCredentials, Passed: false},
			{Name: CheckOutgoingServer, Passed: false},
		},
		Error: message,
	}
}
