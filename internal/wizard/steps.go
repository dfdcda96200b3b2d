package wizard

import (
	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/enum"
)

// Step is the sealed set of wizard states. Each variant carries only the
// fields that state actually needs, so a session can never hold, say, OAuth
// stage data while sitting on the manual server form.
type Step interface {
	StepName() string
}

type StepList struct{}

func (StepList) StepName() string { return "LIST" }

type StepChoosePath struct{}

func (StepChoosePath) StepName() string { return "CHOOSE_PATH" }

// OAuthStage is the position inside the simulated consent sub-flow.
type OAuthStage string

const (
	OAuthStageEmail    OAuthStage = "EMAIL"
	OAuthStagePassword OAuthStage = "PASSWORD"
	OAuthStageGrant    OAuthStage = "GRANT"
)

type StepOAuthWebview struct {
	Provider enum.AccountProvider `json:"provider"`
	Stage    OAuthStage           `json:"stage"`
}

func (StepOAuthWebview) StepName() string { return "OAUTH_WEBVIEW" }

// IdentityForm holds the values captured on the INFO step. The password
// never serializes.
type IdentityForm struct {
	DisplayName  string `json:"name"`
	EmailAddress string `json:"email"`
	Password     string `json:"-"`
}

type StepInfo struct {
	Provider enum.AccountProvider `json:"provider"`
	Form     IdentityForm         `json:"form"`
	Err      string               `json:"error,omitempty"`
}

func (StepInfo) StepName() string { return "INFO" }

type StepManual struct {
	Provider enum.AccountProvider `json:"provider"`
	Identity IdentityForm         `json:"identity"`
	Settings dto.ServerSettings   `json:"settings"`
	Err      string               `json:"error,omitempty"`
}

func (StepManual) StepName() string { return "MANUAL" }

type CheckStatus string

const (
	CheckPending CheckStatus = "pending"
	CheckLoading CheckStatus = "loading"
	CheckSuccess CheckStatus = "success"
	CheckError   CheckStatus = "error"
)

type Check struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

type StepVerifying struct {
	Checks []Check `json:"checks"`
}

func (StepVerifying) StepName() string { return "VERIFYING" }

type StepServices struct {
	Provider enum.AccountProvider `json:"provider"`
	Toggles  map[string]bool      `json:"toggles"`
}

func (StepServices) StepName() string { return "SERVICES" }
