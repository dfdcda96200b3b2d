// Package wizard drives the account-linking flow as an explicit state
// machine. A session exists for one run of the flow and is discarded when it
// closes; the mail store and the account collaborator keep the durable
// results.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/internal/utils"
	"github.com/flowyn/flowyn-core/interfaces"
)

// Config tunes the simulated waits. Tests run with zero delays.
type Config struct {
	// StepDelay paces the per-check verification updates and the pause
	// before auto-advancing to SERVICES.
	StepDelay time.Duration
	// ExchangeDelay paces each pseudo-step of the simulated token exchange.
	ExchangeDelay time.Duration
	// MailboxSeedCount is how many messages to request for a new account.
	MailboxSeedCount int
}

type Session struct {
	mu  sync.Mutex
	log logger.Logger
	cfg Config

	ai       interfaces.AIService
	accounts interfaces.AccountService
	events   interfaces.EventsPublisher
	store    *store.MailStore

	step      Step
	verifying bool
	closed    bool

	provider enum.AccountProvider
	identity IdentityForm
	settings dto.ServerSettings
	toggles  map[string]bool
}

func NewSession(cfg Config, ai interfaces.AIService, accounts interfaces.AccountService, events interfaces.EventsPublisher, mailStore *store.MailStore, log logger.Logger) *Session {
	return &Session{
		log:      log,
		cfg:      cfg,
		ai:       ai,
		accounts: accounts,
		events:   events,
		store:    mailStore,
		step:     StepList{},
	}
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// AddNew moves from the account list to provider selection.
func (s *Session) AddNew() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.step.(StepList); !ok {
		return flowynerrors.ErrInvalidTransition
	}
	s.step = StepChoosePath{}
	return nil
}

// ChooseProvider branches on the provider's capabilities: OAuth providers
// enter the consent webview, everything else goes through the identity form.
func (s *Session) ChooseProvider(provider enum.AccountProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.step.(StepChoosePath); !ok {
		return flowynerrors.ErrInvalidTransition
	}
	if !provider.IsValid() {
		return flowynerrors.ErrInvalidTransition
	}
	s.provider = provider
	if provider.SupportsOAuth() {
		s.step = StepOAuthWebview{Provider: provider, Stage: OAuthStageEmail}
	} else {
		s.step = StepInfo{Provider: provider}
	}
	return nil
}

// OAuthSubmit advances the simulated consent screens one stage at a time.
func (s *Session) OAuthSubmit(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.step.(StepOAuthWebview)
	if !ok {
		return flowynerrors.ErrInvalidTransition
	}
	switch step.Stage {
	case OAuthStageEmail:
		s.identity.EmailAddress = value
		step.Stage = OAuthStagePassword
	case OAuthStagePassword:
		s.identity.Password = value
		step.Stage = OAuthStageGrant
	default:
		return flowynerrors.ErrInvalidTransition
	}
	s.step = step
	return nil
}

// ApproveGrant completes the consent screen, runs the simulated token
// exchange and lands on the service selection step.
func (s *Session) ApproveGrant(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WizardSession.ApproveGrant")
	defer span.Finish()

	s.mu.Lock()
	step, ok := s.step.(StepOAuthWebview)
	if !ok || step.Stage != OAuthStageGrant {
		s.mu.Unlock()
		return flowynerrors.ErrInvalidTransition
	}
	s.mu.Unlock()

	for _, phase := range []string{"authorize", "exchange token", "fetch profile"} {
		s.log.Debugf("OAuth exchange: %s", phase)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ExchangeDelay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Protocol = enum.ProtocolOAuth
	s.step = StepServices{Provider: s.provider, Toggles: s.defaultToggles()}
	return nil
}

// DeclineGrant abandons the consent screen and returns to provider choice.
func (s *Session) DeclineGrant() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.step.(StepOAuthWebview)
	if !ok || step.Stage != OAuthStageGrant {
		return flowynerrors.ErrInvalidTransition
	}
	s.provider = ""
	s.identity = IdentityForm{}
	s.step = StepChoosePath{}
	return nil
}

// Back steps out of the identity or server form without losing the rest of
// the session.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch step := s.step.(type) {
	case StepInfo:
		s.provider = ""
		s.step = StepChoosePath{}
	case StepManual:
		s.step = StepInfo{Provider: step.Provider, Form: step.Identity}
	default:
		return flowynerrors.ErrInvalidTransition
	}
	return nil
}

// SubmitInfo captures the identity form and moves to server configuration,
// pre-filling conventional host names from the mail domain.
func (s *Session) SubmitInfo(form IdentityForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.step.(StepInfo)
	if !ok {
		return flowynerrors.ErrInvalidTransition
	}
	if form.EmailAddress == "" || form.Password == "" {
		step.Err = "email address and password are required"
		s.step = step
		return flowynerrors.ErrInvalidEmail
	}
	s.identity = form
	s.settings = defaultServerSettings(form)
	s.step = StepManual{Provider: step.Provider, Identity: form, Settings: s.settings}
	return nil
}

// VerifyAndSync runs the external settings validator, narrating the three
// named checks. On success the session auto-advances to SERVICES; on failure
// it falls back to MANUAL with the validator's message attached. The wizard
// cannot be closed while verification is running.
func (s *Session) VerifyAndSync(ctx context.Context, settings dto.ServerSettings) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WizardSession.VerifyAndSync")
	defer span.Finish()

	s.mu.Lock()
	manual, ok := s.step.(StepManual)
	if !ok {
		s.mu.Unlock()
		return flowynerrors.ErrInvalidTransition
	}
	settings.EmailAddress = s.identity.EmailAddress
	settings.Password = s.identity.Password
	s.settings = settings
	checks := []Check{
		{Name: dto.CheckIncomingServer, Status: CheckPending},
		{Name: dto.CheckCredentials, Status: CheckPending},
		{Name: dto.CheckOutgoingServer, Status: CheckPending},
	}
	s.step = StepVerifying{Checks: checks}
	s.verifying = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.verifying = false
		s.mu.Unlock()
	}()

	report := s.ai.ValidateServerSettings(ctx, settings)

	for i := range checks {
		s.setCheck(i, CheckLoading, "")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.StepDelay):
		}

		result := checkResult(report, checks[i].Name)
		if result != nil && !result.Passed {
			s.setCheck(i, CheckError, result.Message)
			s.mu.Lock()
			manual.Settings = s.settings
			manual.Err = failureMessage(report, result)
			s.step = manual
			s.mu.Unlock()
			s.log.Warnf("Server verification failed for %s: %s", settings.EmailAddress, manual.Err)
			return nil
		}
		s.setCheck(i, CheckSuccess, "")
	}

	if !report.Success {
		s.mu.Lock()
		manual.Settings = s.settings
		manual.Err = failureMessage(report, nil)
		s.step = manual
		s.mu.Unlock()
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.StepDelay):
	}

	s.mu.Lock()
	s.step = StepServices{Provider: s.provider, Toggles: s.defaultToggles()}
	s.mu.Unlock()
	return nil
}

// ToggleService flips one of the calendar/contacts/chat sync switches.
func (s *Session) ToggleService(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.step.(StepServices)
	if !ok {
		return flowynerrors.ErrInvalidTransition
	}
	step.Toggles[name] = !step.Toggles[name]
	s.toggles = step.Toggles
	s.step = step
	return nil
}

// IngestMailbox persists the account and seeds its mailbox. A creation
// failure sends the flow back to INFO, since bad identity data is the usual
// culprit; a seeding failure is logged but does not undo the link.
func (s *Session) IngestMailbox(ctx context.Context) (*dto.SyncOutcome, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WizardSession.IngestMailbox")
	defer span.Finish()

	s.mu.Lock()
	step, ok := s.step.(StepServices)
	if !ok {
		s.mu.Unlock()
		return nil, flowynerrors.ErrInvalidTransition
	}
	account := s.buildAccount(step)
	s.mu.Unlock()

	created, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		s.mu.Lock()
		s.step = StepInfo{Provider: step.Provider, Form: s.identity, Err: err.Error()}
		s.mu.Unlock()
		return nil, err
	}
	tracing.TagAccount(span, created.ID)

	s.store.AddAccount(created)
	if s.events != nil {
		s.events.PublishAccountLinked(ctx, created)
	}

	outcome := &dto.SyncOutcome{AccountID: created.ID}
	emails, err := s.ai.GenerateMailbox(ctx, dto.GenerateMailboxRequest{
		AccountID:    created.ID,
		EmailAddress: created.EmailAddress,
		Provider:     created.Provider,
		Count:        s.cfg.MailboxSeedCount,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Initial mailbox seed failed for %s: %v", created.ID, err)
	} else {
		merged, mergeErr := s.store.MergeSyncBatch(ctx, emails)
		if mergeErr != nil {
			s.log.Errorf("Persisting seeded mailbox failed for %s: %v", created.ID, mergeErr)
		}
		outcome.Fetched = len(emails)
		outcome.Merged = merged
	}

	s.mu.Lock()
	s.step = StepList{}
	s.closed = true
	s.mu.Unlock()
	return outcome, nil
}

// Close discards the session. Forbidden while verification is in flight, so
// the VERIFYING state always resolves to a terminal outcome.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verifying {
		return flowynerrors.ErrVerificationInProgress
	}
	s.closed = true
	s.step = StepList{}
	s.provider = ""
	s.identity = IdentityForm{}
	s.settings = dto.ServerSettings{}
	s.toggles = nil
	return nil
}

func (s *Session) buildAccount(step StepServices) *models.Account {
	services := make([]string, 0, len(step.Toggles))
	for name, on := range step.Toggles {
		if on {
			services = append(services, name)
		}
	}
	protocol := s.settings.Protocol
	if s.provider.SupportsOAuth() {
		protocol = enum.ProtocolOAuth
	}
	return &models.Account{
		EmailAddress:   s.identity.EmailAddress,
		DisplayName:    s.identity.DisplayName,
		Provider:       s.provider,
		Protocol:       protocol,
		IncomingHost:   s.settings.IncomingHost,
		IncomingPort:   s.settings.IncomingPort,
		OutgoingHost:   s.settings.OutgoingHost,
		OutgoingPort:   s.settings.OutgoingPort,
		Security:       s.settings.Security,
		LinkedServices: services,
	}
}

func (s *Session) defaultToggles() map[string]bool {
	return map[string]bool{
		models.ServiceCalendar: true,
		models.ServiceContacts: true,
		models.ServiceChat:     false,
	}
}

func (s *Session) setCheck(i int, status CheckStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.step.(StepVerifying)
	if !ok {
		return
	}
	step.Checks[i].Status = status
	step.Checks[i].Message = message
	s.step = step
}

func defaultServerSettings(form IdentityForm) dto.ServerSettings {
	domain := utils.MailDomain(form.EmailAddress)
	return dto.ServerSettings{
		EmailAddress: form.EmailAddress,
		Password:     form.Password,
		Protocol:     enum.ProtocolImap,
		IncomingHost: "imap." + domain,
		IncomingPort: 993,
		OutgoingHost: "smtp." + domain,
		OutgoingPort: 587,
		Security:     enum.SecuritySSL,
	}
}

func checkResult(report *dto.ServerValidationReport, name string) *dto.ServerCheckResult {
	for i := range report.Checks {
		if report.Checks[i].Name == name {
			return &report.Checks[i]
		}
	}
	return nil
}

func failureMessage(report *dto.ServerValidationReport, result *dto.ServerCheckResult) string {
	if result != nil && result.Message != "" {
		return result.Message
	}
	if report.Error != "" {
		return report.Error
	}
	return "server verification failed"
}
