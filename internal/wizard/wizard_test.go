package wizard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/interfaces"
)

type memSnapshots struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func (m *memSnapshots) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return raw, nil
}

func (m *memSnapshots) Put(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type stubAI struct {
	report     *dto.ServerValidationReport
	emails     []*models.Email
	mailboxErr error
	validating chan struct{}
	release    chan struct{}
}

func (s *stubAI) GenerateMailbox(_ context.Context, _ dto.GenerateMailboxRequest) ([]*models.Email, error) {
	return s.emails, s.mailboxErr
}

func (s *stubAI) SummarizeThread(_ context.Context, _ dto.SummarizeThreadRequest) string {
	return "Summary unavailable."
}

func (s *stubAI) GenerateDraft(_ context.Context, _ dto.GenerateDraftRequest) string { return "" }

func (s *stubAI) TriageEmail(_ context.Context, _ *models.Email) *dto.TriageResult {
	return dto.DefaultTriageResult()
}

func (s *stubAI) ClassifyEmails(_ context.Context, _ []*models.Email) map[string]string {
	return map[string]string{}
}

func (s *stubAI) ValidateServerSettings(_ context.Context, _ dto.ServerSettings) *dto.ServerValidationReport {
	if s.validating != nil {
		close(s.validating)
		<-s.release
	}
	return s.report
}

type stubAccounts struct {
	createErr error
	created   *models.Account
}

func (s *stubAccounts) ListAccounts(_ context.Context) ([]*models.Account, error) { return nil, nil }

func (s *stubAccounts) CreateAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	account.ID = "acc-test00001"
	s.created = account
	return account, nil
}

func (s *stubAccounts) UpdateAccount(_ context.Context, _ string, _ interfaces.AccountUpdate) (*models.Account, error) {
	return nil, nil
}

func (s *stubAccounts) DeleteAccount(_ context.Context, _ string) error { return nil }

func passingReport() *dto.ServerValidationReport {
	return &dto.ServerValidationReport{
		Success: true,
		Checks: []dto.ServerCheckResult{
			{Name: dto.CheckIncomingServer, Passed: true},
			{Name: dto.CheckCredentials, Passed: true},
			{Name: dto.CheckOutgoingServer, Passed: true},
		},
	}
}

func testSession(t *testing.T, ai *stubAI, accounts *stubAccounts) (*Session, *store.MailStore) {
	t.Helper()
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	mailStore := store.NewMailStore(&memSnapshots{data: map[string]json.RawMessage{}}, log)
	require.NoError(t, mailStore.Load(context.Background()))
	cfg := Config{MailboxSeedCount: 3}
	return NewSession(cfg, ai, accounts, nil, mailStore, log), mailStore
}

func TestChooseProvider_OAuthBranch(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderGmail))

	step, ok := s.Step().(StepOAuthWebview)
	require.True(t, ok)
	assert.Equal(t, enum.ProviderGmail, step.Provider)
	assert.Equal(t, OAuthStageEmail, step.Stage)
}

func TestChooseProvider_ManualBranch(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderYahoo))

	_, ok := s.Step().(StepInfo)
	assert.True(t, ok)
}

func TestOAuthFlow_GrantReachesServices(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderOutlook))
	require.NoError(t, s.OAuthSubmit("pat@example.com"))
	require.NoError(t, s.OAuthSubmit("hunter2"))

	step := s.Step().(StepOAuthWebview)
	require.Equal(t, OAuthStageGrant, step.Stage)

	require.NoError(t, s.ApproveGrant(context.Background()))

	services, ok := s.Step().(StepServices)
	require.True(t, ok)
	assert.True(t, services.Toggles[models.ServiceCalendar])
	assert.False(t, services.Toggles[models.ServiceChat])
}

func TestOAuthFlow_DeclineReturnsToChoosePath(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderGmail))
	require.NoError(t, s.OAuthSubmit("pat@example.com"))
	require.NoError(t, s.OAuthSubmit("hunter2"))
	require.NoError(t, s.DeclineGrant())

	_, ok := s.Step().(StepChoosePath)
	assert.True(t, ok)
}

func TestSubmitInfo_PrefillsServerSettings(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderImap))
	require.NoError(t, s.SubmitInfo(IdentityForm{
		DisplayName:  "Pat",
		EmailAddress: "pat@example.com",
		Password:     "hunter2",
	}))

	manual, ok := s.Step().(StepManual)
	require.True(t, ok)
	assert.Equal(t, "imap.example.com", manual.Settings.IncomingHost)
	assert.Equal(t, 993, manual.Settings.IncomingPort)
	assert.Equal(t, "smtp.example.com", manual.Settings.OutgoingHost)
	assert.Equal(t, enum.SecuritySSL, manual.Settings.Security)
}

func TestSubmitInfo_RejectsEmptyForm(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderImap))

	err := s.SubmitInfo(IdentityForm{})
	assert.ErrorIs(t, err, flowynerrors.ErrInvalidEmail)

	info, ok := s.Step().(StepInfo)
	require.True(t, ok)
	assert.NotEmpty(t, info.Err)
}

func TestVerifyAndSync_SuccessReachesServices(t *testing.T) {
	ai := &stubAI{report: passingReport()}
	s, _ := testSession(t, ai, &stubAccounts{})
	toManual(t, s)

	require.NoError(t, s.VerifyAndSync(context.Background(), s.Step().(StepManual).Settings))

	_, ok := s.Step().(StepServices)
	assert.True(t, ok)
}

func TestVerifyAndSync_FailureRevertsToManual(t *testing.T) {
	ai := &stubAI{report: &dto.ServerValidationReport{
		Success: false,
		Checks: []dto.ServerCheckResult{
			{Name: dto.CheckIncomingServer, Passed: true},
			{Name: dto.CheckCredentials, Passed: false, Message: "authentication rejected"},
			{Name: dto.CheckOutgoingServer, Passed: false},
		},
		Error: "authentication rejected",
	}}
	s, _ := testSession(t, ai, &stubAccounts{})
	toManual(t, s)

	require.NoError(t, s.VerifyAndSync(context.Background(), s.Step().(StepManual).Settings))

	manual, ok := s.Step().(StepManual)
	require.True(t, ok, "a failed verification never reaches SERVICES")
	assert.Equal(t, "authentication rejected", manual.Err)
}

func TestClose_ForbiddenWhileVerifying(t *testing.T) {
	ai := &stubAI{
		report:     passingReport(),
		validating: make(chan struct{}),
		release:    make(chan struct{}),
	}
	s, _ := testSession(t, ai, &stubAccounts{})
	toManual(t, s)

	done := make(chan error, 1)
	go func() {
		done <- s.VerifyAndSync(context.Background(), s.Step().(StepManual).Settings)
	}()

	<-ai.validating
	assert.ErrorIs(t, s.Close(), flowynerrors.ErrVerificationInProgress)

	close(ai.release)
	require.NoError(t, <-done)

	_, ok := s.Step().(StepServices)
	require.True(t, ok)
	assert.NoError(t, s.Close())
}

func TestIngestMailbox_PersistsAndSeeds(t *testing.T) {
	ai := &stubAI{
		report: passingReport(),
		emails: []*models.Email{
			{ID: "m-a", AccountID: "acc-test00001", FolderID: models.FolderIDInbox, Date: time.Now()},
			{ID: "m-b", AccountID: "acc-test00001", FolderID: models.FolderIDInbox, Date: time.Now()},
		},
	}
	accounts := &stubAccounts{}
	s, mailStore := testSession(t, ai, accounts)
	toServices(t, s)

	outcome, err := s.IngestMailbox(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "acc-test00001", outcome.AccountID)
	assert.Equal(t, 2, outcome.Fetched)
	assert.Equal(t, 2, outcome.Merged)

	require.NotNil(t, accounts.created)
	assert.Equal(t, "pat@example.com", accounts.created.EmailAddress)
	assert.NotNil(t, mailStore.AccountByID("acc-test00001"))
	assert.Len(t, mailStore.Emails(), 3)

	_, ok := s.Step().(StepList)
	assert.True(t, ok)
	assert.True(t, s.Closed())
}

func TestIngestMailbox_CreationFailureReturnsToInfo(t *testing.T) {
	accounts := &stubAccounts{createErr: errors.New("Account already exists")}
	s, mailStore := testSession(t, &stubAI{report: passingReport()}, accounts)
	toServices(t, s)

	_, err := s.IngestMailbox(context.Background())
	require.Error(t, err)

	info, ok := s.Step().(StepInfo)
	require.True(t, ok, "creation failures point back at the identity form")
	assert.Equal(t, "Account already exists", info.Err)
	assert.Equal(t, "pat@example.com", info.Form.EmailAddress)
	assert.Len(t, mailStore.Emails(), 1, "no mailbox is seeded for a failed link")
}

func TestIngestMailbox_SeedFailureStillLinks(t *testing.T) {
	ai := &stubAI{report: passingReport(), mailboxErr: errors.New("model overloaded")}
	accounts := &stubAccounts{}
	s, mailStore := testSession(t, ai, accounts)
	toServices(t, s)

	outcome, err := s.IngestMailbox(context.Background())
	require.NoError(t, err)

	assert.Zero(t, outcome.Fetched)
	assert.NotNil(t, mailStore.AccountByID("acc-test00001"))
	assert.True(t, s.Closed())
}

func TestInvalidTransitions(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})

	assert.ErrorIs(t, s.ChooseProvider(enum.ProviderGmail), flowynerrors.ErrInvalidTransition)
	assert.ErrorIs(t, s.OAuthSubmit("x"), flowynerrors.ErrInvalidTransition)
	assert.ErrorIs(t, s.Back(), flowynerrors.ErrInvalidTransition)
	assert.ErrorIs(t, s.ToggleService(models.ServiceChat), flowynerrors.ErrInvalidTransition)

	_, err := s.IngestMailbox(context.Background())
	assert.ErrorIs(t, err, flowynerrors.ErrInvalidTransition)
}

func TestBack_ManualReturnsToInfo(t *testing.T) {
	s, _ := testSession(t, &stubAI{}, &stubAccounts{})
	toManual(t, s)

	require.NoError(t, s.Back())
	info, ok := s.Step().(StepInfo)
	require.True(t, ok)
	assert.Equal(t, "pat@example.com", info.Form.EmailAddress)

	require.NoError(t, s.Back())
	_, ok = s.Step().(StepChoosePath)
	assert.True(t, ok)
}

func toManual(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.AddNew())
	require.NoError(t, s.ChooseProvider(enum.ProviderImap))
	require.NoError(t, s.SubmitInfo(IdentityForm{
		DisplayName:  "Pat",
		EmailAddress: "pat@example.com",
		Password:     "hunter2",
	}))
}

func toServices(t *testing.T, s *Session) {
	t.Helper()
	toManual(t, s)
	require.NoError(t, s.VerifyAndSync(context.Background(), s.Step().(StepManual).Settings))
	require.IsType(t, StepServices{}, s.Step())
}
