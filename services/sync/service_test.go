package sync

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
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
)

type memSnapshots struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func (m *memSnapshots) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memSnapshots) Put(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type stubAI struct {
	mu      sync.Mutex
	batches map[string][]*models.Email
	errs    map[string]error
	block   chan struct{}
}

func (s *stubAI) GenerateMailbox(_ context.Context, request dto.GenerateMailboxRequest) ([]*models.Email, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[request.AccountID]; err != nil {
		return nil, err
	}
	return s.batches[request.AccountID], nil
}

func (s *stubAI) SummarizeThread(_ context.Context, _ dto.SummarizeThreadRequest) string { return "" }
func (s *stubAI) GenerateDraft(_ context.Context, _ dto.GenerateDraftRequest) string    { return "" }
func (s *stubAI) TriageEmail(_ context.Context, _ *models.Email) *dto.TriageResult {
	return dto.DefaultTriageResult()
}
func (s *stubAI) ClassifyEmails(_ context.Context, _ []*models.Email) map[string]string { return nil }
func (s *stubAI) ValidateServerSettings(_ context.Context, _ dto.ServerSettings) *dto.ServerValidationReport {
	return nil
}

type stubAccounts struct {
	mu       sync.Mutex
	statuses map[string][]string
}

func (s *stubAccounts) ListAccounts(_ context.Context) ([]*models.Account, error) { return nil, nil }
func (s *stubAccounts) CreateAccount(_ context.Context, a *models.Account) (*models.Account, error) {
	return a, nil
}

func (s *stubAccounts) UpdateAccount(_ context.Context, id string, update interfaces.AccountUpdate) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses == nil {
		s.statuses = map[string][]string{}
	}
	if update.Status != nil {
		s.statuses[id] = append(s.statuses[id], *update.Status)
	}
	return nil, nil
}

func (s *stubAccounts) DeleteAccount(_ context.Context, _ string) error { return nil }

type stubEvents struct {
	mu     sync.Mutex
	synced []dto.MailboxSynced
}

func (s *stubEvents) PublishAccountLinked(_ context.Context, _ *models.Account) {}

func (s *stubEvents) PublishMailboxSynced(_ context.Context, event dto.MailboxSynced) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced = append(s.synced, event)
}

func (s *stubEvents) Close() error { return nil }

func testStore(t *testing.T, accounts ...*models.Account) *store.MailStore {
	t.Helper()
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	mailStore := store.NewMailStore(&memSnapshots{data: map[string]json.RawMessage{}}, log)
	require.NoError(t, mailStore.Load(context.Background()))
	mailStore.SetAccounts(accounts)
	return mailStore
}

func testLogger() logger.Logger {
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	return log
}

func mail(id, accountID string) *models.Email {
	return &models.Email{
		ID:        id,
		AccountID: accountID,
		FolderID:  models.FolderIDInbox,
		Date:      time.Now(),
	}
}

func TestSyncAll_MergesEveryAccount(t *testing.T) {
	mailStore := testStore(t,
		&models.Account{ID: "acc-1", EmailAddress: "a@example.com"},
		&models.Account{ID: "acc-2", EmailAddress: "b@example.com"},
	)
	ai := &stubAI{batches: map[string][]*models.Email{
		"acc-1": {mail("m-1", "acc-1"), mail("m-2", "acc-1")},
		"acc-2": {mail("m-3", "acc-2")},
	}}
	accounts := &stubAccounts{}
	events := &stubEvents{}
	svc := NewSyncService(testLogger(), ai, accounts, events, mailStore, 10)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Accounts)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Merged)
	assert.Empty(t, report.Errors)
	assert.Len(t, mailStore.Emails(), 4, "seed message plus the three fetched")

	// every account passed through SYNCING before settling on CONNECTED
	assert.Equal(t, []string{"SYNCING", "CONNECTED"}, accounts.statuses["acc-1"])
	assert.Equal(t, []string{"SYNCING", "CONNECTED"}, accounts.statuses["acc-2"])

	require.Len(t, events.synced, 1)
	assert.Equal(t, 3, events.synced[0].Merged)
}

func TestSyncAll_Rerun_IsIdempotent(t *testing.T) {
	mailStore := testStore(t, &models.Account{ID: "acc-1", EmailAddress: "a@example.com"})
	ai := &stubAI{batches: map[string][]*models.Email{
		"acc-1": {mail("m-1", "acc-1")},
	}}
	svc := NewSyncService(testLogger(), ai, &stubAccounts{}, nil, mailStore, 10)
	ctx := context.Background()

	first, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Merged)

	second, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Fetched)
	assert.Zero(t, second.Merged, "already-merged ids are discarded")
}

func TestSyncAll_PartialFailureDoesNotAbort(t *testing.T) {
	mailStore := testStore(t,
		&models.Account{ID: "acc-1", EmailAddress: "a@example.com"},
		&models.Account{ID: "acc-2", EmailAddress: "b@example.com"},
	)
	ai := &stubAI{
		batches: map[string][]*models.Email{"acc-2": {mail("m-3", "acc-2")}},
		errs:    map[string]error{"acc-1": errors.New("model overloaded")},
	}
	accounts := &stubAccounts{}
	svc := NewSyncService(testLogger(), ai, accounts, nil, mailStore, 10)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Merged)
	assert.Equal(t, "model overloaded", report.Errors["acc-1"])

	assert.Equal(t, enum.StatusError, mailStore.AccountByID("acc-1").Status)
	assert.Equal(t, "model overloaded", mailStore.AccountByID("acc-1").ErrorMessage)
	assert.Equal(t, enum.StatusConnected, mailStore.AccountByID("acc-2").Status)
}

func TestSyncAll_SingleInflight(t *testing.T) {
	mailStore := testStore(t, &models.Account{ID: "acc-1", EmailAddress: "a@example.com"})
	ai := &stubAI{block: make(chan struct{})}
	svc := NewSyncService(testLogger(), ai, &stubAccounts{}, nil, mailStore, 10)

	done := make(chan struct{})
	go func() {
		_, _ = svc.SyncAll(context.Background())
		close(done)
	}()

	require.Eventually(t, svc.IsSyncing, time.Second, 5*time.Millisecond)

	_, err := svc.SyncAll(context.Background())
	assert.ErrorIs(t, err, flowynerrors.ErrSyncInProgress)

	close(ai.block)
	<-done
	assert.False(t, svc.IsSyncing())
}

func TestSyncAll_NoAccounts(t *testing.T) {
	mailStore := testStore(t)
	svc := NewSyncService(testLogger(), &stubAI{}, &stubAccounts{}, &stubEvents{}, mailStore, 10)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Accounts)
}
