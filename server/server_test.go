package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowyn/flowyn-core/config"
	"github.com/flowyn/flowyn-core/interfaces"
	internalconfig "github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/services"
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

type stubAccounts struct {
	accounts []*models.Account
	listErr  error
}

func (s *stubAccounts) ListAccounts(_ context.Context) ([]*models.Account, error) {
	return s.accounts, s.listErr
}

func (s *stubAccounts) CreateAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	return account, nil
}

func (s *stubAccounts) UpdateAccount(_ context.Context, _ string, _ interfaces.AccountUpdate) (*models.Account, error) {
	return nil, nil
}

func (s *stubAccounts) DeleteAccount(_ context.Context, _ string) error { return nil }

func testServer(t *testing.T, accounts *stubAccounts) (*Server, *store.MailStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	mailStore := store.NewMailStore(&memSnapshots{data: map[string]json.RawMessage{}}, log)

	return &Server{
		config: &config.Config{
			AppConfig: &internalconfig.AppConfig{APIKey: "test-key"},
		},
		router: gin.New(),
		services: &services.Services{
			Log:            log,
			MailStore:      mailStore,
			AccountService: accounts,
		},
	}, mailStore
}

func TestInitialize_SeedsAccountsOnEmptyListing(t *testing.T) {
	srv, mailStore := testServer(t, &stubAccounts{})

	require.NoError(t, srv.Initialize(context.Background()))

	accounts := mailStore.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)

	// the seeded welcome mail must belong to a known account
	for _, email := range mailStore.Emails() {
		assert.NotNil(t, mailStore.AccountByID(email.AccountID))
	}
}

func TestInitialize_SeedsAccountsOnListingFailure(t *testing.T) {
	srv, mailStore := testServer(t, &stubAccounts{listErr: errors.New("accounts unavailable")})

	require.NoError(t, srv.Initialize(context.Background()))

	accounts := mailStore.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)
}

func TestInitialize_KeepsListedAccounts(t *testing.T) {
	linked := &models.Account{ID: "acc-42", EmailAddress: "pat@flowyn.io"}
	srv, mailStore := testServer(t, &stubAccounts{accounts: []*models.Account{linked}})

	require.NoError(t, srv.Initialize(context.Background()))

	accounts := mailStore.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-42", accounts[0].ID)
}
