package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/utils"
)

type memAccountRepo struct {
	byID map[string]*models.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byID: map[string]*models.Account{}}
}

func (r *memAccountRepo) Create(_ context.Context, account *models.Account) error {
	for _, existing := range r.byID {
		if existing.EmailAddress == utils.NormalizeEmailAddress(account.EmailAddress) {
			return flowynerrors.ErrAccountExists
		}
	}
	if account.ID == "" {
		account.ID = utils.GenerateAccountID()
	}
	account.EmailAddress = utils.NormalizeEmailAddress(account.EmailAddress)
	r.byID[account.ID] = account
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	return r.byID[id], nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range r.byID {
		if a.EmailAddress == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) List(_ context.Context) ([]*models.Account, error) {
	out := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *memAccountRepo) Update(_ context.Context, account *models.Account) error {
	r.byID[account.ID] = account
	return nil
}

func (r *memAccountRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return flowynerrors.ErrAccountNotFound
	}
	delete(r.byID, id)
	return nil
}

func testService(repo interfaces.AccountRepository) interfaces.AccountService {
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	return NewAccountService(&config.AccountsConfig{LatencyMs: 0}, log, repo)
}

func TestCreateAccount_AppliesDefaults(t *testing.T) {
	svc := testService(newMemAccountRepo())

	created, err := svc.CreateAccount(context.Background(), &models.Account{
		EmailAddress: "Pat.Jones@Example.com",
		Provider:     enum.ProviderGmail,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pat.jones@example.com", created.EmailAddress)
	assert.Equal(t, "pat.jones", created.DisplayName)
	assert.NotEmpty(t, created.Color)
	assert.Contains(t, created.Avatar, "picsum.photos")
	assert.Equal(t, enum.StatusConnected, created.Status)
	assert.ElementsMatch(t, []string{models.ServiceCalendar, models.ServiceContacts}, []string(created.LinkedServices))
}

func TestCreateAccount_StableColorPerAddress(t *testing.T) {
	a := &models.Account{EmailAddress: "pat@example.com"}
	b := &models.Account{EmailAddress: "pat@example.com"}
	applyCreateDefaults(a)
	applyCreateDefaults(b)
	assert.Equal(t, a.Color, b.Color)
}

func TestCreateAccount_RejectsInvalidEmail(t *testing.T) {
	svc := testService(newMemAccountRepo())

	_, err := svc.CreateAccount(context.Background(), &models.Account{EmailAddress: "not-an-address"})
	assert.ErrorIs(t, err, flowynerrors.ErrInvalidEmail)
}

func TestCreateAccount_RejectsDuplicates(t *testing.T) {
	svc := testService(newMemAccountRepo())
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, &models.Account{EmailAddress: "pat@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, &models.Account{EmailAddress: "PAT@example.com"})
	assert.ErrorIs(t, err, flowynerrors.ErrAccountExists)
}

func TestUpdateAccount(t *testing.T) {
	repo := newMemAccountRepo()
	svc := testService(repo)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, &models.Account{EmailAddress: "pat@example.com"})
	require.NoError(t, err)

	status := string(enum.StatusError)
	message := "authentication expired"
	updated, err := svc.UpdateAccount(ctx, created.ID, interfaces.AccountUpdate{
		Status:         &status,
		ErrorMessage:   &message,
		LinkedServices: []string{models.ServiceChat, models.ServiceChat},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.StatusError, updated.Status)
	assert.Equal(t, "authentication expired", updated.ErrorMessage)
	assert.Equal(t, []string{models.ServiceChat}, []string(updated.LinkedServices))

	connected := string(enum.StatusConnected)
	updated, err = svc.UpdateAccount(ctx, created.ID, interfaces.AccountUpdate{Status: &connected})
	require.NoError(t, err)
	assert.NotNil(t, updated.LastSynced)
}

func TestUpdateAccount_NotFound(t *testing.T) {
	svc := testService(newMemAccountRepo())

	_, err := svc.UpdateAccount(context.Background(), "acc-missing", interfaces.AccountUpdate{})
	assert.ErrorIs(t, err, flowynerrors.ErrAccountNotFound)
}

func TestDeleteAccount(t *testing.T) {
	repo := newMemAccountRepo()
	svc := testService(repo)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, &models.Account{EmailAddress: "pat@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, created.ID), flowynerrors.ErrAccountNotFound)
}
