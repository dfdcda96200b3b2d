package interfaces

import (
	"context"

	"github.com/flowyn/flowyn-core/internal/models"
)

// AccountService is the account-management collaborator. The bundled
// implementation simulates a remote service, latency included.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// AccountUpdate carries the mutable account fields; nil means unchanged.
type AccountUpdate struct {
	DisplayName    *string
	Status         *string
	ErrorMessage   *string
	LinkedServices []string
}
