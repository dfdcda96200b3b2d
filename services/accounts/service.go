// Package accounts implements the account-management collaborator. It stands
// in for a remote provisioning service: calls pay a configurable simulated
// latency and duplicate links are rejected the way the remote would reject
// them, but records land in the local accounts table.
package accounts

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"

	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/internal/utils"
)

// accountColors is the palette new accounts are tagged from, keyed off the
// address so repeated links of the same mailbox get a stable color.
var accountColors = []string{
	"#ef4444", "#f97316", "#eab308", "#22c55e",
	"#06b6d4", "#6366f1", "#a855f7", "#ec4899",
}

type accountService struct {
	cfg        *config.AccountsConfig
	log        logger.Logger
	repository interfaces.AccountRepository
}

func NewAccountService(cfg *config.AccountsConfig, log logger.Logger, repository interfaces.AccountRepository) interfaces.AccountService {
	return &accountService{
		cfg:        cfg,
		log:        log,
		repository: repository,
	}
}

func (s *accountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.ListAccounts")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return s.repository.List(ctx)
}

func (s *accountService) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.CreateAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	validation := mailvalidate.ValidateEmailSyntax(account.EmailAddress)
	if !validation.IsValid || validation.IsSystemGenerated {
		tracing.TraceErr(span, flowynerrors.ErrInvalidEmail)
		return nil, flowynerrors.ErrInvalidEmail
	}
	account.EmailAddress = validation.CleanEmail

	applyCreateDefaults(account)

	if err := s.repository.Create(ctx, account); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagAccount(span, account.ID)
	s.log.Infof("Linked account %s (%s)", account.ID, account.EmailAddress)
	return account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, id string, update interfaces.AccountUpdate) (*models.Account, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.UpdateAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, id)

	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	account, err := s.repository.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if account == nil {
		return nil, flowynerrors.ErrAccountNotFound
	}

	if update.DisplayName != nil {
		account.DisplayName = *update.DisplayName
	}
	if update.Status != nil {
		account.Status = enum.ConnectionStatus(*update.Status)
		if account.Status == enum.StatusConnected {
			now := time.Now()
			account.LastSynced = &now
		}
	}
	if update.ErrorMessage != nil {
		account.ErrorMessage = *update.ErrorMessage
	}
	if update.LinkedServices != nil {
		account.LinkedServices = utils.UniqueStrings(update.LinkedServices)
	}

	if err := s.repository.Update(ctx, account); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.DeleteAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, id)

	if err := s.simulateLatency(ctx); err != nil {
		return err
	}
	return s.repository.Delete(ctx, id)
}

func (s *accountService) simulateLatency(ctx context.Context) error {
	if s.cfg.LatencyMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(s.cfg.LatencyMs) * time.Millisecond):
		return nil
	}
}

func applyCreateDefaults(account *models.Account) {
	if account.DisplayName == "" {
		account.DisplayName = utils.LocalPart(account.EmailAddress)
	}
	if account.Color == "" {
		account.Color = colorFor(account.EmailAddress)
	}
	if account.Avatar == "" {
		account.Avatar = fmt.Sprintf("https://picsum.photos/seed/%s/40/40", utils.LocalPart(account.EmailAddress))
	}
	if account.Status == "" {
		account.Status = enum.StatusConnected
	}
	if account.Protocol == "" {
		account.Protocol = enum.ProtocolImap
	}
	if len(account.LinkedServices) == 0 {
		account.LinkedServices = []string{models.ServiceCalendar, models.ServiceContacts}
	}
}

func colorFor(email string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return accountColors[h.Sum32()%uint32(len(accountColors))]
}
