// Package sync refreshes every linked mailbox against the generative backend.
// Fetches run in parallel, one per account, but the merge into the store
// happens in account order so a sync pass always lands the same way.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/enum"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/internal/tracing"
)

type syncService struct {
	log      logger.Logger
	ai       interfaces.AIService
	accounts interfaces.AccountService
	events   interfaces.EventsPublisher
	store    *store.MailStore

	batchSize int
	inflight  sync.Mutex
	syncing   bool
}

func NewSyncService(log logger.Logger, ai interfaces.AIService, accounts interfaces.AccountService, events interfaces.EventsPublisher, mailStore *store.MailStore, batchSize int) interfaces.SyncService {
	return &syncService{
		log:       log,
		ai:        ai,
		accounts:  accounts,
		events:    events,
		store:     mailStore,
		batchSize: batchSize,
	}
}

func (s *syncService) IsSyncing() bool {
	s.inflight.Lock()
	defer s.inflight.Unlock()
	return s.syncing
}

func (s *syncService) SyncAll(ctx context.Context) (*dto.SyncReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "syncService.SyncAll")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	s.inflight.Lock()
	if s.syncing {
		s.inflight.Unlock()
		return nil, flowynerrors.ErrSyncInProgress
	}
	s.syncing = true
	s.inflight.Unlock()
	defer func() {
		s.inflight.Lock()
		s.syncing = false
		s.inflight.Unlock()
	}()

	startedAt := time.Now()
	accounts := s.store.Accounts()
	report := &dto.SyncReport{
		Accounts: len(accounts),
		Errors:   map[string]string{},
	}
	if len(accounts) == 0 {
		return report, nil
	}

	for _, account := range accounts {
		s.markStatus(ctx, account.ID, enum.StatusSyncing, "")
	}

	batches := make([][]*models.Email, len(accounts))
	fetchErrs := make([]error, len(accounts))

	g, fetchCtx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			emails, err := s.ai.GenerateMailbox(fetchCtx, dto.GenerateMailboxRequest{
				AccountID:    account.ID,
				EmailAddress: account.EmailAddress,
				Provider:     account.Provider,
				Count:        s.batchSize,
			})
			if err != nil {
				// recorded per account so one bad fetch does not abort the pass
				fetchErrs[i] = err
				return nil
			}
			batches[i] = emails
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	for i, account := range accounts {
		if fetchErrs[i] != nil {
			s.log.Errorf("Sync fetch failed for %s: %v", account.ID, fetchErrs[i])
			report.Errors[account.ID] = fetchErrs[i].Error()
			s.markStatus(ctx, account.ID, enum.StatusError, fetchErrs[i].Error())
			continue
		}

		merged, err := s.store.MergeSyncBatch(ctx, batches[i])
		if err != nil {
			tracing.TraceErr(span, err)
			report.Errors[account.ID] = err.Error()
			s.markStatus(ctx, account.ID, enum.StatusError, err.Error())
			continue
		}
		report.Fetched += len(batches[i])
		report.Merged += merged
		s.markStatus(ctx, account.ID, enum.StatusConnected, "")
	}

	span.SetTag("accounts", report.Accounts)
	span.SetTag("fetched", report.Fetched)
	span.SetTag("merged", report.Merged)

	if s.events != nil {
		s.events.PublishMailboxSynced(ctx, dto.MailboxSynced{
			Accounts:  report.Accounts,
			Fetched:   report.Fetched,
			Merged:    report.Merged,
			StartedAt: startedAt,
		})
	}
	return report, nil
}

func (s *syncService) markStatus(ctx context.Context, accountID string, status enum.ConnectionStatus, message string) {
	s.store.SetAccountStatus(accountID, status, message)

	statusValue := string(status)
	if _, err := s.accounts.UpdateAccount(ctx, accountID, interfaces.AccountUpdate{
		Status:       &statusValue,
		ErrorMessage: &message,
	}); err != nil {
		s.log.Warnf("Failed to persist status %s for %s: %v", status, accountID, err)
	}
}
