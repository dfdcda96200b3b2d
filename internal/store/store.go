// Package store owns the in-process mail state: accounts, messages, folders,
// theme and the current selection. All mutation goes through the methods
// below, which apply the pure transforms from internal/mailbox and round-trip
// the whole affected collection to the snapshot store afterwards.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/flowyn/flowyn-core/internal/enum"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/mailbox"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/interfaces"
)

type MailStore struct {
	mu        sync.RWMutex
	log       logger.Logger
	snapshots interfaces.SnapshotRepository

	accounts []*models.Account
	emails   []*models.Email
	folders  []*models.Folder
	theme    enum.Theme

	openEmailID string
	selection   map[string]struct{}
}

func NewMailStore(snapshots interfaces.SnapshotRepository, log logger.Logger) *MailStore {
	return &MailStore{
		log:       log,
		snapshots: snapshots,
		selection: make(map[string]struct{}),
		theme:     enum.ThemeDark,
	}
}

// Load restores the persisted collections, falling back to the built-in seed
// data for any key with no stored snapshot yet.
func (s *MailStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.snapshots.Get(ctx, models.SnapshotKeyEmails)
	if err != nil {
		return errors.Wrap(err, "load emails snapshot")
	}
	if raw == nil {
		s.emails = SeedEmails()
	} else if err := json.Unmarshal(raw, &s.emails); err != nil {
		s.log.Errorf("Corrupt emails snapshot, falling back to seed: %v", err)
		s.emails = SeedEmails()
	}

	raw, err = s.snapshots.Get(ctx, models.SnapshotKeyFolders)
	if err != nil {
		return errors.Wrap(err, "load folders snapshot")
	}
	if raw == nil {
		s.folders = SeedFolders()
	} else if err := json.Unmarshal(raw, &s.folders); err != nil {
		s.log.Errorf("Corrupt folders snapshot, falling back to seed: %v", err)
		s.folders = SeedFolders()
	}

	raw, err = s.snapshots.Get(ctx, models.SnapshotKeyTheme)
	if err != nil {
		return errors.Wrap(err, "load theme snapshot")
	}
	if raw != nil {
		var theme enum.Theme
		if err := json.Unmarshal(raw, &theme); err == nil && (theme == enum.ThemeDark || theme == enum.ThemeLight) {
			s.theme = theme
		}
	}

	return nil
}

// SetAccounts replaces the cached account collection, normally right after
// the account service was listed at startup.
func (s *MailStore) SetAccounts(accounts []*models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
}

func (s *MailStore) Accounts() []*models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

func (s *MailStore) AccountByID(id string) *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AddAccount appends a freshly linked account.
func (s *MailStore) AddAccount(account *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, account)
}

func (s *MailStore) RemoveAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.ID != id {
			accounts = append(accounts, a)
		}
	}
	s.accounts = accounts
}

func (s *MailStore) SetAccountStatus(id string, status enum.ConnectionStatus, errorMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			a.Status = status
			a.ErrorMessage = errorMessage
			if status == enum.StatusConnected {
				now := time.Now()
				a.LastSynced = &now
			}
			return
		}
	}
}

func (s *MailStore) Emails() []*models.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Email, len(s.emails))
	copy(out, s.emails)
	return out
}

func (s *MailStore) EmailByID(id string) *models.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.emails {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *MailStore) EmailsByThread(threadID string) []*models.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Email, 0, 4)
	for _, e := range s.emails {
		if e.ThreadID == threadID {
			out = append(out, e)
		}
	}
	return out
}

func (s *MailStore) Folders() []*models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

func (s *MailStore) FolderExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

func (s *MailStore) Theme() enum.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *MailStore) SetTheme(ctx context.Context, theme enum.Theme) error {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return s.persist(ctx, models.SnapshotKeyTheme, theme)
}

// Visible derives the filtered, sorted message list for the current inputs.
func (s *MailStore) Visible(q mailbox.Query) []*models.Email {
	return mailbox.Filter(s.Emails(), q)
}

func (s *MailStore) UnreadCounts() map[string]int {
	return mailbox.UnreadCounts(s.Emails())
}

// OpenEmail marks the message as the one open in the thread view.
func (s *MailStore) OpenEmail(id string) *models.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.emails {
		if e.ID == id {
			s.openEmailID = id
			return e
		}
	}
	return nil
}

func (s *MailStore) OpenEmailID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openEmailID
}

func (s *MailStore) CloseEmail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openEmailID = ""
}

// ToggleSelect flips membership of id in the multi-select set.
func (s *MailStore) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
	} else {
		s.selection[id] = struct{}{}
	}
}

// SelectMany replaces the multi-select set, used by the batch endpoints.
func (s *MailStore) SelectMany(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.selection[id] = struct{}{}
	}
}

func (s *MailStore) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

func (s *MailStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// ApplyAction runs one single-message action. Archiving or deleting the open
// message clears the open selection; acting on any other message leaves it.
func (s *MailStore) ApplyAction(ctx context.Context, id string, action mailbox.Action) error {
	s.mu.Lock()
	s.emails = mailbox.Apply(s.emails, id, action)
	if action.MovesMessage() && s.openEmailID == id {
		s.openEmailID = ""
	}
	emails := s.emails
	s.mu.Unlock()

	return s.persist(ctx, models.SnapshotKeyEmails, emails)
}

// ApplyBatchAction runs the action over the multi-select set and clears it.
func (s *MailStore) ApplyBatchAction(ctx context.Context, action mailbox.Action) error {
	s.mu.Lock()
	s.emails = mailbox.ApplyBatch(s.emails, s.selection, action)
	if action.MovesMessage() {
		if _, open := s.selection[s.openEmailID]; open {
			s.openEmailID = ""
		}
	}
	s.selection = make(map[string]struct{})
	emails := s.emails
	s.mu.Unlock()

	return s.persist(ctx, models.SnapshotKeyEmails, emails)
}

// MergeSyncBatch folds a sync batch into the collection and reports how many
// records were actually new.
func (s *MailStore) MergeSyncBatch(ctx context.Context, incoming []*models.Email) (int, error) {
	s.mu.Lock()
	before := len(s.emails)
	s.emails = mailbox.MergeBatch(s.emails, incoming)
	merged := len(s.emails) - before
	emails := s.emails
	s.mu.Unlock()

	if err := s.persist(ctx, models.SnapshotKeyEmails, emails); err != nil {
		return merged, err
	}
	return merged, nil
}

// AppendEmail prepends an outgoing message, the composer send path.
func (s *MailStore) AppendEmail(ctx context.Context, email *models.Email) error {
	s.mu.Lock()
	s.emails = append([]*models.Email{email}, s.emails...)
	emails := s.emails
	s.mu.Unlock()

	return s.persist(ctx, models.SnapshotKeyEmails, emails)
}

func (s *MailStore) persist(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal snapshot %s", key)
	}
	if err := s.snapshots.Put(ctx, key, raw); err != nil {
		s.log.Errorf("Failed to persist snapshot %s: %v", key, err)
		return err
	}
	return nil
}
