package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowyn/flowyn-core/internal/models"
)

func testEmail(id, accountID, folderID, subject, sender string, date time.Time, read bool) *models.Email {
	return &models.Email{
		ID:        id,
		ThreadID:  "th-" + id,
		AccountID: accountID,
		From:      models.EmailParty{Name: sender, EmailAddress: sender + "@example.com"},
		Subject:   subject,
		Date:      date,
		IsRead:    read,
		FolderID:  folderID,
	}
}

func TestFilter_FolderAndOrder(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "First", "Ana", t0, false),
		testEmail("2", "acc-1", "inbox", "Second", "Bob", t1, true),
	}

	result := Filter(emails, Query{FolderID: "inbox"})

	require.Len(t, result, 2)
	assert.Equal(t, "2", result[0].ID)
	assert.Equal(t, "1", result[1].ID)

	counts := UnreadCounts(emails)
	assert.Equal(t, 1, counts["inbox"])
}

func TestFilter_NeverLeaksOtherFolders(t *testing.T) {
	now := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "a", "x", now, false),
		testEmail("2", "acc-1", "archive", "b", "x", now, false),
		testEmail("3", "acc-2", "trash", "c", "x", now, false),
	}

	result := Filter(emails, Query{FolderID: "inbox"})

	require.Len(t, result, 1)
	for _, e := range result {
		assert.Equal(t, "inbox", e.FolderID)
	}
}

func TestFilter_AccountScoping(t *testing.T) {
	now := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "a", "x", now, false),
		testEmail("2", "acc-2", "inbox", "b", "x", now, false),
	}

	// unified inbox when no account is selected
	assert.Len(t, Filter(emails, Query{FolderID: "inbox"}), 2)

	scoped := Filter(emails, Query{AccountID: "acc-2", FolderID: "inbox"})
	require.Len(t, scoped, 1)
	assert.Equal(t, "2", scoped[0].ID)
}

func TestFilter_SearchSubjectAndSender(t *testing.T) {
	now := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "Quarterly Report", "Ana", now, false),
		testEmail("2", "acc-1", "inbox", "Lunch", "Roberta", now, false),
		testEmail("3", "acc-1", "inbox", "Security alert", "Ops", now, false),
	}

	result := Filter(emails, Query{FolderID: "inbox", Search: "RePort"})
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)

	// sender display name matches too
	result = Filter(emails, Query{FolderID: "inbox", Search: "roberta"})
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
}

func TestFilter_SearchBodyOptIn(t *testing.T) {
	now := time.Now()
	e := testEmail("1", "acc-1", "inbox", "Hello", "Ana", now, false)
	e.Body = "the invoice is attached"
	emails := []*models.Email{e}

	assert.Empty(t, Filter(emails, Query{FolderID: "inbox", Search: "invoice"}))

	withBody := Query{
		FolderID: "inbox",
		Search:   "invoice",
		Fields:   SearchFields{Subject: true, Sender: true, Body: true},
	}
	assert.Len(t, Filter(emails, withBody), 1)
}

func TestFilter_StableSortOnEqualTimestamps(t *testing.T) {
	now := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "a", "x", now, false),
		testEmail("2", "acc-1", "inbox", "b", "x", now, false),
		testEmail("3", "acc-1", "inbox", "c", "x", now, false),
	}

	result := Filter(emails, Query{FolderID: "inbox"})

	require.Len(t, result, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{result[0].ID, result[1].ID, result[2].ID})
}

func TestFilter_SortedNonIncreasing(t *testing.T) {
	base := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "a", "x", base.Add(-3*time.Hour), false),
		testEmail("2", "acc-1", "inbox", "b", "x", base, false),
		testEmail("3", "acc-1", "inbox", "c", "x", base.Add(-1*time.Hour), false),
		testEmail("4", "acc-1", "inbox", "d", "x", base.Add(-2*time.Hour), false),
	}

	result := Filter(emails, Query{FolderID: "inbox"})

	for i := 1; i < len(result); i++ {
		assert.False(t, result[i].Date.After(result[i-1].Date))
	}
}

func TestUnreadCounts_ZeroFoldersOmitted(t *testing.T) {
	now := time.Now()
	emails := []*models.Email{
		testEmail("1", "acc-1", "inbox", "a", "x", now, false),
		testEmail("2", "acc-1", "sent", "b", "x", now, true),
	}

	counts := UnreadCounts(emails)

	assert.Equal(t, 1, counts["inbox"])
	_, ok := counts["sent"]
	assert.False(t, ok)
}
