// Package mailbox holds the pure transforms behind the message list: the
// filter/sort pipeline, unread aggregation, the idempotent sync merge and the
// flag/folder actions. Everything here is a pure function over the message
// collection; the store owns mutation and persistence.
package mailbox

import (
	"sort"
	"strings"

	"github.com/flowyn/flowyn-core/internal/models"
)

// SearchFields selects which message fields the search query matches.
// Subject and sender are the default; body matching is opt-in.
type SearchFields struct {
	Subject bool
	Sender  bool
	Body    bool
}

func DefaultSearchFields() SearchFields {
	return SearchFields{Subject: true, Sender: true}
}

// Query are the inputs of the visible-list derivation. An empty AccountID
// means the unified inbox.
type Query struct {
	AccountID string
	FolderID  string
	Search    string
	Fields    SearchFields
}

// Filter derives the visible message list: account match, exact folder
// match, case-insensitive substring search, newest first. The sort is
// stable so equal timestamps keep their relative order.
func Filter(emails []*models.Email, q Query) []*models.Email {
	fields := q.Fields
	if !fields.Subject && !fields.Sender && !fields.Body {
		fields = DefaultSearchFields()
	}
	needle := strings.ToLower(q.Search)

	result := make([]*models.Email, 0, len(emails))
	for _, e := range emails {
		if q.AccountID != "" && e.AccountID != q.AccountID {
			continue
		}
		if e.FolderID != q.FolderID {
			continue
		}
		if needle != "" && !matchesSearch(e, needle, fields) {
			continue
		}
		result = append(result, e)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	return result
}

func matchesSearch(e *models.Email, needle string, fields SearchFields) bool {
	if fields.Subject && strings.Contains(strings.ToLower(e.Subject), needle) {
		return true
	}
	if fields.Sender && strings.Contains(strings.ToLower(e.From.Name), needle) {
		return true
	}
	if fields.Body && strings.Contains(strings.ToLower(e.Body), needle) {
		return true
	}
	return false
}

// UnreadCounts aggregates unread messages per folder id. Folders with no
// unread messages have no entry, so they render without a badge.
func UnreadCounts(emails []*models.Email) map[string]int {
	counts := make(map[string]int)
	for _, e := range emails {
		if !e.IsRead {
			counts[e.FolderID]++
		}
	}
	return counts
}
