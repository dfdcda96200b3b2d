package mailbox

import (
	"github.com/flowyn/flowyn-core/internal/models"
)

// Action is a single-field message mutation.
type Action string

const (
	ActionStar    Action = "star"
	ActionRead    Action = "read"
	ActionUnread  Action = "unread"
	ActionArchive Action = "archive"
	ActionDelete  Action = "delete"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionStar, ActionRead, ActionUnread, ActionArchive, ActionDelete:
		return true
	}
	return false
}

// MovesMessage reports whether the action changes the folder, which is what
// forces the open selection to be cleared.
func (a Action) MovesMessage() bool {
	return a == ActionArchive || a == ActionDelete
}

func applyToEmail(e *models.Email, action Action) *models.Email {
	out := e.Clone()
	switch action {
	case ActionStar:
		out.IsStarred = !out.IsStarred
	case ActionRead:
		out.IsRead = true
	case ActionUnread:
		out.IsRead = false
	case ActionArchive:
		out.FolderID = models.FolderIDArchive
	case ActionDelete:
		out.FolderID = models.FolderIDTrash
	}
	return out
}

// Apply maps the action over the collection, replacing only the record with
// the given id. Every other record, and every other field of the matching
// record, is left untouched.
func Apply(emails []*models.Email, id string, action Action) []*models.Email {
	result := make([]*models.Email, len(emails))
	for i, e := range emails {
		if e.ID != id {
			result[i] = e
			continue
		}
		result[i] = applyToEmail(e, action)
	}
	return result
}

// ApplyBatch applies the same transform to every record whose id is in the
// selection set.
func ApplyBatch(emails []*models.Email, ids map[string]struct{}, action Action) []*models.Email {
	result := make([]*models.Email, len(emails))
	for i, e := range emails {
		if _, selected := ids[e.ID]; !selected {
			result[i] = e
			continue
		}
		result[i] = applyToEmail(e, action)
	}
	return result
}
