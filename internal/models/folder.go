package models

import (
	"github.com/flowyn/flowyn-core/internal/enum"
)

// Folder is a named bucket partitioning messages. The unread count is never
// stored here; it is recomputed from the message set.
type Folder struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Kind enum.FolderKind `json:"type"`
}

// Well-known folder ids used by the mailbox actions.
const (
	FolderIDInbox   = "inbox"
	FolderIDSent    = "sent"
	FolderIDDrafts  = "drafts"
	FolderIDArchive = "archive"
	FolderIDTrash   = "trash"
)
