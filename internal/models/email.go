package models

import (
	"time"
)

// EmailParty identifies one side of a message.
type EmailParty struct {
	Name         string `json:"name"`
	EmailAddress string `json:"email"`
	Avatar       string `json:"avatar,omitempty"`
}

// AttachmentRef is attachment metadata carried inside the message snapshot.
// Blob content is out of scope.
type AttachmentRef struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Email is a mail message record. The id is globally unique and is the merge
// key during sync; FolderID must reference an existing folder.
type Email struct {
	ID        string `json:"id"`
	ThreadID  string `json:"threadId"`
	AccountID string `json:"accountId"`

	From    EmailParty   `json:"from"`
	To      []EmailParty `json:"to"`
	Subject string       `json:"subject"`
	Snippet string       `json:"snippet"`
	Body    string       `json:"body"`
	Date    time.Time    `json:"date"`

	IsRead      bool `json:"isRead"`
	IsStarred   bool `json:"isStarred"`
	IsPinned    bool `json:"isPinned"`
	IsImportant bool `json:"isImportant"`

	Labels      []string        `json:"labels"`
	Attachments []AttachmentRef `json:"attachments"`
	FolderID    string          `json:"folderId"`
}

// Clone returns a shallow copy with its own flag fields, used by the pure
// mailbox transforms so callers never mutate shared records.
func (e *Email) Clone() *Email {
	clone := *e
	return &clone
}
