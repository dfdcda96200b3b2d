package store

import (
	"time"

	"github.com/flowyn/flowyn-core/internal/enum"
	"github.com/flowyn/flowyn-core/internal/models"
)

// SeedAccounts is the starter account used when the account service has
// nothing linked yet.
func SeedAccounts() []*models.Account {
	return []*models.Account{
		{
			ID:           "acc-1",
			EmailAddress: "alex@flowyn.io",
			DisplayName:  "Alex Rivera",
			Provider:     enum.ProviderGmail,
			Protocol:     enum.ProtocolOAuth,
			Color:        "#ef4444",
			Avatar:       "https://picsum.photos/seed/alex/40/40",
			Status:       enum.StatusConnected,
			LinkedServices: []string{
				models.ServiceCalendar,
				models.ServiceContacts,
			},
		},
	}
}

func SeedFolders() []*models.Folder {
	return []*models.Folder{
		{ID: models.FolderIDInbox, Name: "Inbox", Kind: enum.FolderInbox},
		{ID: models.FolderIDSent, Name: "Sent", Kind: enum.FolderSent},
		{ID: models.FolderIDDrafts, Name: "Drafts", Kind: enum.FolderDrafts},
		{ID: models.FolderIDArchive, Name: "Archive", Kind: enum.FolderArchive},
		{ID: models.FolderIDTrash, Name: "Trash", Kind: enum.FolderTrash},
	}
}

// SeedEmails returns the welcome message every fresh installation starts with.
func SeedEmails() []*models.Email {
	return []*models.Email{
		{
			ID:        "msg-1",
			ThreadID:  "th-1",
			AccountID: "acc-1",
			From: models.EmailParty{
				Name:         "Flowyn Team",
				EmailAddress: "welcome@flowyn.io",
				Avatar:       "https://picsum.photos/seed/flowyn/40/40",
			},
			To: []models.EmailParty{
				{Name: "Alex Rivera", EmailAddress: "alex@flowyn.io"},
			},
			Subject: "Welcome to Flowyn!",
			Snippet: "Welcome to the future of communication. Your inbox is now supercharged with AI.",
			Body: "Hey Alex,<br/><br/>Welcome to Flowyn! You've just taken the first step toward a more intelligent inbox." +
				"<br/><br/>Try using <b>Flowyn AI</b> to summarize your threads or draft replies. We're here to help you" +
				" reach Inbox Zero faster than ever before.<br/><br/>Best,<br/>The Flowyn Team",
			Date:        time.Now().UTC(),
			IsRead:      false,
			IsStarred:   true,
			IsPinned:    true,
			IsImportant: true,
			Labels:      []string{"Official"},
			Attachments: []models.AttachmentRef{},
			FolderID:    models.FolderIDInbox,
		},
	}
}
