package enum

type FolderKind string

const (
	FolderInbox   FolderKind = "INBOX"
	FolderSent    FolderKind = "SENT"
	FolderDrafts  FolderKind = "DRAFTS"
	FolderArchive FolderKind = "ARCHIVE"
	FolderTrash   FolderKind = "TRASH"
	FolderJunk    FolderKind = "JUNK"
	FolderCustom  FolderKind = "CUSTOM"
)

func (t FolderKind) String() string {
	return string(t)
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) String() string {
	return string(t)
}
