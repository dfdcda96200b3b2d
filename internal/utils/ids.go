package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateNanoIDWithPrefix returns ids like "acc-x8k2m1...", the format used
// for every record identity in the system.
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s-%s", prefix, id)
}

func GenerateAccountID() string {
	return GenerateNanoIDWithPrefix("acc", 9)
}

func GenerateMessageID() string {
	return GenerateNanoIDWithPrefix("msg", 12)
}

// GenerateThreadID starts a brand new conversation id for outgoing mail.
func GenerateThreadID() string {
	return "th-" + uuid.NewString()
}

// NormalizeEmailAddress lower-cases and trims an address. The normalized form
// is the uniqueness key for linked accounts.
func NormalizeEmailAddress(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LocalPart returns the part of an address before the @, used as the default
// display name when none was entered.
func LocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// MailDomain returns the part of an address after the @, used to pre-fill
// conventional imap/smtp host names.
func MailDomain(email string) string {
	if at := strings.Index(email, "@"); at >= 0 && at < len(email)-1 {
		return email[at+1:]
	}
	return email
}
