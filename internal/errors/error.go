package errors

import "github.com/pkg/errors"

var (
	// account errors
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidEmail    = errors.New("email address is not valid")

	// mailbox errors
	ErrEmailNotFound  = errors.New("email not found")
	ErrFolderNotFound = errors.New("folder not found")

	// sync errors
	ErrSyncInProgress = errors.New("sync already in progress")

	// wizard errors
	ErrInvalidTransition      = errors.New("invalid wizard transition")
	ErrVerificationInProgress = errors.New("verification in progress")
)
