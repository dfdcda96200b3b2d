package handlers

import (
	"github.com/flowyn/flowyn-core/services"
)

type APIHandlers struct {
	Accounts *AccountsHandler
	Emails   *EmailsHandler
	AI       *AIHandler
	Sync     *SyncHandler
	Wizard   *WizardHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Accounts: NewAccountsHandler(s),
		Emails:   NewEmailsHandler(s),
		AI:       NewAIHandler(s),
		Sync:     NewSyncHandler(s),
		Wizard:   NewWizardHandler(s),
	}
}
