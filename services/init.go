package services

import (
	"time"

	"github.com/flowyn/flowyn-core/config"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/repository"
	"github.com/flowyn/flowyn-core/internal/store"
	"github.com/flowyn/flowyn-core/internal/wizard"
	"github.com/flowyn/flowyn-core/services/accounts"
	"github.com/flowyn/flowyn-core/services/ai"
	"github.com/flowyn/flowyn-core/services/events"
	syncsvc "github.com/flowyn/flowyn-core/services/sync"
)

type Services struct {
	Log             logger.Logger
	MailStore       *store.MailStore
	AIService       interfaces.AIService
	AccountService  interfaces.AccountService
	SyncService     interfaces.SyncService
	EventsPublisher interfaces.EventsPublisher
	WizardConfig    wizard.Config
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	var publisher interfaces.EventsPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	} else {
		log.Warn("RABBITMQ_URL not set, domain events will not be published")
		publisher = events.NewNoopPublisher()
	}

	mailStore := store.NewMailStore(repos.SnapshotRepository, log)
	aiService := ai.NewAIService(cfg.AIConfig, log)
	accountService := accounts.NewAccountService(cfg.AccountsConfig, log, repos.AccountRepository)
	syncService := syncsvc.NewSyncService(log, aiService, accountService, publisher, mailStore, cfg.AIConfig.MailboxSeedCount)

	return &Services{
		Log:             log,
		MailStore:       mailStore,
		AIService:       aiService,
		AccountService:  accountService,
		SyncService:     syncService,
		EventsPublisher: publisher,
		WizardConfig: wizard.Config{
			StepDelay:        500 * time.Millisecond,
			ExchangeDelay:    700 * time.Millisecond,
			MailboxSeedCount: cfg.AIConfig.MailboxSeedCount,
		},
	}, nil
}
