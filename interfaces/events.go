package interfaces

import (
	"context"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/internal/models"
)

// EventsPublisher emits domain events to the message broker. Publish
// failures are logged, never propagated to the triggering action.
type EventsPublisher interface {
	PublishAccountLinked(ctx context.Context, account *models.Account)
	PublishMailboxSynced(ctx context.Context, event dto.MailboxSynced)
	Close() error
}
