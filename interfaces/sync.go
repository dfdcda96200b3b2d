package interfaces

import (
	"context"

	"github.com/flowyn/flowyn-core/dto"
)

type SyncService interface {
	// SyncAll fetches new mail for every linked account in parallel, waits
	// for all fetches to settle and merges the batches in account order.
	SyncAll(ctx context.Context) (*dto.SyncReport, error)
	IsSyncing() bool
}
