package mailbox

import (
	"github.com/flowyn/flowyn-core/internal/models"
)

// MergeBatch unions an incoming sync batch into the existing collection,
// keyed by message id. Records whose id already exists are discarded; the
// surviving records are prepended in their incoming order. Re-applying the
// same batch is a no-op.
func MergeBatch(existing, incoming []*models.Email) []*models.Email {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[e.ID] = struct{}{}
	}

	fresh := make([]*models.Email, 0, len(incoming))
	for _, e := range incoming {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}

	if len(fresh) == 0 {
		return existing
	}

	merged := make([]*models.Email, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	return merged
}
