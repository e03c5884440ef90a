package ports

import (
	"context"

	"riichi/internal/domain"
)

// SessionStorePort persists the whole session as one versioned snapshot
// under a fixed key. Writes are best-effort: a failed write never rolls
// back a committed in-memory transition.
type SessionStorePort interface {
	// Save stores the snapshot for the owning user, replacing any previous one.
	Save(ctx context.Context, ownerID string, snap domain.Snapshot) error

	// Load returns the stored snapshot, or found=false when none exists.
	Load(ctx context.Context, ownerID string) (snap domain.Snapshot, found bool, err error)
}
