package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"riichi/internal/domain"
	"riichi/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	sessionCollection = "sessions"
	sessionKey        = "current_v1"
)

// NakamaSessionStoreAdapter implements ports.SessionStorePort using Nakama storage.
type NakamaSessionStoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaSessionStoreAdapter creates a new session store adapter.
func NewNakamaSessionStoreAdapter(nk runtime.NakamaModule) *NakamaSessionStoreAdapter {
	return &NakamaSessionStoreAdapter{nk: nk}
}

// Save writes the snapshot under the owner's storage, replacing any previous one.
func (a *NakamaSessionStoreAdapter) Save(ctx context.Context, ownerID string, snap domain.Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      sessionCollection,
			Key:             sessionKey,
			UserID:          ownerID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write session snapshot: %w", err)
	}
	return nil
}

// Load reads the owner's stored snapshot. found is false when none exists.
func (a *NakamaSessionStoreAdapter) Load(ctx context.Context, ownerID string) (domain.Snapshot, bool, error) {
	reads := []*runtime.StorageRead{
		{
			Collection: sessionCollection,
			Key:        sessionKey,
			UserID:     ownerID,
		},
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	if len(objects) == 0 {
		return domain.Snapshot{}, false, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(objects[0].Value), &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return snap, true, nil
}

var _ ports.SessionStorePort = (*NakamaSessionStoreAdapter)(nil)
