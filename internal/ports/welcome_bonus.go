package ports

import "context"

// WelcomeBonusPort stakes a new player's chip wallet at most once per user.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce attempts to credit the one-time starting stake.
	// Returns granted=false when the player was already staked.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
