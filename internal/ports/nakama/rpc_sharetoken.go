package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"riichi/internal/app"
	"riichi/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

var shareTokens *app.ShareTokenService

// initShareTokens builds the share token service from runtime env credentials.
func initShareTokens(ctx context.Context, logger runtime.Logger) {
	issuer := "test-issuer"
	secret := "test-secret"
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val := env["riichi_share_issuer"]; val != "" {
			issuer = val
		}
		if val := env["riichi_share_secret"]; val != "" {
			secret = val
		}
	}
	if issuer == "test-issuer" || secret == "test-secret" {
		logger.Warn("Share token credentials missing from env, using test defaults.")
	}
	shareTokens = app.NewShareTokenService(secret, issuer, 7*24*time.Hour)
}

// ShareTokenResponse carries a signed result-share token.
type ShareTokenResponse struct {
	Token string `json:"token"`
}

// SessionSummary is the shareable view of a stored session.
type SessionSummary struct {
	Phase        domain.Phase         `json:"phase"`
	Players      []*domain.Player     `json:"players"`
	RoundLabel   string               `json:"round_label"`
	Honba        int                  `json:"honba"`
	RiichiSticks int                  `json:"riichi_sticks"`
	RoundsPlayed int                  `json:"rounds_played"`
	History      []domain.RoundRecord `json:"history"`
}

// rpcCreateShareToken issues a token granting read access to the caller's
// stored session.
func rpcCreateShareToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	token, err := shareTokens.GenerateToken(userID, sessionKey)
	if err != nil {
		logger.Error("Failed to generate share token: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	b, _ := json.Marshal(ShareTokenResponse{Token: token})
	return string(b), nil
}

// rpcSessionSummary resolves a share token to the stored session summary.
// Payload: {"token": "..."}
func rpcSessionSummary(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Token == "" {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	claims, err := shareTokens.VerifyToken(req.Token)
	if err != nil {
		logger.Warn("Rejected share token: %v", err)
		return "", runtime.NewError("Invalid share token", 7) // PERMISSION_DENIED
	}

	store := NewNakamaSessionStoreAdapter(nk)
	snap, found, err := store.Load(ctx, claims.OwnerID)
	if err != nil {
		logger.Error("Failed to load shared session: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}
	if !found {
		return "", runtime.NewError("Session not found", 5) // NOT_FOUND
	}

	sess, err := domain.FromSnapshot(snap)
	if err != nil {
		logger.Error("Stored session snapshot is unusable: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	summary := SessionSummary{
		Phase:        sess.Phase,
		Players:      sess.Players,
		RoundLabel:   sess.RoundLabel(),
		Honba:        sess.Honba,
		RiichiSticks: sess.RiichiSticks,
		RoundsPlayed: len(sess.History),
		History:      sess.History,
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return "", runtime.NewError("Internal error", 13)
	}
	return string(b), nil
}
