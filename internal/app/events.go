package app

import "riichi/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined     EventKind = "player_joined"
	EventPlayerLeft       EventKind = "player_left"
	EventSessionStarted   EventKind = "session_started"
	EventRiichiDeclared   EventKind = "riichi_declared"
	EventRiichiRetracted  EventKind = "riichi_retracted"
	EventRoundSettled     EventKind = "round_settled"
	EventSessionConcluded EventKind = "session_concluded"
	EventSessionReset     EventKind = "session_reset"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Owner  bool   `json:"owner"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type SessionStartedPayload struct {
	Players    []*domain.Player `json:"players"`
	RoundLabel string           `json:"round_label"`
}

type RiichiPayload struct {
	PlayerID     string `json:"player_id"`
	RiichiSticks int    `json:"riichi_sticks"`
}

type RoundSettledPayload struct {
	Record       domain.RoundRecord `json:"record"`
	Players      []*domain.Player   `json:"players"`
	RoundLabel   string             `json:"round_label"`
	Honba        int                `json:"honba"`
	RiichiSticks int                `json:"riichi_sticks"`
}

type SessionConcludedPayload struct {
	Players []*domain.Player `json:"players"`
	Deltas  map[string]int   `json:"deltas"`
}
