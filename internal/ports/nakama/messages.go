package nakama

import (
	"encoding/json"

	"riichi/internal/app"
	"riichi/internal/domain"
	"riichi/internal/ports"
)

// Label is the JSON match label used for listing queries.
type Label struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

func buildLabel(state *MatchState) string {
	phase := string(domain.PhaseSetup)
	if state.Session != nil {
		phase = string(state.Session.Phase)
	}
	label := Label{
		Open:  len(state.Presences) < maxPresences,
		Game:  "riichi",
		Phase: phase,
	}
	b, _ := json.Marshal(label)
	return string(b)
}

// SeatPayload describes one table seat in a start request.
type SeatPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon int    `json:"icon"`
}

// StartSessionRequest seats the players. Seats are taken in the given order;
// the first seat holds the initial dealer.
type StartSessionRequest struct {
	Seats []SeatPayload `json:"seats"`
}

// RiichiRequest targets a seated player for declare/retract.
type RiichiRequest struct {
	PlayerID string `json:"player_id"`
}

// RecordWinRequest carries the winning hand for evaluation plus the parties
// of the settlement. The server fills the game context before scoring.
type RecordWinRequest struct {
	WinnerID string             `json:"winner_id"`
	LoserID  string             `json:"loser_id"`
	Tsumo    bool               `json:"tsumo"`
	Hand     ports.ScoreRequest `json:"hand"`
}

// RecordDrawRequest lists the players in tenpai at the exhaustive draw.
type RecordDrawRequest struct {
	TenpaiIDs []string `json:"tenpai_ids"`
}

// ErrorEvent is sent privately to the sender of a rejected message.
type ErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StateEvent is the full table view sent on join and on request.
type StateEvent struct {
	Phase        domain.Phase         `json:"phase"`
	Players      []*domain.Player     `json:"players"`
	RoundLabel   string               `json:"round_label"`
	Honba        int                  `json:"honba"`
	RiichiSticks int                  `json:"riichi_sticks"`
	History      []domain.RoundRecord `json:"history"`
	OwnerID      string               `json:"owner_id"`
}

func stateEvent(state *MatchState) StateEvent {
	sess := state.Session
	return StateEvent{
		Phase:        sess.Phase,
		Players:      sess.Players,
		RoundLabel:   sess.RoundLabel(),
		Honba:        sess.Honba,
		RiichiSticks: sess.RiichiSticks,
		History:      sess.History,
		OwnerID:      state.OwnerID,
	}
}

// winScoreFromResponse maps the external scorer's response onto the
// settlement input, including the yaku list.
func winScoreFromResponse(resp ports.ScoreResponse) app.WinScore {
	yaku := make([]domain.Yaku, 0, len(resp.Yaku))
	for _, y := range resp.Yaku {
		yaku = append(yaku, domain.Yaku{
			Code:      y.Code,
			NameZh:    y.NameZh,
			NameEn:    y.NameEn,
			Han:       y.Han,
			IsYakuman: y.IsYakuman,
		})
	}
	return app.WinScore{
		Han:               resp.Han,
		Fu:                resp.Fu,
		Yaku:              yaku,
		DealerPayment:     resp.DealerPayment,
		NonDealerPayment:  resp.NonDealerPayment,
		TotalPoints:       resp.TotalPoints,
		RiichiSticksBonus: resp.RiichiSticksBonus,
		IsYakuman:         resp.IsYakuman,
	}
}
