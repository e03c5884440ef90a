package ports

import "context"

// MeldInput is one open (or closed-kan) meld in a score request.
type MeldInput struct {
	Tiles  []string `json:"tiles"`
	IsOpen bool     `json:"is_open"`
}

// GameContext is the session-side context the score API needs for yaku
// eligibility and payment amounts.
type GameContext struct {
	RoundWind      string `json:"round_wind"`
	RoundNumber    int    `json:"round_number"`
	DealerPosition int    `json:"dealer_position"`
	PlayerPosition int    `json:"player_position"`
	Honba          int    `json:"honba"`
	RiichiSticks   int    `json:"riichi_sticks"`
}

// ScoreRequest describes a winning hand for the score API. Tiles holds the
// concealed tiles only, excluding the winning tile and meld tiles.
type ScoreRequest struct {
	Tiles            []string    `json:"tiles"`
	RedTileFlags     []bool      `json:"red_tile_flags"`
	WinningTile      string      `json:"winning_tile"`
	WinningTileIsRed bool        `json:"winning_tile_is_red"`
	Melds            []MeldInput `json:"melds"`

	IsRiichi    bool `json:"is_riichi"`
	IsTsumo     bool `json:"is_tsumo"`
	IsIppatsu   bool `json:"is_ippatsu"`
	IsFirstTurn bool `json:"is_first_turn"`
	IsLastTile  bool `json:"is_last_tile"`
	IsRinshan   bool `json:"is_rinshan"`
	IsChankan   bool `json:"is_chankan"`

	DoraIndicators []string    `json:"dora_indicators"`
	GameContext    GameContext `json:"game_context"`
}

// YakuItem is one qualifying scoring category in a score response.
type YakuItem struct {
	Code      string `json:"code"`
	NameZh    string `json:"name_zh"`
	NameEn    string `json:"name_en"`
	Han       int    `json:"han"`
	IsYakuman bool   `json:"is_yakuman"`
}

// ScoreResponse is the full scoring result. The core passes it through
// opaquely; it never recomputes or validates the math.
type ScoreResponse struct {
	IsWinning bool `json:"is_winning"`

	Yaku              []YakuItem `json:"yaku"`
	Han               int        `json:"han"`
	Fu                int        `json:"fu"`
	BasePoints        int        `json:"base_points"`
	TotalPoints       int        `json:"total_points"`
	DealerPayment     int        `json:"dealer_payment"`
	NonDealerPayment  int        `json:"non_dealer_payment"`
	HonbaBonus        int        `json:"honba_bonus"`
	RiichiSticksBonus int        `json:"riichi_sticks_bonus"`
	IsYakuman         bool       `json:"is_yakuman"`

	Error string `json:"error,omitempty"`
}

// ScoringPort is the external hand-scoring service. Calls happen strictly
// before any session transition; a failure here must leave the session
// untouched.
type ScoringPort interface {
	Score(ctx context.Context, req ScoreRequest) (ScoreResponse, error)
}
