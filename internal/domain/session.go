package domain

import "errors"

// Phase represents the lifecycle stage of a session.
type Phase string

const (
	// PhaseSetup is the pre-game state where a session accepts initialization.
	PhaseSetup Phase = "setup"
	// PhaseActive is the state where rounds may be recorded.
	PhaseActive Phase = "active"
	// PhaseConcluded is the terminal state; only Reset leaves it.
	PhaseConcluded Phase = "concluded"
)

// RiichiStickValue is the points one declared riichi bet removes from a score.
const RiichiStickValue = 1000

// Outcome classifies how a recorded round ended.
type Outcome string

const (
	OutcomeTsumo Outcome = "tsumo"
	OutcomeRon   Outcome = "ron"
	OutcomeDraw  Outcome = "draw"
)

var (
	ErrNotSetup      = errors.New("session already initialized")
	ErrNotActive     = errors.New("session is not active")
	ErrPlayerCount   = errors.New("session requires 3 or 4 players")
	ErrUnknownPlayer = errors.New("player not found")
	ErrLoserRequired = errors.New("discard win requires a loser")
)

// Player holds the ledger state for one seat.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     int    `json:"icon"`
	SeatWind Wind   `json:"seat_wind"`
	Score    int    `json:"score"`
	IsDealer bool   `json:"is_dealer"`
}

// Seat seeds one player slot at initialization, in seating order.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon int    `json:"icon"`
}

// Yaku is one scoring category reported by the score API. The session
// stores it verbatim and never interprets it.
type Yaku struct {
	Code      string `json:"code"`
	NameZh    string `json:"name_zh"`
	NameEn    string `json:"name_en"`
	Han       int    `json:"han"`
	IsYakuman bool   `json:"is_yakuman"`
}

// RoundRecord is an immutable snapshot of one settled round. All counters
// hold their pre-rotation values.
type RoundRecord struct {
	Number       int            `json:"number"`
	Wind         Wind           `json:"wind"`
	Honba        int            `json:"honba"`
	RiichiSticks int            `json:"riichi_sticks"`
	Outcome      Outcome        `json:"outcome"`
	WinnerID     string         `json:"winner_id,omitempty"`
	LoserID      string         `json:"loser_id,omitempty"`
	TenpaiIDs    []string       `json:"tenpai_ids,omitempty"`
	Han          int            `json:"han,omitempty"`
	Fu           int            `json:"fu,omitempty"`
	Yaku         []Yaku         `json:"yaku,omitempty"`
	Payments     map[string]int `json:"payments"`
}

// WinFacts carries the outcome of a won round into RecordWin. Payments is
// the settlement mapping computed beforehand; it must not include the
// riichi-pool bonus, which RecordWin credits itself when consuming the pool.
type WinFacts struct {
	WinnerID string
	LoserID  string // empty on tsumo
	Tsumo    bool
	Han      int
	Fu       int
	Yaku     []Yaku
	Payments map[string]int
}

// Session is the authoritative match ledger: players in seating order,
// rotation counters, the riichi pool, and the settled-round history.
type Session struct {
	Phase          Phase         `json:"phase"`
	Players        []*Player     `json:"players"`
	StartingScore  int           `json:"starting_score"`
	History        []RoundRecord `json:"history"` // most recent first
	Round          int           `json:"round"`
	Wind           Wind          `json:"wind"`
	Honba          int           `json:"honba"`
	RiichiSticks   int           `json:"riichi_sticks"`
	RiichiDeclared []bool        `json:"riichi_declared"`
	DealerIndex    int           `json:"dealer_index"`
}

// NewSession returns an empty session in the setup phase.
func NewSession() *Session {
	return &Session{Phase: PhaseSetup}
}

// Initialize seats the players, assigns seat winds starting from the first
// listed player (the opening dealer), and activates the session. It is the
// only transition accepted from the setup phase.
func (s *Session) Initialize(seats []Seat, startingScore int) error {
	if s.Phase != PhaseSetup {
		return ErrNotSetup
	}
	if len(seats) < 3 || len(seats) > 4 {
		return ErrPlayerCount
	}

	n := len(seats)
	s.Players = make([]*Player, n)
	for i, seat := range seats {
		s.Players[i] = &Player{
			ID:       seat.ID,
			Name:     seat.Name,
			Icon:     seat.Icon,
			SeatWind: SeatWind(i, 0, n),
			Score:    startingScore,
			IsDealer: i == 0,
		}
	}
	s.StartingScore = startingScore
	s.History = nil
	s.Round = 1
	s.Wind = WindEast
	s.Honba = 0
	s.RiichiSticks = 0
	s.RiichiDeclared = make([]bool, n)
	s.DealerIndex = 0
	s.Phase = PhaseActive
	return nil
}

// DeclareRiichi moves one stick's worth of points from the player into the
// shared pool. Re-declaring within the same round is a no-op.
func (s *Session) DeclareRiichi(playerID string) error {
	if s.Phase != PhaseActive {
		return ErrNotActive
	}
	playerIdx := s.playerIndex(playerID)
	if playerIdx < 0 {
		return ErrUnknownPlayer
	}
	if s.RiichiDeclared[playerIdx] {
		return nil
	}
	s.Players[playerIdx].Score -= RiichiStickValue
	s.RiichiDeclared[playerIdx] = true
	s.RiichiSticks++
	return nil
}

// RetractRiichi undoes a declaration made this round, refunding the stick.
// Retracting an undeclared bet is a no-op.
func (s *Session) RetractRiichi(playerID string) error {
	if s.Phase != PhaseActive {
		return ErrNotActive
	}
	playerIdx := s.playerIndex(playerID)
	if playerIdx < 0 {
		return ErrUnknownPlayer
	}
	if !s.RiichiDeclared[playerIdx] {
		return nil
	}
	s.Players[playerIdx].Score += RiichiStickValue
	s.RiichiDeclared[playerIdx] = false
	if s.RiichiSticks > 0 {
		s.RiichiSticks--
	}
	return nil
}

// RecordWin settles a won round: applies the payment mapping, pays the
// accumulated riichi pool to the winner, advances dealer/round/wind/honba
// state, reseats winds, and prepends the round record.
func (s *Session) RecordWin(facts WinFacts) error {
	if s.Phase != PhaseActive {
		return ErrNotActive
	}
	winner := s.playerByID(facts.WinnerID)
	if winner == nil {
		return ErrUnknownPlayer
	}
	if !facts.Tsumo && s.playerByID(facts.LoserID) == nil {
		return ErrLoserRequired
	}

	outcome := OutcomeRon
	loserID := facts.LoserID
	if facts.Tsumo {
		outcome = OutcomeTsumo
		loserID = ""
	}
	record := RoundRecord{
		Number:       s.Round,
		Wind:         s.Wind,
		Honba:        s.Honba,
		RiichiSticks: s.RiichiSticks,
		Outcome:      outcome,
		WinnerID:     facts.WinnerID,
		LoserID:      loserID,
		Han:          facts.Han,
		Fu:           facts.Fu,
		Yaku:         append([]Yaku(nil), facts.Yaku...),
		Payments:     clonePayments(facts.Payments),
	}

	s.applyPayments(facts.Payments)
	// The whole pool goes to the winner, whatever its size.
	winner.Score += s.RiichiSticks * RiichiStickValue

	if winner.IsDealer {
		s.Honba++
	} else {
		s.Honba = 0
		s.advanceDealer()
	}
	s.reseatWinds()

	s.RiichiSticks = 0
	for i := range s.RiichiDeclared {
		s.RiichiDeclared[i] = false
	}

	s.History = append([]RoundRecord{record}, s.History...)
	return nil
}

// RecordDraw settles an exhaustive draw: applies the tenpai/noten exchange,
// advances the dealer only when the dealer is noten, and always increments
// honba. The riichi pool and declared flags carry forward untouched.
func (s *Session) RecordDraw(tenpaiIDs []string) error {
	if s.Phase != PhaseActive {
		return ErrNotActive
	}

	payments := DrawSettlement(s.Players, tenpaiIDs)
	tenpai := s.knownIDs(tenpaiIDs)
	record := RoundRecord{
		Number:       s.Round,
		Wind:         s.Wind,
		Honba:        s.Honba,
		RiichiSticks: s.RiichiSticks,
		Outcome:      OutcomeDraw,
		TenpaiIDs:    tenpai,
		Payments:     clonePayments(payments),
	}

	s.applyPayments(payments)

	dealerTenpai := false
	for _, id := range tenpai {
		if id == s.Players[s.DealerIndex].ID {
			dealerTenpai = true
			break
		}
	}
	if !dealerTenpai {
		s.advanceDealer()
	}
	s.Honba++
	s.reseatWinds()

	s.History = append([]RoundRecord{record}, s.History...)
	return nil
}

// Conclude forces the terminal phase, independent of rotation state.
func (s *Session) Conclude() {
	s.Phase = PhaseConcluded
}

// Reset clears everything back to an empty setup-phase session.
func (s *Session) Reset() {
	*s = Session{Phase: PhaseSetup}
}

// Busted reports whether any player's score has gone negative.
func (s *Session) Busted() bool {
	for _, p := range s.Players {
		if p.Score < 0 {
			return true
		}
	}
	return false
}

// advanceDealer rotates the dealer flag one seat. Wrapping past the last
// seat advances the wind (East to South) or, from South, concludes the
// session.
func (s *Session) advanceDealer() {
	n := len(s.Players)
	s.Players[s.DealerIndex].IsDealer = false
	s.DealerIndex = (s.DealerIndex + 1) % n
	s.Players[s.DealerIndex].IsDealer = true

	if s.DealerIndex == 0 {
		if s.Wind == WindSouth {
			s.Phase = PhaseConcluded
			s.Round = 1
			return
		}
		s.Wind = WindSouth
		s.Round = 1
		return
	}
	s.Round = s.DealerIndex + 1
}

// reseatWinds recomputes every seat wind relative to the current dealer.
func (s *Session) reseatWinds() {
	n := len(s.Players)
	for i, p := range s.Players {
		p.SeatWind = SeatWind(i, s.DealerIndex, n)
	}
}

func (s *Session) applyPayments(payments map[string]int) {
	for id, delta := range payments {
		if p := s.playerByID(id); p != nil {
			p.Score += delta
		}
	}
}

func (s *Session) playerByID(id string) *Player {
	if idx := s.playerIndex(id); idx >= 0 {
		return s.Players[idx]
	}
	return nil
}

func (s *Session) playerIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// knownIDs filters ids down to seated players, preserving seating order.
func (s *Session) knownIDs(ids []string) []string {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, p := range s.Players {
		if set[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func clonePayments(payments map[string]int) map[string]int {
	out := make(map[string]int, len(payments))
	for id, delta := range payments {
		out[id] = delta
	}
	return out
}
