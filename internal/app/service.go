package app

import (
	"errors"

	"riichi/internal/config"
	"riichi/internal/domain"
)

// Service contains score-tracking use-cases operating on domain state.
type Service struct {
	rules config.Ruleset
}

// NewService constructs a Service with the provided ruleset.
func NewService(rules config.Ruleset) *Service {
	return &Service{rules: rules}
}

var (
	ErrNotOwner   = errors.New("actor is not match owner")
	ErrNotWinning = errors.New("hand is not a winning hand")
)

// WinScore is the normalized result of a hand evaluation, as produced by the
// external scorer and converted by the transport layer.
type WinScore struct {
	Han               int
	Fu                int
	Yaku              []domain.Yaku
	DealerPayment     int
	NonDealerPayment  int
	TotalPoints       int
	RiichiSticksBonus int
	IsYakuman         bool
}

// StartSession initializes the session with the provided seats.
func (s *Service) StartSession(sess *domain.Session, seats []domain.Seat) ([]Event, error) {
	if err := sess.Initialize(seats, s.rules.StartingScore); err != nil {
		return nil, err
	}
	return []Event{
		{
			Kind:    EventSessionStarted,
			Payload: SessionStartedPayload{Players: sess.Players, RoundLabel: sess.RoundLabel()},
		},
	}, nil
}

// DeclareRiichi posts a riichi stick for the given player.
func (s *Service) DeclareRiichi(sess *domain.Session, playerID string) ([]Event, error) {
	if err := sess.DeclareRiichi(playerID); err != nil {
		return nil, err
	}
	return []Event{
		{
			Kind:    EventRiichiDeclared,
			Payload: RiichiPayload{PlayerID: playerID, RiichiSticks: sess.RiichiSticks},
		},
	}, nil
}

// RetractRiichi undoes a riichi declaration made in the current round.
func (s *Service) RetractRiichi(sess *domain.Session, playerID string) ([]Event, error) {
	if err := sess.RetractRiichi(playerID); err != nil {
		return nil, err
	}
	return []Event{
		{
			Kind:    EventRiichiRetracted,
			Payload: RiichiPayload{PlayerID: playerID, RiichiSticks: sess.RiichiSticks},
		},
	}, nil
}

// RecordWin settles a won round. For tsumo the loserID must be empty; for ron
// it names the discarder. The score is taken as already evaluated.
func (s *Service) RecordWin(sess *domain.Session, winnerID, loserID string, tsumo bool, score WinScore) ([]Event, error) {
	facts := domain.WinFacts{
		WinnerID: winnerID,
		LoserID:  loserID,
		Tsumo:    tsumo,
		Han:      score.Han,
		Fu:       score.Fu,
		Yaku:     score.Yaku,
	}

	if tsumo {
		dealerRate := score.DealerPayment
		if winner := sess.PlayerByID(winnerID); winner != nil && winner.IsDealer && dealerRate == 0 {
			// The scorer reports a dealer tsumo as a single all-pay rate.
			dealerRate = score.NonDealerPayment
		}
		facts.Payments = domain.TsumoSettlement(sess.Players, winnerID, dealerRate, score.NonDealerPayment)
	} else {
		// Pot sticks are credited separately, so strip them from the total.
		points := score.TotalPoints - score.RiichiSticksBonus
		facts.Payments = domain.RonSettlement(sess.Players, winnerID, loserID, points)
	}

	if err := sess.RecordWin(facts); err != nil {
		return nil, err
	}

	events := []Event{
		{
			Kind:    EventRoundSettled,
			Payload: s.settledPayload(sess),
		},
	}
	return s.withConclusion(sess, events), nil
}

// RecordDraw settles an exhaustive draw with the given tenpai players.
func (s *Service) RecordDraw(sess *domain.Session, tenpaiIDs []string) ([]Event, error) {
	if err := sess.RecordDraw(tenpaiIDs); err != nil {
		return nil, err
	}
	events := []Event{
		{
			Kind:    EventRoundSettled,
			Payload: s.settledPayload(sess),
		},
	}
	return s.withConclusion(sess, events), nil
}

// Conclude ends the session regardless of progress.
func (s *Service) Conclude(sess *domain.Session) []Event {
	sess.Conclude()
	return []Event{s.concludedEvent(sess)}
}

// Reset returns the session to setup so a new one can be started.
func (s *Service) Reset(sess *domain.Session) []Event {
	sess.Reset()
	return []Event{{Kind: EventSessionReset, Payload: struct{}{}}}
}

// Deltas maps each player to their net score movement against the starting
// stack. Used for chip settlement when the session concludes.
func (s *Service) Deltas(sess *domain.Session) map[string]int {
	deltas := make(map[string]int, len(sess.Players))
	for _, pl := range sess.Players {
		deltas[pl.ID] = pl.Score - sess.StartingScore
	}
	return deltas
}

// withConclusion appends a conclusion event when the round settlement ended
// the session, either by wind progression or by a busted score.
func (s *Service) withConclusion(sess *domain.Session, events []Event) []Event {
	if sess.Phase == domain.PhaseActive && s.rules.TobiEnabled && sess.Busted() {
		sess.Conclude()
	}
	if sess.Phase == domain.PhaseConcluded {
		events = append(events, s.concludedEvent(sess))
	}
	return events
}

func (s *Service) concludedEvent(sess *domain.Session) Event {
	return Event{
		Kind: EventSessionConcluded,
		Payload: SessionConcludedPayload{
			Players: sess.Players,
			Deltas:  s.Deltas(sess),
		},
	}
}

func (s *Service) settledPayload(sess *domain.Session) RoundSettledPayload {
	var record domain.RoundRecord
	if len(sess.History) > 0 {
		record = sess.History[0]
	}
	return RoundSettledPayload{
		Record:       record,
		Players:      sess.Players,
		RoundLabel:   sess.RoundLabel(),
		Honba:        sess.Honba,
		RiichiSticks: sess.RiichiSticks,
	}
}
