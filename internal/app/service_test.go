package app

import (
	"testing"

	"riichi/internal/config"
	"riichi/internal/domain"
)

func testRules() config.Ruleset {
	return config.Ruleset{
		StartingScore: 25000,
		ReturnScore:   30000,
		TobiEnabled:   true,
	}
}

func testSeats() []domain.Seat {
	return []domain.Seat{
		{ID: "u0", Name: "Akagi"},
		{ID: "u1", Name: "Washizu"},
		{ID: "u2", Name: "Hiro"},
		{ID: "u3", Name: "Nangou"},
	}
}

func startedSession(t *testing.T, svc *Service) *domain.Session {
	t.Helper()
	sess := domain.NewSession()
	if _, err := svc.StartSession(sess, testSeats()); err != nil {
		t.Fatalf("start session error: %v", err)
	}
	return sess
}

func TestStartSessionEmitsStartEvent(t *testing.T) {
	svc := NewService(testRules())
	sess := domain.NewSession()

	evs, err := svc.StartSession(sess, testSeats())
	if err != nil {
		t.Fatalf("start session error: %v", err)
	}
	if sess.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active", sess.Phase)
	}
	if len(evs) != 1 || evs[0].Kind != EventSessionStarted {
		t.Fatalf("events = %+v, want one session_started", evs)
	}
	payload := evs[0].Payload.(SessionStartedPayload)
	if payload.RoundLabel != "東1局" {
		t.Fatalf("round label = %s, want 東1局", payload.RoundLabel)
	}
	if len(payload.Players) != 4 {
		t.Fatalf("players = %d, want 4", len(payload.Players))
	}
}

func TestRecordWinDealerTsumoNormalizesAllPayRate(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	// Scorers report a dealer tsumo with a zero dealer rate and the
	// all-pay rate in the non-dealer slot.
	score := WinScore{
		Han:              3,
		Fu:               30,
		Yaku:             []domain.Yaku{{Code: "riichi", Han: 1}},
		DealerPayment:    0,
		NonDealerPayment: 2000,
	}
	evs, err := svc.RecordWin(sess, "u0", "", true, score)
	if err != nil {
		t.Fatalf("record win error: %v", err)
	}

	if got := sess.PlayerByID("u0").Score; got != 31000 {
		t.Fatalf("dealer score = %d, want 31000", got)
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		if got := sess.PlayerByID(id).Score; got != 23000 {
			t.Fatalf("%s score = %d, want 23000", id, got)
		}
	}
	if sess.Honba != 1 {
		t.Fatalf("honba = %d, want 1", sess.Honba)
	}
	if len(evs) != 1 || evs[0].Kind != EventRoundSettled {
		t.Fatalf("events = %+v, want one round_settled", evs)
	}
}

func TestRecordWinRonStripsPotBonusFromTotal(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	if _, err := svc.DeclareRiichi(sess, "u1"); err != nil {
		t.Fatalf("declare riichi error: %v", err)
	}

	// Total includes the 1000-point pot stick; the transfer must not.
	score := WinScore{
		Han:               2,
		Fu:                40,
		TotalPoints:       3600,
		RiichiSticksBonus: 1000,
	}
	if _, err := svc.RecordWin(sess, "u1", "u2", false, score); err != nil {
		t.Fatalf("record win error: %v", err)
	}

	// u1: 25000 - 1000 (stick) + 2600 (ron) + 1000 (pot) = 27600.
	if got := sess.PlayerByID("u1").Score; got != 27600 {
		t.Fatalf("winner score = %d, want 27600", got)
	}
	if got := sess.PlayerByID("u2").Score; got != 22400 {
		t.Fatalf("loser score = %d, want 22400", got)
	}
	if sess.RiichiSticks != 0 {
		t.Fatalf("riichi sticks = %d, want 0", sess.RiichiSticks)
	}
}

func TestRecordDrawEmitsSettledEvent(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	evs, err := svc.RecordDraw(sess, []string{"u0"})
	if err != nil {
		t.Fatalf("record draw error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventRoundSettled {
		t.Fatalf("events = %+v, want one round_settled", evs)
	}
	payload := evs[0].Payload.(RoundSettledPayload)
	if payload.Record.Outcome != domain.OutcomeDraw {
		t.Fatalf("outcome = %s, want draw", payload.Record.Outcome)
	}
	if payload.Honba != 1 {
		t.Fatalf("honba = %d, want 1", payload.Honba)
	}
}

func TestTobiConcludesSession(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	// A ron bigger than the loser's stack knocks them negative.
	score := WinScore{Han: 13, Fu: 30, TotalPoints: 32000, IsYakuman: true}
	evs, err := svc.RecordWin(sess, "u1", "u2", false, score)
	if err != nil {
		t.Fatalf("record win error: %v", err)
	}

	if sess.Phase != domain.PhaseConcluded {
		t.Fatalf("phase = %s, want concluded", sess.Phase)
	}
	if len(evs) != 2 || evs[1].Kind != EventSessionConcluded {
		t.Fatalf("events = %+v, want settled then concluded", evs)
	}
	payload := evs[1].Payload.(SessionConcludedPayload)
	if payload.Deltas["u1"] != 32000 {
		t.Fatalf("winner delta = %d, want 32000", payload.Deltas["u1"])
	}
	if payload.Deltas["u2"] != -32000 {
		t.Fatalf("loser delta = %d, want -32000", payload.Deltas["u2"])
	}
}

func TestTobiDisabledKeepsSessionActive(t *testing.T) {
	rules := testRules()
	rules.TobiEnabled = false
	svc := NewService(rules)
	sess := startedSession(t, svc)

	score := WinScore{Han: 13, Fu: 30, TotalPoints: 32000, IsYakuman: true}
	evs, err := svc.RecordWin(sess, "u1", "u2", false, score)
	if err != nil {
		t.Fatalf("record win error: %v", err)
	}
	if sess.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active", sess.Phase)
	}
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
}

func TestConcludeAndReset(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	evs := svc.Conclude(sess)
	if sess.Phase != domain.PhaseConcluded {
		t.Fatalf("phase = %s, want concluded", sess.Phase)
	}
	if len(evs) != 1 || evs[0].Kind != EventSessionConcluded {
		t.Fatalf("events = %+v, want one session_concluded", evs)
	}

	evs = svc.Reset(sess)
	if sess.Phase != domain.PhaseSetup {
		t.Fatalf("phase = %s, want setup", sess.Phase)
	}
	if len(evs) != 1 || evs[0].Kind != EventSessionReset {
		t.Fatalf("events = %+v, want one session_reset", evs)
	}
}

func TestRecordWinPropagatesDomainErrors(t *testing.T) {
	svc := NewService(testRules())
	sess := startedSession(t, svc)

	if _, err := svc.RecordWin(sess, "ghost", "", true, WinScore{}); err != domain.ErrUnknownPlayer {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
	if _, err := svc.RecordWin(sess, "u0", "", false, WinScore{}); err != domain.ErrLoserRequired {
		t.Fatalf("err = %v, want ErrLoserRequired", err)
	}
}
