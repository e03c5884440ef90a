package domain

import (
	"encoding/json"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := activeSession(t, 4, 25000)
	if err := s.DeclareRiichi("u1"); err != nil {
		t.Fatalf("declare error: %v", err)
	}
	if err := s.RecordDraw([]string{"u1", "u3"}); err != nil {
		t.Fatalf("draw error: %v", err)
	}

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	restored, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	if restored.Phase != s.Phase || restored.Round != s.Round || restored.Wind != s.Wind ||
		restored.Honba != s.Honba || restored.RiichiSticks != s.RiichiSticks ||
		restored.DealerIndex != s.DealerIndex {
		t.Fatalf("restored counters differ: %+v vs %+v", restored, s)
	}
	for i, p := range s.Players {
		if *restored.Players[i] != *p {
			t.Errorf("player %d differs: %+v vs %+v", i, restored.Players[i], p)
		}
	}
	if len(restored.History) != 1 || restored.History[0].Outcome != OutcomeDraw {
		t.Fatalf("history not restored: %+v", restored.History)
	}

	// The restored session keeps playing where the old one stopped.
	if err := restored.RecordWin(WinFacts{
		WinnerID: "u2",
		LoserID:  "u0",
		Payments: RonSettlement(restored.Players, "u2", "u0", 2000),
	}); err != nil {
		t.Fatalf("record win on restored session: %v", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := activeSession(t, 3, 35000)
	snap := s.Snapshot()

	s.Players[0].Score = 0
	if snap.Players[0].Score != 35000 {
		t.Fatalf("snapshot shares player storage with the live session")
	}
}

func TestFromSnapshotRejectsUnknownVersion(t *testing.T) {
	if _, err := FromSnapshot(Snapshot{Version: 99}); err == nil {
		t.Fatalf("expected version error")
	}
}
