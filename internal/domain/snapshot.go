package domain

import "fmt"

// SnapshotVersion identifies the persisted session record layout.
const SnapshotVersion = 1

// Snapshot is the whole session serialized as one versioned record. It is
// written after every committed transition and restored verbatim on
// relaunch.
type Snapshot struct {
	Version        int           `json:"version"`
	Phase          Phase         `json:"phase"`
	Players        []*Player     `json:"players"`
	StartingScore  int           `json:"starting_score"`
	History        []RoundRecord `json:"history"`
	Round          int           `json:"round"`
	Wind           Wind          `json:"wind"`
	Honba          int           `json:"honba"`
	RiichiSticks   int           `json:"riichi_sticks"`
	RiichiDeclared []bool        `json:"riichi_declared"`
	DealerIndex    int           `json:"dealer_index"`
}

// Snapshot deep-copies the session into a versioned record.
func (s *Session) Snapshot() Snapshot {
	players := make([]*Player, len(s.Players))
	for i, p := range s.Players {
		copied := *p
		players[i] = &copied
	}
	history := make([]RoundRecord, len(s.History))
	for i, rec := range s.History {
		history[i] = rec
		history[i].TenpaiIDs = append([]string(nil), rec.TenpaiIDs...)
		history[i].Yaku = append([]Yaku(nil), rec.Yaku...)
		history[i].Payments = clonePayments(rec.Payments)
	}
	return Snapshot{
		Version:        SnapshotVersion,
		Phase:          s.Phase,
		Players:        players,
		StartingScore:  s.StartingScore,
		History:        history,
		Round:          s.Round,
		Wind:           s.Wind,
		Honba:          s.Honba,
		RiichiSticks:   s.RiichiSticks,
		RiichiDeclared: append([]bool(nil), s.RiichiDeclared...),
		DealerIndex:    s.DealerIndex,
	}
}

// FromSnapshot rebuilds a session from a persisted record.
func FromSnapshot(snap Snapshot) (*Session, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	phase := snap.Phase
	if phase == "" {
		phase = PhaseSetup
	}
	return &Session{
		Phase:          phase,
		Players:        snap.Players,
		StartingScore:  snap.StartingScore,
		History:        snap.History,
		Round:          snap.Round,
		Wind:           snap.Wind,
		Honba:          snap.Honba,
		RiichiSticks:   snap.RiichiSticks,
		RiichiDeclared: snap.RiichiDeclared,
		DealerIndex:    snap.DealerIndex,
	}, nil
}
