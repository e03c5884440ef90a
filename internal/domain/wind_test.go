package domain

import "testing"

func TestSeatWind(t *testing.T) {
	tests := []struct {
		name        string
		playerIdx   int
		dealerIdx   int
		playerCount int
		expected    Wind
	}{
		{name: "dealer holds east", playerIdx: 2, dealerIdx: 2, playerCount: 4, expected: WindEast},
		{name: "seat after dealer holds south", playerIdx: 3, dealerIdx: 2, playerCount: 4, expected: WindSouth},
		{name: "wraps around the table", playerIdx: 0, dealerIdx: 2, playerCount: 4, expected: WindWest},
		{name: "seat before dealer holds north", playerIdx: 1, dealerIdx: 2, playerCount: 4, expected: WindNorth},
		{name: "three players skip north", playerIdx: 1, dealerIdx: 2, playerCount: 3, expected: WindWest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeatWind(tt.playerIdx, tt.dealerIdx, tt.playerCount); got != tt.expected {
				t.Errorf("SeatWind() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestRoundLabel(t *testing.T) {
	s := activeSession(t, 4, 25000)
	if got := s.RoundLabel(); got != "東1局" {
		t.Errorf("label = %q, want 東1局", got)
	}
	s.Wind = WindSouth
	s.Round = 3
	if got := s.RoundLabel(); got != "南3局" {
		t.Errorf("label = %q, want 南3局", got)
	}
	if got := s.WindToken(); got != "south" {
		t.Errorf("token = %q, want south", got)
	}
}
