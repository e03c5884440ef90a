package domain

import "strconv"

// CurrentDealer returns the player holding the dealer flag, or nil before
// initialization.
func (s *Session) CurrentDealer() *Player {
	if len(s.Players) == 0 {
		return nil
	}
	return s.Players[s.DealerIndex]
}

// PlayerByID returns the seated player with the given ID, or nil.
func (s *Session) PlayerByID(id string) *Player {
	return s.playerByID(id)
}

// RoundLabel returns the human-readable round name, e.g. "東3局".
func (s *Session) RoundLabel() string {
	return s.Wind.Glyph() + strconv.Itoa(s.Round) + "局"
}

// WindToken returns the lowercase round-wind token for score API requests.
func (s *Session) WindToken() string {
	return s.Wind.Token()
}
