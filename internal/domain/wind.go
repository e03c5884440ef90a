package domain

// Wind is one of the four cardinal seat/round winds.
type Wind string

const (
	WindEast  Wind = "east"
	WindSouth Wind = "south"
	WindWest  Wind = "west"
	WindNorth Wind = "north"
)

// seatOrder is the fixed rotation order used for seat-wind assignment.
var seatOrder = [4]Wind{WindEast, WindSouth, WindWest, WindNorth}

// Glyph returns the CJK character used in round labels.
func (w Wind) Glyph() string {
	switch w {
	case WindEast:
		return "東"
	case WindSouth:
		return "南"
	case WindWest:
		return "西"
	case WindNorth:
		return "北"
	}
	return "?"
}

// Token returns the lowercase wind token expected by the score API.
func (w Wind) Token() string {
	return string(w)
}

// SeatWind returns the seat wind of the player at playerIdx when the player
// at dealerIdx holds East, rotating through the fixed wind order.
func SeatWind(playerIdx, dealerIdx, playerCount int) Wind {
	return seatOrder[((playerIdx-dealerIdx)%playerCount+playerCount)%playerCount]
}
