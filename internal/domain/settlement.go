package domain

// DrawPool is the fixed point pool exchanged between tenpai and noten
// players at an exhaustive draw.
const DrawPool = 3000

// DrawSettlement computes the tenpai/noten exchange for a draw. Every
// seated player gets an entry. All-tenpai and all-noten rounds exchange
// nothing. Otherwise each tenpai player receives DrawPool/tenpaiCount and
// each noten player pays DrawPool/notenCount; floor-division remainders
// are dropped, not redistributed, so the mapping may miss zero-sum by the
// truncated amount.
func DrawSettlement(players []*Player, tenpaiIDs []string) map[string]int {
	return splitDrawPool(players, tenpaiIDs, DrawPool)
}

func splitDrawPool(players []*Player, tenpaiIDs []string, pool int) map[string]int {
	tenpai := make(map[string]bool, len(tenpaiIDs))
	for _, id := range tenpaiIDs {
		tenpai[id] = true
	}

	payments := make(map[string]int, len(players))
	tenpaiCount := 0
	for _, p := range players {
		payments[p.ID] = 0
		if tenpai[p.ID] {
			tenpaiCount++
		}
	}

	notenCount := len(players) - tenpaiCount
	if tenpaiCount == 0 || notenCount == 0 {
		return payments
	}

	receive := pool / tenpaiCount
	pay := pool / notenCount
	for _, p := range players {
		if tenpai[p.ID] {
			payments[p.ID] = receive
		} else {
			payments[p.ID] = -pay
		}
	}
	return payments
}

// TsumoSettlement computes the all-pay mapping for a self-drawn win from
// the two per-contributor rates supplied by the score API. When the winner
// is the dealer every contributor pays dealerPayment; otherwise the dealer
// pays dealerPayment and each other contributor pays nonDealerPayment. The
// winner receives the sum, so the mapping is zero-sum by construction.
func TsumoSettlement(players []*Player, winnerID string, dealerPayment, nonDealerPayment int) map[string]int {
	winnerIsDealer := false
	for _, p := range players {
		if p.ID == winnerID && p.IsDealer {
			winnerIsDealer = true
			break
		}
	}

	payments := make(map[string]int, len(players))
	total := 0
	for _, p := range players {
		if p.ID == winnerID {
			continue
		}
		amount := nonDealerPayment
		if winnerIsDealer || p.IsDealer {
			amount = dealerPayment
		}
		payments[p.ID] = -amount
		total += amount
	}
	payments[winnerID] = total
	return payments
}

// RonSettlement is the direct two-party transfer for a discard win: the
// loser pays the supplied points to the winner and nobody else moves.
func RonSettlement(players []*Player, winnerID, loserID string, points int) map[string]int {
	payments := make(map[string]int, len(players))
	for _, p := range players {
		payments[p.ID] = 0
	}
	payments[loserID] = -points
	payments[winnerID] = points
	return payments
}
