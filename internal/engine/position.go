package engine

// Position and seating: dealer button rotation, blind assignment, and the
// deal-in rule for players who sit down mid-session.
//
// A freshly seated player is marked SeatSitting rather than SeatPlaying.
// Dropping them straight into SeatPlaying would let them dodge the blind
// rotation entirely if they happened to sit down right after the button
// passed their seat. Instead they wait, sitting out, until the hand in
// which the big blind falls on their seat — the same "wait for the big blind" rule a live room enforces when a new
// player buys in mid-orbit.

// occupiedPositions returns occupied seat positions in ascending order.
func occupiedPositions(t *Table) []int {
	var out []int
	for i, s := range t.Seats {
		if s != nil {
			out = append(out, i)
		}
	}
	return out
}

// nextOccupiedPosition returns the next occupied seat strictly clockwise
// of from, wrapping around the table. Returns -1 if no other seat is
// occupied.
func nextOccupiedPosition(t *Table, from int) int {
	n := len(t.Seats)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		pos := (from + i) % n
		if t.Seats[pos] != nil {
			return pos
		}
	}
	return -1
}

// nextPlayingPosition is like nextOccupiedPosition but skips folded,
// all-in, and sitting-out seats — used to walk the action during a
// betting round.
func nextPlayingPosition(t *Table, from int) int {
	n := len(t.Seats)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		pos := (from + i) % n
		s := t.Seats[pos]
		if s != nil && s.canAct() {
			return pos
		}
	}
	return -1
}

// countEligibleForHand returns how many seats are in SeatPlaying or
// SeatSitting status (folded and all-in seats are not counted).
func countEligibleForHand(t *Table) int {
	count := 0
	for _, s := range t.Seats {
		if s != nil && (s.Status == SeatPlaying || s.Status == SeatSitting) {
			count++
		}
	}
	return count
}

// rotateDealer advances the dealer button to the next occupied seat. On
// the very first hand it picks the lowest occupied position. The last
// button position is read off Table.LastDealerPosition rather than Hand,
// since Hand is nil between hands (every hand starts with t.Hand == nil).
func rotateDealer(t *Table) int {
	occupied := occupiedPositions(t)
	if len(occupied) == 0 {
		return -1
	}
	if t.LastDealerPosition < 0 {
		return occupied[0]
	}
	next := nextOccupiedPosition(t, t.LastDealerPosition)
	if next == -1 {
		return occupied[0]
	}
	return next
}

// blindPositions computes the small and big blind seats for a hand whose
// dealer is at dealerPos. Heads-up play is special-cased: the dealer
// posts the small blind and acts first preflop (spec §4.4).
func blindPositions(t *Table, dealerPos int) (sb, bb int) {
	occupied := occupiedPositions(t)
	if len(occupied) == 2 {
		other := occupied[0]
		if other == dealerPos {
			other = occupied[1]
		}
		return dealerPos, other
	}
	sb = nextOccupiedPosition(t, dealerPos)
	bb = nextOccupiedPosition(t, sb)
	return sb, bb
}

// firstToActPreflop returns the seat that acts first preflop: the seat
// after the big blind, except heads-up where the dealer/small blind acts
// first.
func firstToActPreflop(t *Table, dealerPos, sbPos, bbPos int) int {
	if len(occupiedPositions(t)) == 2 {
		return dealerPos
	}
	return nextPlayingPosition(t, bbPos)
}

// firstToActPostflop returns the seat that acts first on the flop, turn,
// and river: the first playing seat after the dealer, heads-up or not.
func firstToActPostflop(t *Table, dealerPos int) int {
	return nextPlayingPosition(t, dealerPos)
}

// dealInSittingPlayers decides which sitting-out seats join the hand about
// to be dealt. A seat with chips and no AwaitingDeal flag returns to play
// immediately (it was only sitting out between hands). A seat still
// AwaitingDeal only joins in the hand where it lands exactly on the big
// blind (spec §8.3): any seat the button passes on the way there stays
// sitting out, even though blindPositions may have landed sb or bb on a
// seat that is itself still sitting out (a seat only dealt in this hand
// never gets to act anyway, since it isn't promoted until this check).
func dealInSittingPlayers(t *Table, dealerPos, bbPos int) {
	n := len(t.Seats)
	if n == 0 {
		return
	}
	bbOffset := offsetFrom(dealerPos, bbPos, n)
	for pos, s := range t.Seats {
		if s == nil || s.Status != SeatSitting || s.Chips <= 0 {
			continue
		}
		if !s.AwaitingDeal {
			s.Status = SeatPlaying
			continue
		}
		seatOffset := offsetFrom(dealerPos, pos, n)
		if seatOffset == bbOffset {
			s.Status = SeatPlaying
			s.AwaitingDeal = false
		}
	}
}

// offsetFrom returns how many clockwise seats lie between from and to,
// in [0, n).
func offsetFrom(from, to, n int) int {
	d := to - from
	if d < 0 {
		d += n
	}
	return d
}

// findEmptySeat returns the lowest-numbered empty position, or -1 if the
// table is full.
func findEmptySeat(t *Table) int {
	for i, s := range t.Seats {
		if s == nil {
			return i
		}
	}
	return -1
}
