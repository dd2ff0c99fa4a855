package engine

import "testing"

func newOccupiedTable(n int) *Table {
	seats := make([]*Seat, n)
	for i := 0; i < n; i++ {
		seats[i] = &Seat{PlayerID: string(rune('a' + i)), Position: i, Chips: 1000, Status: SeatSitting}
	}
	return &Table{Seats: seats, Settings: DefaultTableSettings(), LastDealerPosition: -1}
}

func TestRotateDealerFirstHandPicksLowestSeat(t *testing.T) {
	table := newOccupiedTable(4)
	table.Seats[0] = nil // lowest occupied is now 1
	d := rotateDealer(table)
	if d != 1 {
		t.Errorf("expected dealer at seat 1, got %d", d)
	}
}

func TestRotateDealerAdvancesClockwise(t *testing.T) {
	table := newOccupiedTable(4)
	table.HandCount = 1
	table.LastDealerPosition = 1
	d := rotateDealer(table)
	if d != 2 {
		t.Errorf("expected dealer to move to seat 2, got %d", d)
	}
}

func TestRotateDealerSkipsEmptySeats(t *testing.T) {
	table := newOccupiedTable(4)
	table.Seats[2] = nil
	table.HandCount = 1
	table.LastDealerPosition = 1
	d := rotateDealer(table)
	if d != 3 {
		t.Errorf("expected dealer to skip the empty seat 2 and land on 3, got %d", d)
	}
}

// TestRotateDealerSurvivesHandClearingHand mirrors the real call path:
// finishHand sets t.Hand = nil after every hand, so rotation must read
// the button's last position off Table itself, not off a cleared Hand.
func TestRotateDealerSurvivesHandClearingHand(t *testing.T) {
	table := newOccupiedTable(4)
	table.HandCount = 1
	table.LastDealerPosition = 1
	table.Hand = nil
	d := rotateDealer(table)
	if d != 2 {
		t.Errorf("expected dealer to move to seat 2 after the previous hand cleared Hand, got %d", d)
	}
}

func TestBlindPositionsHeadsUp(t *testing.T) {
	table := newOccupiedTable(2)
	sb, bb := blindPositions(table, 0)
	if sb != 0 {
		t.Errorf("heads-up: dealer should post small blind, got sb=%d", sb)
	}
	if bb != 1 {
		t.Errorf("heads-up: other player should post big blind, got bb=%d", bb)
	}
}

func TestBlindPositionsFullRing(t *testing.T) {
	table := newOccupiedTable(6)
	sb, bb := blindPositions(table, 2)
	if sb != 3 || bb != 4 {
		t.Errorf("expected sb=3 bb=4 with dealer at 2, got sb=%d bb=%d", sb, bb)
	}
}

func TestFirstToActPreflopHeadsUpIsDealer(t *testing.T) {
	table := newOccupiedTable(2)
	first := firstToActPreflop(table, 0, 0, 1)
	if first != 0 {
		t.Errorf("heads-up preflop: dealer/small blind acts first, got %d", first)
	}
}

func TestFirstToActPreflopFullRingIsAfterBigBlind(t *testing.T) {
	table := newOccupiedTable(6)
	for _, s := range table.Seats {
		s.Status = SeatPlaying
	}
	first := firstToActPreflop(table, 2, 3, 4)
	if first != 5 {
		t.Errorf("expected first actor at seat 5 (UTG), got %d", first)
	}
}

func TestDealInSittingPlayersWaitsForBigBlind(t *testing.T) {
	table := newOccupiedTable(4)
	table.HandCount = 3
	for _, s := range table.Seats {
		s.Status = SeatSitting
	}
	table.Seats[3].AwaitingDeal = true // joined mid-session

	dealInSittingPlayers(table, 0, 2) // dealer=0, bb=2

	if table.Seats[3].Status != SeatSitting {
		t.Errorf("new player at seat 3 should still be waiting (bb is at seat 2, offset 2 < 3)")
	}
	if table.Seats[1].Status != SeatPlaying {
		t.Errorf("seat 1 (no AwaitingDeal) should be dealt in immediately")
	}
}

func TestDealInSittingPlayersJoinsWhenBigBlindLandsOnSeat(t *testing.T) {
	table := newOccupiedTable(4)
	table.HandCount = 3
	for _, s := range table.Seats {
		s.Status = SeatSitting
	}
	table.Seats[3].AwaitingDeal = true

	// Next hand: dealer rotates to 1, bb lands at 3 - now seat 3 qualifies.
	dealInSittingPlayers(table, 1, 3)

	if table.Seats[3].Status != SeatPlaying {
		t.Errorf("seat 3 should now be dealt in: offset(1,3)=2 == bb offset 2")
	}
	if table.Seats[3].AwaitingDeal {
		t.Errorf("AwaitingDeal should clear once the seat is dealt in")
	}
}

// TestDealInSittingPlayersSkipsSeatsBetweenDealerAndBigBlind covers a seat
// the button has passed but that hasn't yet landed on the big blind: it
// must stay sitting out even though its offset is less than the big
// blind's, since spec §8.3 deals a waiting player in only in the hand
// they land exactly on the big blind.
func TestDealInSittingPlayersSkipsSeatsBetweenDealerAndBigBlind(t *testing.T) {
	table := newOccupiedTable(4)
	table.HandCount = 3
	for _, s := range table.Seats {
		s.Status = SeatSitting
	}
	table.Seats[1].AwaitingDeal = true // offset 1 from dealer, bb offset is 2

	dealInSittingPlayers(table, 0, 2) // dealer=0, bb=2

	if table.Seats[1].Status != SeatSitting {
		t.Errorf("seat 1 sits strictly between dealer and big blind (offset 1 < bb offset 2) and should still be waiting")
	}
	if !table.Seats[1].AwaitingDeal {
		t.Errorf("seat 1's AwaitingDeal flag should remain set until it lands exactly on the big blind")
	}
}
