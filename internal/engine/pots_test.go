package engine

import "testing"

func seatFor(pos int, playerID string, totalCommitted int64, folded bool) *Seat {
	status := SeatPlaying
	if folded {
		status = SeatFolded
	}
	return &Seat{PlayerID: playerID, Position: pos, Status: status, TotalCommitted: totalCommitted}
}

func TestComputePotsNoSidePots(t *testing.T) {
	table := &Table{Seats: []*Seat{
		seatFor(0, "a", 100, false),
		seatFor(1, "b", 100, false),
		seatFor(2, "c", 100, false),
	}}
	pots := computePots(table)
	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %d", len(pots))
	}
	if pots[0].Amount != 300 {
		t.Errorf("expected pot of 300, got %d", pots[0].Amount)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !pots[0].Eligible[id] {
			t.Errorf("%s should be eligible for the main pot", id)
		}
	}
}

func TestComputePotsSidePotForShortAllIn(t *testing.T) {
	// a is all-in for 50, b and c each committed 150.
	table := &Table{Seats: []*Seat{
		seatFor(0, "a", 50, false),
		seatFor(1, "b", 150, false),
		seatFor(2, "c", 150, false),
	}}
	pots := computePots(table)
	if len(pots) != 2 {
		t.Fatalf("expected 2 pots, got %d", len(pots))
	}

	main := pots[0]
	if main.Amount != 150 { // 50*3
		t.Errorf("main pot should be 150, got %d", main.Amount)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !main.Eligible[id] {
			t.Errorf("%s should be eligible for the main pot", id)
		}
	}

	side := pots[1]
	if side.Amount != 200 { // (150-50)*2
		t.Errorf("side pot should be 200, got %d", side.Amount)
	}
	if side.Eligible["a"] {
		t.Errorf("a should not be eligible for the side pot")
	}
	if !side.Eligible["b"] || !side.Eligible["c"] {
		t.Errorf("b and c should be eligible for the side pot")
	}
}

func TestComputePotsFoldedPlayerMoneyStaysInPot(t *testing.T) {
	// b folded after committing 50; a and c committed 100 each.
	table := &Table{Seats: []*Seat{
		seatFor(0, "a", 100, false),
		seatFor(1, "b", 50, true),
		seatFor(2, "c", 100, false),
	}}
	pots := computePots(table)
	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	if total != 250 {
		t.Errorf("expected all 250 chips accounted for, got %d", total)
	}
	for _, p := range pots {
		if p.Eligible["b"] {
			t.Errorf("folded player must never be eligible for any pot")
		}
	}
}

func TestComputePotsThreeWayAllInDifferentStacks(t *testing.T) {
	table := &Table{Seats: []*Seat{
		seatFor(0, "a", 20, false),
		seatFor(1, "b", 50, false),
		seatFor(2, "c", 100, false),
		seatFor(3, "d", 100, false),
	}}
	pots := computePots(table)
	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	if total != 270 {
		t.Errorf("expected 270 total chips across pots, got %d", total)
	}
	// Pot 0: 20*4=80 all eligible. Pot 1: (50-20)*3=90, b/c/d eligible.
	// Pot 2: (100-50)*2=100, c/d eligible.
	if len(pots) != 3 {
		t.Fatalf("expected 3 pots, got %d", len(pots))
	}
	if pots[0].Amount != 80 || pots[1].Amount != 90 || pots[2].Amount != 100 {
		t.Errorf("unexpected pot amounts: %+v", pots)
	}
	if len(pots[2].Eligible) != 2 || !pots[2].Eligible["c"] || !pots[2].Eligible["d"] {
		t.Errorf("top pot should only be eligible to c and d, got %+v", pots[2].Eligible)
	}
}
