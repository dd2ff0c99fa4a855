package poker

import "testing"

func TestEvaluate5Categories(t *testing.T) {
	tests := []struct {
		name     string
		cards    []Card
		expected HandRank
	}{
		{"high card", []Card{{RankA, SuitSpades}, {RankK, SuitHearts}, {RankQ, SuitDiamonds}, {RankJ, SuitClubs}, {Rank9, SuitSpades}}, HighCard},
		{"pair of aces", []Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankK, SuitDiamonds}, {RankQ, SuitClubs}, {RankJ, SuitSpades}}, Pair},
		{"two pair", []Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankK, SuitDiamonds}, {RankK, SuitClubs}, {RankQ, SuitSpades}}, TwoPair},
		{"trips", []Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankK, SuitClubs}, {RankQ, SuitSpades}}, ThreeOfAKind},
		{"straight", []Card{{RankA, SuitSpades}, {RankK, SuitHearts}, {RankQ, SuitDiamonds}, {RankJ, SuitClubs}, {Rank10, SuitSpades}}, Straight},
		{"flush", []Card{{RankA, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades}, {Rank9, SuitSpades}}, Flush},
		{"full house", []Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankK, SuitClubs}, {RankK, SuitSpades}}, FullHouse},
		{"quads", []Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankA, SuitClubs}, {RankK, SuitSpades}}, FourOfAKind},
		{"straight flush", []Card{{Rank9, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades}, {Rank10, SuitSpades}}, StraightFlush},
		{"royal flush", []Card{{RankA, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades}, {Rank10, SuitSpades}}, RoyalFlush},
		{"wheel", []Card{{RankA, SuitSpades}, {Rank2, SuitHearts}, {Rank3, SuitDiamonds}, {Rank4, SuitClubs}, {Rank5, SuitSpades}}, Straight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand, err := Evaluate5(tt.cards)
			if err != nil {
				t.Fatalf("Evaluate5: %v", err)
			}
			if hand.Category != tt.expected {
				t.Errorf("got %v, want %v", hand.Category, tt.expected)
			}
		})
	}
}

func TestWheelLosesToSixHighStraight(t *testing.T) {
	wheel, err := Evaluate5([]Card{{RankA, SuitSpades}, {Rank2, SuitHearts}, {Rank3, SuitDiamonds}, {Rank4, SuitClubs}, {Rank5, SuitSpades}})
	if err != nil {
		t.Fatal(err)
	}
	sixHigh, err := Evaluate5([]Card{{Rank2, SuitSpades}, {Rank3, SuitHearts}, {Rank4, SuitDiamonds}, {Rank5, SuitClubs}, {Rank6, SuitSpades}})
	if err != nil {
		t.Fatal(err)
	}
	if wheel.Compare(sixHigh) >= 0 {
		t.Errorf("wheel should lose to 6-high straight")
	}
}

func TestAceDoesNotWrapAboveKing(t *testing.T) {
	// K-A-2-3-4 is not a straight.
	_, ok := detectStraight([]Card{{RankA, SuitSpades}, {RankK, SuitHearts}, {Rank4, SuitDiamonds}, {Rank3, SuitClubs}, {Rank2, SuitSpades}})
	if ok {
		t.Errorf("K-A-2-3-4 must not be recognized as a straight")
	}
}

func TestFullHouseBeatsThreeOfAKind(t *testing.T) {
	fh, _ := Evaluate5([]Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankK, SuitClubs}, {RankK, SuitSpades}})
	tk, _ := Evaluate5([]Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankK, SuitClubs}, {RankQ, SuitSpades}})
	if fh.Compare(tk) <= 0 {
		t.Errorf("full house should beat three of a kind")
	}
}

func TestQuadsKickerBreaksTie(t *testing.T) {
	// Quad aces, kicker on the board (K) vs kicker in hand (Q), higher kicker wins.
	withKingKicker, _ := Evaluate5([]Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankA, SuitClubs}, {RankK, SuitSpades}})
	withQueenKicker, _ := Evaluate5([]Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankA, SuitDiamonds}, {RankA, SuitClubs}, {RankQ, SuitSpades}})
	if withKingKicker.Compare(withQueenKicker) <= 0 {
		t.Errorf("king kicker should beat queen kicker on equal quads")
	}
}

func TestEvaluateBestFromSeven(t *testing.T) {
	hole := []Card{{RankA, SuitSpades}, {RankK, SuitHearts}}
	board := []Card{{RankQ, SuitDiamonds}, {RankJ, SuitClubs}, {Rank10, SuitSpades}, {Rank9, SuitHearts}, {Rank2, SuitDiamonds}}
	all := append(append([]Card{}, hole...), board...)

	best, err := EvaluateBest(all)
	if err != nil {
		t.Fatalf("EvaluateBest: %v", err)
	}
	if best.Category != Straight {
		t.Errorf("got %v, want Straight (A-K-Q-J-10)", best.Category)
	}
}

func TestEvaluateBestAgreesWithEnumeration(t *testing.T) {
	all := []Card{
		{RankA, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades},
		{Rank10, SuitSpades}, {Rank2, SuitHearts}, {Rank3, SuitClubs},
	}

	best, err := EvaluateBest(all)
	if err != nil {
		t.Fatalf("EvaluateBest: %v", err)
	}

	var manualBest EvaluatedHand
	first := true
	forEachCombination(all, 5, func(combo []Card) {
		h, err := Evaluate5(combo)
		if err != nil {
			t.Fatalf("Evaluate5: %v", err)
		}
		if first || h.Compare(manualBest) > 0 {
			manualBest = h
			first = false
		}
	})

	if best.TotalOrder != manualBest.TotalOrder {
		t.Errorf("EvaluateBest disagreed with manual max over C(7,5): got %d, want %d", best.TotalOrder, manualBest.TotalOrder)
	}
	if best.Category != RoyalFlush {
		t.Errorf("expected royal flush, got %v", best.Category)
	}
}

func TestStraightFlushBeatsFlushBeatsStraight(t *testing.T) {
	sf, _ := Evaluate5([]Card{{Rank9, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades}, {Rank10, SuitSpades}})
	fl, _ := Evaluate5([]Card{{Rank2, SuitSpades}, {RankK, SuitSpades}, {RankQ, SuitSpades}, {RankJ, SuitSpades}, {Rank9, SuitSpades}})
	st, _ := Evaluate5([]Card{{Rank9, SuitClubs}, {RankK, SuitSpades}, {RankQ, SuitDiamonds}, {RankJ, SuitHearts}, {Rank10, SuitSpades}})

	if sf.Compare(fl) <= 0 {
		t.Errorf("straight flush should beat flush")
	}
	if fl.Compare(st) <= 0 {
		t.Errorf("flush should beat straight")
	}
}

func TestEqualHandsTie(t *testing.T) {
	h1, _ := Evaluate5([]Card{{RankA, SuitSpades}, {RankA, SuitHearts}, {RankK, SuitDiamonds}, {RankQ, SuitClubs}, {RankJ, SuitSpades}})
	h2, _ := Evaluate5([]Card{{RankA, SuitClubs}, {RankA, SuitDiamonds}, {RankK, SuitSpades}, {RankQ, SuitHearts}, {RankJ, SuitClubs}})
	if h1.Compare(h2) != 0 {
		t.Errorf("identical ranks across different suits must tie")
	}
}
