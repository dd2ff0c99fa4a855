package engine

import (
	"time"

	"poker-platform/pkg/poker"
)

// startHand deals a new hand into t: rotates the dealer button, posts
// blinds, deals two hole cards to every seat dealt into the hand, and
// sets the action on the first player to act preflop (spec §4.4, §4.5).
// Hole cards are written into holeCards (keyed by playerID) rather than
// onto Table itself — they live in a separate, server-private part of
// the document (see store.go) so a snapshot read of Table never leaks
// them.
func startHand(t *Table, holeCards map[string][]poker.Card, shuffler *poker.Shuffler, now time.Time) error {
	occupied := occupiedPositions(t)
	if len(occupied) < 2 {
		return ErrNotEnoughPlayers
	}

	dealer := rotateDealer(t)
	t.LastDealerPosition = dealer
	sb, bb := blindPositions(t, dealer)
	dealInSittingPlayers(t, dealer, bb)

	playing := 0
	for _, s := range t.Seats {
		if s == nil {
			continue
		}
		if s.Status == SeatPlaying && s.Chips > 0 {
			playing++
		}
		s.CurrentBet = 0
		s.TotalCommitted = 0
		s.HasActed = false
		s.IsDealer = s.Position == dealer
		s.IsSmallBlind = s.Position == sb
		s.IsBigBlind = s.Position == bb
	}
	if playing < 2 {
		return ErrNotEnoughPlayers
	}

	deck := poker.NewDeck()
	if err := shuffler.ShuffleMultiple(deck, poker.DefaultShuffleCount); err != nil {
		return NewError(Internal, "shuffle: %v", err)
	}

	hand := &Hand{
		Number:                t.HandCount + 1,
		Phase:                 PhasePreflop,
		DealerPosition:        dealer,
		SmallBlindPosition:    sb,
		BigBlindPosition:      bb,
		Betting:               BettingRound{MinRaise: t.Settings.BigBlind, LastAggressorPos: -1},
		ActionDeadline:        now.Add(t.Settings.ActionTimer),
	}

	for k := range holeCards {
		delete(holeCards, k)
	}
	for _, pos := range occupied {
		s := t.Seats[pos]
		if s.Status != SeatPlaying {
			continue
		}
		var dealt []poker.Card
		dealt, deck = poker.Deal(deck, 2)
		holeCards[s.PlayerID] = dealt
	}
	hand.Deck = deck

	postBlind(t, hand, sb, t.Settings.SmallBlind)
	postBlind(t, hand, bb, t.Settings.BigBlind)
	hand.Betting.CurrentBet = t.Settings.BigBlind

	t.Hand = hand
	t.Status = TablePlaying

	first := firstToActPreflop(t, dealer, sb, bb)
	t.Hand.CurrentPlayerPosition = first
	if first == -1 {
		advanceAfterAction(t, now)
	}
	return nil
}

func postBlind(t *Table, hand *Hand, position int, amount int64) {
	s := t.SeatAt(position)
	if s == nil || s.Status != SeatPlaying {
		return
	}
	if amount >= s.Chips {
		amount = s.Chips
		s.Status = SeatAllIn
	}
	commit(s, amount)
}

// liveSeats returns seats still in the hand (playing or all-in, not
// folded and not merely sitting out).
func liveSeats(t *Table) []*Seat {
	var out []*Seat
	for _, s := range t.Seats {
		if s != nil && (s.Status == SeatPlaying || s.Status == SeatAllIn) {
			out = append(out, s)
		}
	}
	return out
}

// roundComplete reports whether every seat that can still act this round
// has acted and matched the current bet (or gone all-in for less).
func roundComplete(t *Table) bool {
	for _, s := range t.Seats {
		if s == nil || s.Status != SeatPlaying {
			continue
		}
		if !s.HasActed || s.CurrentBet != t.Hand.Betting.CurrentBet {
			return false
		}
	}
	return true
}

// advanceAfterAction moves the hand forward after an action has been
// applied: to the next player to act, to the next street, or to
// PhaseShowdown if the hand is decided. It never resolves a showdown
// itself — resolveShowdown (showdown.go) needs hole cards, which live
// outside Table.
func advanceAfterAction(t *Table, now time.Time) {
	live := liveSeats(t)
	if len(live) <= 1 {
		t.Hand.Phase = PhaseShowdown
		t.Hand.CurrentPlayerPosition = -1
		return
	}

	if !roundComplete(t) {
		next := nextPlayingPosition(t, t.Hand.CurrentPlayerPosition)
		if next == -1 {
			// No seat left that can still voluntarily act (everyone else
			// is folded or all-in): run the remaining streets out.
			runOutRemainingStreets(t)
			return
		}
		t.Hand.CurrentPlayerPosition = next
		t.Hand.ActionDeadline = now.Add(t.Settings.ActionTimer)
		return
	}

	if t.Hand.Phase == PhaseRiver {
		t.Hand.Phase = PhaseShowdown
		t.Hand.CurrentPlayerPosition = -1
		return
	}

	completeBettingRound(t)

	if countCanAct(t) < 2 {
		runOutRemainingStreets(t)
		return
	}

	first := firstToActPostflop(t, t.Hand.DealerPosition)
	t.Hand.CurrentPlayerPosition = first
	if first == -1 {
		runOutRemainingStreets(t)
		return
	}
	t.Hand.ActionDeadline = now.Add(t.Settings.ActionTimer)
}

// countCanAct returns how many seats remain that could still take a
// voluntary action (playing, with chips, not all-in).
func countCanAct(t *Table) int {
	n := 0
	for _, s := range t.Seats {
		if s != nil && s.canAct() {
			n++
		}
	}
	return n
}

// completeBettingRound deals the next street's community cards and resets
// per-round betting state.
func completeBettingRound(t *Table) {
	switch t.Hand.Phase {
	case PhasePreflop:
		t.Hand.Phase = PhaseFlop
		dealCommunity(t, 3)
	case PhaseFlop:
		t.Hand.Phase = PhaseTurn
		dealCommunity(t, 1)
	case PhaseTurn:
		t.Hand.Phase = PhaseRiver
		dealCommunity(t, 1)
	default:
		return
	}

	for _, s := range t.Seats {
		if s != nil {
			s.CurrentBet = 0
			s.HasActed = false
		}
	}
	t.Hand.Betting.CurrentBet = 0
	t.Hand.Betting.MinRaise = t.Settings.BigBlind
	t.Hand.Betting.LastAggressorPos = -1
}

func dealCommunity(t *Table, n int) {
	var dealt []poker.Card
	dealt, t.Hand.Deck = poker.Deal(t.Hand.Deck, n)
	t.Hand.CommunityCards = append(t.Hand.CommunityCards, dealt...)
}

// runOutRemainingStreets deals every street through the river without
// further betting, for the all-in-runout case, then moves to showdown.
func runOutRemainingStreets(t *Table) {
	for t.Hand.Phase != PhaseRiver {
		completeBettingRound(t)
	}
	t.Hand.Phase = PhaseShowdown
	t.Hand.CurrentPlayerPosition = -1
}
