package engine

import "time"

// applyAction validates and applies one player action against the hand in
// progress, recording it to the action history. raiseTo is the seat's
// target CurrentBet after a raise or all-in ("raise to" semantics); it is
// ignored for fold/check/call.
//
// The legality rules mirror a standard no-limit table (spec §4.6):
//   - fold is always legal while it's your turn.
//   - check is legal only when nothing is owed (CurrentBet == round bet).
//   - call commits min(round bet - CurrentBet, remaining chips); calling
//     with insufficient chips is an automatic all-in for less.
//   - raise must bring CurrentBet to at least round bet + MinRaise, unless
//     it commits every remaining chip (a short all-in raise, which does
//     not reopen the betting round for players who already face the
//     larger of the two bets and have already acted against it).
func applyAction(t *Table, playerID string, kind ActionKind, raiseTo int64, now time.Time) error {
	if t.Hand == nil {
		return ErrNoHandInProgress
	}
	seat := t.SeatOf(playerID)
	if seat == nil {
		return ErrPlayerNotSeated
	}
	if seat.Position != t.Hand.CurrentPlayerPosition {
		return ErrNotYourTurn
	}
	if !seat.canAct() {
		return NewError(FailedPrecondition, "player cannot act: not in the hand or already all-in")
	}

	owe := t.Hand.Betting.CurrentBet - seat.CurrentBet

	switch kind {
	case ActionFold:
		seat.Status = SeatFolded

	case ActionCheck:
		if owe > 0 {
			return NewError(InvalidArgument, "cannot check: %d chips owed to call", owe)
		}

	case ActionCall:
		if owe <= 0 {
			return NewError(InvalidArgument, "nothing to call, use check")
		}
		amount := owe
		if amount >= seat.Chips {
			amount = seat.Chips
			seat.Status = SeatAllIn
		}
		commit(seat, amount)

	case ActionRaise:
		if raiseTo <= t.Hand.Betting.CurrentBet {
			return NewError(InvalidArgument, "raise target %d must exceed the current bet %d", raiseTo, t.Hand.Betting.CurrentBet)
		}
		delta := raiseTo - seat.CurrentBet
		if delta > seat.Chips {
			return NewError(InvalidArgument, "raise target %d exceeds available chips", raiseTo)
		}
		isFullRaise := raiseTo >= t.Hand.Betting.CurrentBet+t.Hand.Betting.MinRaise
		if !isFullRaise && delta != seat.Chips {
			return NewError(InvalidArgument, "raise must be at least %d more than the current bet unless going all-in", t.Hand.Betting.MinRaise)
		}
		if isFullRaise {
			t.Hand.Betting.MinRaise = raiseTo - t.Hand.Betting.CurrentBet
		}
		reopensAction := isFullRaise
		commit(seat, delta)
		t.Hand.Betting.CurrentBet = seat.CurrentBet
		t.Hand.Betting.LastAggressorPos = seat.Position
		if seat.Chips == 0 {
			seat.Status = SeatAllIn
		}
		if reopensAction {
			resetActedExcept(t, seat.Position)
		}

	case ActionAllIn:
		delta := seat.Chips
		newBet := seat.CurrentBet + delta
		isFullRaise := newBet >= t.Hand.Betting.CurrentBet+t.Hand.Betting.MinRaise
		commit(seat, delta)
		seat.Status = SeatAllIn
		if newBet > t.Hand.Betting.CurrentBet {
			if isFullRaise {
				t.Hand.Betting.MinRaise = newBet - t.Hand.Betting.CurrentBet
			}
			t.Hand.Betting.CurrentBet = newBet
			t.Hand.Betting.LastAggressorPos = seat.Position
			if isFullRaise {
				resetActedExcept(t, seat.Position)
			}
		}

	default:
		return NewError(InvalidArgument, "unknown action kind %q", kind)
	}

	seat.HasActed = true
	if t.Hand.Phase == PhasePreflop && seat.Position == t.Hand.BigBlindPosition {
		t.Hand.Betting.BigBlindOptionUsed = true
	}

	t.Hand.Actions = append(t.Hand.Actions, ActionRecord{
		PlayerID: playerID,
		Phase:    t.Hand.Phase,
		Kind:     kind,
		Amount:   seat.CurrentBet,
		At:       now,
	})

	advanceAfterAction(t, now)
	return nil
}

// commit moves amount chips from seat's stack into its round and hand
// commitments.
func commit(seat *Seat, amount int64) {
	seat.Chips -= amount
	seat.CurrentBet += amount
	seat.TotalCommitted += amount
}

// resetActedExcept clears HasActed for every live seat except the
// aggressor, since a full raise reopens the action for everyone behind it.
func resetActedExcept(t *Table, exceptPosition int) {
	for _, s := range t.Seats {
		if s == nil || s.Position == exceptPosition {
			continue
		}
		if s.Status == SeatPlaying {
			s.HasActed = false
		}
	}
}
