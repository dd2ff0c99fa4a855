package engine

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"poker-platform/pkg/poker"
)

// HandResult summarizes a concluded hand for hand history and downstream
// event publishing (spec §4.7, supplemented hand-history event).
type HandResult struct {
	HandNumber int              `json:"handNumber"`
	Uncontested bool            `json:"uncontested"` // true if every pot went to a single non-folded player, no showdown
	Payouts    map[string]int64 `json:"payouts"`      // playerID -> chips won
	Hands      map[string]poker.EvaluatedHand `json:"hands,omitempty"` // playerID -> best hand, only seats who reached showdown
}

// resolveShowdown awards every pot to its rightful winner(s) and credits
// seat chip stacks directly. holeCards must contain an entry for every
// seat still in the hand when the showdown path requires evaluation; the
// single-survivor fast path never looks at hole cards at all, so a
// folded-around hand never needs to reveal anything.
func resolveShowdown(t *Table, holeCards map[string][]poker.Card) (*HandResult, error) {
	if t.Hand == nil {
		return nil, ErrNoHandInProgress
	}

	pots := t.Hand.Pots
	if pots == nil {
		pots = computePots(t)
	}

	result := &HandResult{HandNumber: t.Hand.Number, Payouts: make(map[string]int64)}

	live := liveSeats(t)
	nonFolded := make([]*Seat, 0, len(live))
	for _, s := range t.Seats {
		if s != nil && !s.IsFolded() && (s.Status == SeatPlaying || s.Status == SeatAllIn) {
			nonFolded = append(nonFolded, s)
		}
	}

	if len(nonFolded) == 1 {
		result.Uncontested = true
		winner := nonFolded[0]
		for _, p := range pots {
			winner.Chips += p.Amount
			result.Payouts[winner.PlayerID] += p.Amount
		}
		finishHand(t)
		return result, nil
	}

	evaluated := make(map[string]poker.EvaluatedHand, len(nonFolded))
	var mu sync.Mutex
	var g errgroup.Group
	for _, s := range nonFolded {
		s := s
		g.Go(func() error {
			cards := append(append([]poker.Card(nil), holeCards[s.PlayerID]...), t.Hand.CommunityCards...)
			hand, err := poker.EvaluateBest(cards)
			if err != nil {
				return NewError(Internal, "evaluate hand for %s: %v", s.PlayerID, err)
			}
			mu.Lock()
			evaluated[s.PlayerID] = hand
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Hands = evaluated

	startPos := t.Hand.SmallBlindPosition
	n := len(t.Seats)

	for _, pot := range pots {
		var winners []*Seat
		var best poker.EvaluatedHand
		first := true
		for _, s := range nonFolded {
			if !pot.Eligible[s.PlayerID] {
				continue
			}
			hand := evaluated[s.PlayerID]
			if first || hand.Compare(best) > 0 {
				best = hand
				winners = []*Seat{s}
				first = false
			} else if hand.Compare(best) == 0 {
				winners = append(winners, s)
			}
		}
		if len(winners) == 0 {
			continue
		}

		sort.Slice(winners, func(i, j int) bool {
			return offsetFrom(startPos, winners[i].Position, n) < offsetFrom(startPos, winners[j].Position, n)
		})

		share := pot.Amount / int64(len(winners))
		remainder := pot.Amount % int64(len(winners))
		for i, w := range winners {
			amount := share
			if int64(i) < remainder {
				amount++
			}
			w.Chips += amount
			result.Payouts[w.PlayerID] += amount
		}
	}

	finishHand(t)
	return result, nil
}

// finishHand clears hand state and rolls seats back to between-hands
// status, so the next startHand call sees a clean table.
func finishHand(t *Table) {
	t.HandCount++
	for _, s := range t.Seats {
		if s == nil {
			continue
		}
		s.Status = SeatSitting // back to sitting out until the next startHand deals them in
		s.CurrentBet = 0
		s.TotalCommitted = 0
		s.HasActed = false
		s.IsDealer = false
		s.IsSmallBlind = false
		s.IsBigBlind = false
	}
	t.Hand = nil
	t.Status = TableWaiting
}
