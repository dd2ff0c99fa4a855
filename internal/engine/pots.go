package engine

import "sort"

// computePots rebuilds the main pot and every side pot from each seat's
// TotalCommitted for the hand (spec §4.3). Folded seats still contribute
// their chips to the pots they funded but are never eligible to win.
//
// The algorithm walks the distinct commitment levels in ascending order.
// At each level, the pot layer between the previous and current level is
// funded by every seat that committed at least the current level, and is
// eligible to every such seat that has not folded. Adjacent layers that
// end up with an identical eligible set are merged into one pot so two
// players who are both all-in for the same amount don't get needlessly
// split pots.
func computePots(t *Table) []Pot {
	type commitment struct {
		playerID string
		position int
		amount   int64
		folded   bool
	}

	var commits []commitment
	for _, s := range t.Seats {
		if s == nil || s.TotalCommitted == 0 {
			continue
		}
		commits = append(commits, commitment{
			playerID: s.PlayerID,
			position: s.Position,
			amount:   s.TotalCommitted,
			folded:   s.IsFolded(),
		})
	}
	if len(commits) == 0 {
		return nil
	}

	levelSet := make(map[int64]bool)
	for _, c := range commits {
		levelSet[c.amount] = true
	}
	levels := make([]int64, 0, len(levelSet))
	for lvl := range levelSet {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var pots []Pot
	var prev int64
	for _, level := range levels {
		layerPerSeat := level - prev
		if layerPerSeat <= 0 {
			prev = level
			continue
		}

		var amount int64
		eligible := make(map[string]bool)
		for _, c := range commits {
			if c.amount < level {
				continue
			}
			amount += layerPerSeat
			if !c.folded {
				eligible[c.playerID] = true
			}
		}

		if len(eligible) > 0 {
			pots = append(pots, Pot{Amount: amount, Eligible: eligible})
		} else if len(pots) > 0 {
			// Every contributor to this layer folded; the chips still
			// belong to the pot below it rather than vanishing.
			pots[len(pots)-1].Amount += amount
		}
		prev = level
	}

	return mergeAdjacentPots(pots)
}

func mergeAdjacentPots(pots []Pot) []Pot {
	if len(pots) < 2 {
		return pots
	}
	merged := []Pot{pots[0]}
	for _, p := range pots[1:] {
		last := &merged[len(merged)-1]
		if sameEligibility(last.Eligible, p.Eligible) {
			last.Amount += p.Amount
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

func sameEligibility(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
