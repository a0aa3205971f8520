package engine

import (
	"fmt"
	"math"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/utils"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// Fold seeding: seed 0 meets the last seed, the two halves mirror each
// other so top seeds cannot meet before the late rounds.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		matchup := [2]int{rounds[i], rounds[i+1]}
		pairs = append(pairs, matchup)
	}

	return pairs
}

// losersRoundSize is the match count of losers round r: rounds come in
// pairs of equal size, halving every other round.
func losersRoundSize(size, r int) int {
	k := (r + 1) / 2
	return size >> (k + 1)
}

// Generate builds the complete double-elimination bracket for the given
// roster: every winners, losers and finals match exists afterwards, with
// winner/loser routing fixed and byes already cascaded through.
func Generate(players []bracket.Player, mode bracket.GrandFinalMode) (*bracket.Bracket, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrRosterTooSmall, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.Name == "" || p.Name == bracket.ByeName {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, p.Name)
		}
		seen[p.Name] = true
	}

	size := calcBracketSize(len(players))
	wbRounds := bracket.WinnersRounds(size)
	lbRounds := bracket.LosersRounds(size)

	var matches []*bracket.Match
	nextID := 1
	newMatch := func(side bracket.BracketSide, round, order int) *bracket.Match {
		m := &bracket.Match{
			ID:          nextID,
			BracketSide: side,
			RoundNumber: round,
			MatchOrder:  order,
			Status:      bracket.MatchPending,
		}
		nextID++
		matches = append(matches, m)
		return m
	}

	wb := make([][]*bracket.Match, wbRounds+1)
	for r := 1; r <= wbRounds; r++ {
		count := size >> r
		for i := 0; i < count; i++ {
			wb[r] = append(wb[r], newMatch(bracket.WinnersSide, r, i+1))
		}
	}

	lb := make([][]*bracket.Match, lbRounds+1)
	for r := 1; r <= lbRounds; r++ {
		count := losersRoundSize(size, r)
		for i := 0; i < count; i++ {
			lb[r] = append(lb[r], newMatch(bracket.LosersSide, r, i+1))
		}
	}

	grandFinal := newMatch(bracket.FinalsSide, 1, 1)
	if mode == bracket.GrandFinalReset {
		reset := newMatch(bracket.FinalsSide, 2, 1)
		reset.IsGrandFinalsReset = true
	}

	// Winner routing: straight pairwise merge up the winners bracket,
	// the winners final feeding grand-final slot 1.
	for r := 1; r < wbRounds; r++ {
		for i, m := range wb[r] {
			next := wb[r+1][i/2]
			m.WinnerTo = next.ID
			m.WinnerToSlot = i%2 + 1
		}
	}
	wbFinal := wb[wbRounds][0]
	wbFinal.WinnerTo = grandFinal.ID
	wbFinal.WinnerToSlot = 1

	if lbRounds == 0 {
		// Two players: the lone loser waits in the grand final.
		wbFinal.LoserTo = grandFinal.ID
		wbFinal.LoserToSlot = 2
	} else {
		wireLoserRouting(wb, lb, grandFinal)
	}

	b := bracket.New(size, mode, matches)

	// Seed round 1 from the padded roster; seats past the roster are byes.
	pairs := generateRound1Pairs(size)
	nameAt := func(idx int) string {
		if idx < len(players) {
			return players[idx].Name
		}
		return bracket.ByeName
	}
	for j, pair := range pairs {
		wb[1][j].Slot1 = nameAt(pair[0])
		wb[1][j].Slot2 = nameAt(pair[1])
	}

	if err := resolveByes(b); err != nil {
		return nil, err
	}
	return b, nil
}

// wireLoserRouting fixes where every winners-bracket loser drops.
//
// Round 1 losers pair by index reversal across the bracket halves, so the
// losers out of adjacent winners matches land in different losers matches.
// Later drop rounds alternate a reversal (even winners rounds) with a
// half-rotation (odd winners rounds); past the semifinal-equivalent rounds
// the shrunken pool makes rematch avoidance best-effort only.
func wireLoserRouting(wb, lb [][]*bracket.Match, grandFinal *bracket.Match) {
	round1 := wb[1]
	m1 := len(round1)
	for i, m := range round1 {
		if i < m1/2 {
			m.LoserTo = lb[1][i].ID
			m.LoserToSlot = 1
		} else {
			m.LoserTo = lb[1][m1-1-i].ID
			m.LoserToSlot = 2
		}
	}

	wbRounds := len(wb) - 1
	for r := 2; r <= wbRounds; r++ {
		drop := 2 * (r - 1)
		count := len(wb[r])
		for i, m := range wb[r] {
			var target int
			if r%2 == 0 {
				target = count - 1 - i
			} else {
				target = (i + count/2) % count
			}
			m.LoserTo = lb[drop][target].ID
			m.LoserToSlot = 2
		}
	}

	// Losers-bracket internal advancement: odd rounds feed the paired
	// even round one-to-one into slot 1 (slot 2 is the winners drop),
	// even rounds merge pairwise into the next odd round.
	lbRounds := len(lb) - 1
	for r := 1; r < lbRounds; r++ {
		for i, m := range lb[r] {
			if r%2 == 1 {
				next := lb[r+1][i]
				m.WinnerTo = next.ID
				m.WinnerToSlot = 1
			} else {
				next := lb[r+1][i/2]
				m.WinnerTo = next.ID
				m.WinnerToSlot = i%2 + 1
			}
		}
	}
	lbFinal := lb[lbRounds][0]
	lbFinal.WinnerTo = grandFinal.ID
	lbFinal.WinnerToSlot = 2
}

// resolveByes cascades automatic advancement: any pending match holding a
// bye is decided on the spot and its outcome pushed along the routing
// pointers, repeating until the bracket is stable.
func resolveByes(b *bracket.Bracket) error {
	for changed := true; changed; {
		changed = false
		for _, m := range b.Matches {
			if m.Status != bracket.MatchPending || m.Slot1 == "" || m.Slot2 == "" {
				continue
			}
			if m.Slot1 != bracket.ByeName && m.Slot2 != bracket.ByeName {
				continue
			}

			winnerSlot := 1
			if m.Slot1 == bracket.ByeName && m.Slot2 != bracket.ByeName {
				winnerSlot = 2
			}
			m.WinnerSlot = utils.Ptr(winnerSlot)
			m.Status = bracket.MatchFinished
			m.IsBye = true

			if err := placeSlot(b, m.WinnerTo, m.WinnerToSlot, m.Winner()); err != nil {
				return err
			}
			if m.LoserTo != 0 {
				if err := placeSlot(b, m.LoserTo, m.LoserToSlot, m.Loser()); err != nil {
					return err
				}
			}
			changed = true
		}
	}
	return nil
}

// placeSlot advances a player into a downstream seat. Finding the seat
// held by somebody else is a structural defect and fails fast.
func placeSlot(b *bracket.Bracket, matchID, slot int, name string) error {
	if matchID == 0 {
		return nil
	}
	target := b.Match(matchID)
	if target == nil {
		return fmt.Errorf("%w: routed to missing match %d", ErrCorruptBracket, matchID)
	}
	if current := target.Slot(slot); current != "" && current != name {
		return fmt.Errorf("%w: match %d slot %d already holds %q", ErrCorruptBracket, matchID, slot, current)
	}
	target.SetSlot(slot, name)
	return nil
}
