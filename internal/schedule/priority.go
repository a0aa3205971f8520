package schedule

import "github.com/chalkline/bracketd/internal/bracket"

// Priority bands. Every winners round owns a band; losers rounds slot in
// just below the winners round they may run in parallel with, finals sit
// above everything.
const (
	bandWidth       = 100.0
	finalsBase      = 1e6
	parallelOffset  = 10.0
	oddRoundOffset  = 20.0
	blockedLoserMax = 50.0
)

// Config carries the scheduling knobs. LoserWeight uniformly amplifies
// losers-bracket priority: above 1.0 losers matches compete harder for
// shared tables, below 1.0 the winners bracket starves them. It tunes
// throughput, not correctness.
type Config struct {
	LoserWeight float64
}

func DefaultConfig() Config {
	return Config{LoserWeight: 1.0}
}

func (c Config) loserWeight() float64 {
	if c.LoserWeight <= 0 {
		return 1.0
	}
	return c.LoserWeight
}

// winnersBand ranks winners rounds descending: round 1 gets the highest
// band so the bracket drains front to back.
func winnersBand(size, round int) float64 {
	return float64(bracket.WinnersRounds(size)-round+2) * bandWidth
}

// Priority imposes the total order used to pick the next match for a free
// table:
//
//  1. Grand finals (reset included) outrank everything.
//  2. Winners matches rank by ascending round.
//  3. An even losers round r runs in parallel with winners round r/2+1 and
//     sits immediately below it. An odd losers round r may only start once
//     winners round (r+1)/2 has fully completed; until then it is parked
//     near the bottom.
//
// Ties are broken by the comparison in byPriority, not here.
func Priority(m *bracket.Match, b *bracket.Bracket, cfg Config) float64 {
	switch m.BracketSide {
	case bracket.FinalsSide:
		return finalsBase - float64(m.RoundNumber)
	case bracket.WinnersSide:
		return winnersBand(b.Size, m.RoundNumber)
	}

	r := m.RoundNumber
	var p float64
	if r%2 == 0 {
		p = winnersBand(b.Size, r/2+1) - parallelOffset
	} else {
		dependency := (r + 1) / 2
		if b.RoundComplete(bracket.WinnersSide, dependency) {
			p = winnersBand(b.Size, dependency+1) - oddRoundOffset
		} else {
			p = blockedLoserMax - float64(r)
		}
	}
	return p * cfg.loserWeight()
}

// byPriority orders ready matches deterministically: priority descending,
// then ascending round, then ascending match order, then ID.
func byPriority(b *bracket.Bracket, cfg Config, matches []*bracket.Match) func(i, j int) bool {
	return func(i, j int) bool {
		pi, pj := Priority(matches[i], b, cfg), Priority(matches[j], b, cfg)
		if pi != pj {
			return pi > pj
		}
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		if matches[i].MatchOrder != matches[j].MatchOrder {
			return matches[i].MatchOrder < matches[j].MatchOrder
		}
		return matches[i].ID < matches[j].ID
	}
}
