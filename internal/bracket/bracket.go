package bracket

import "math"

type GrandFinalMode string

const (
	// GrandFinalReset plays a second grand final if the losers-bracket
	// finalist wins the first one.
	GrandFinalReset  GrandFinalMode = "reset"
	GrandFinalSingle GrandFinalMode = "single"
)

// Bracket is the full match set of one tournament stage. All matches,
// including future-round placeholders, exist from generation onward;
// matches are never created lazily or deleted.
type Bracket struct {
	Size    int            `json:"size"`
	Mode    GrandFinalMode `json:"mode"`
	Matches []*Match       `json:"matches"`

	index map[int]*Match
}

// New assembles a bracket around an existing match set, e.g. one loaded
// from storage. Generation lives in the engine package.
func New(size int, mode GrandFinalMode, matches []*Match) *Bracket {
	b := &Bracket{Size: size, Mode: mode, Matches: matches}
	b.index = make(map[int]*Match, len(matches))
	for _, m := range matches {
		b.index[m.ID] = m
	}
	return b
}

func (b *Bracket) Match(id int) *Match {
	return b.index[id]
}

func (b *Bracket) Add(m *Match) {
	b.Matches = append(b.Matches, m)
	b.index[m.ID] = m
}

// GrandFinal returns the first finals match, nil before generation.
func (b *Bracket) GrandFinal() *Match {
	for _, m := range b.Matches {
		if m.BracketSide == FinalsSide && !m.IsGrandFinalsReset {
			return m
		}
	}
	return nil
}

// Reset returns the second grand final, nil when the bracket was built
// without one.
func (b *Bracket) Reset() *Match {
	for _, m := range b.Matches {
		if m.IsGrandFinalsReset {
			return m
		}
	}
	return nil
}

// Round returns the matches of one round ordered by match order. Matches
// are stored in generation order, which is already round-major.
func (b *Bracket) Round(side BracketSide, round int) []*Match {
	var out []*Match
	for _, m := range b.Matches {
		if m.BracketSide == side && m.RoundNumber == round {
			out = append(out, m)
		}
	}
	return out
}

// RoundComplete reports whether no match of the round is still pending.
// Void and bye-decided matches count as complete.
func (b *Bracket) RoundComplete(side BracketSide, round int) bool {
	for _, m := range b.Matches {
		if m.BracketSide == side && m.RoundNumber == round && m.Status == MatchPending {
			return false
		}
	}
	return true
}

// WinnersRounds is ceil(log2(size)) for a power-of-two bracket size.
func WinnersRounds(size int) int {
	if size < 2 {
		return 0
	}
	return int(math.Round(math.Log2(float64(size))))
}

// LosersRounds follows the 2W-2 convention: the winners-bracket final's
// loser drops into the last losers round. A two-player bracket has no
// losers rounds; its lone loser goes straight to the grand final.
func LosersRounds(size int) int {
	if size < 4 {
		return 0
	}
	return 2*WinnersRounds(size) - 2
}
