package engine

import (
	"testing"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourPlayerBracket builds the 7-match reset-mode bracket for players
// A, B, C, D. Fold seeding pairs A-D and B-C in round 1. Match IDs follow
// generation order: 1, 2 winners round 1; 3 winners final; 4, 5 losers
// rounds; 6 grand final; 7 reset.
func fourPlayerBracket(t *testing.T) *bracket.Bracket {
	t.Helper()
	players := []bracket.Player{
		{Name: "A", Seed: 1}, {Name: "B", Seed: 2},
		{Name: "C", Seed: 3}, {Name: "D", Seed: 4},
	}
	b, err := Generate(players, bracket.GrandFinalReset)
	require.NoError(t, err)
	require.Len(t, b.Matches, 7)
	return b
}

func TestApplyResultFullRun(t *testing.T) {
	b := fourPlayerBracket(t)

	m1, m2 := b.Match(1), b.Match(2)
	assert.Equal(t, "A", m1.Slot1)
	assert.Equal(t, "D", m1.Slot2)
	assert.Equal(t, "B", m2.Slot1)
	assert.Equal(t, "C", m2.Slot2)

	require.NoError(t, ApplyResult(b, 1, 7, 5)) // A beats D
	require.NoError(t, ApplyResult(b, 2, 7, 3)) // B beats C

	winnersFinal := b.Match(3)
	assert.Equal(t, "A", winnersFinal.Slot1)
	assert.Equal(t, "B", winnersFinal.Slot2)

	// Losers pair up crosswise so round 1 opponents cannot meet again.
	losers1 := b.Match(4)
	assert.Equal(t, "D", losers1.Slot1)
	assert.Equal(t, "C", losers1.Slot2)

	require.NoError(t, ApplyResult(b, 4, 2, 7)) // C beats D
	require.NoError(t, ApplyResult(b, 3, 7, 4)) // A beats B

	losers2 := b.Match(5)
	assert.Equal(t, "C", losers2.Slot1)
	assert.Equal(t, "B", losers2.Slot2)

	require.NoError(t, ApplyResult(b, 5, 3, 7)) // B beats C

	grandFinal := b.Match(6)
	assert.Equal(t, "A", grandFinal.Slot1)
	assert.Equal(t, "B", grandFinal.Slot2)

	_, ok := Champion(b)
	assert.False(t, ok)

	require.NoError(t, ApplyResult(b, 6, 7, 1)) // A wins from the winners side

	// The undefeated champion makes the reset moot.
	assert.Equal(t, bracket.MatchVoid, b.Reset().Status)
	assert.True(t, IsComplete(b))

	champion, ok := Champion(b)
	require.True(t, ok)
	assert.Equal(t, "A", champion)
}

func TestApplyResultGrandFinalReset(t *testing.T) {
	b := fourPlayerBracket(t)

	require.NoError(t, ApplyResult(b, 1, 7, 5))
	require.NoError(t, ApplyResult(b, 2, 7, 3))
	require.NoError(t, ApplyResult(b, 4, 2, 7))
	require.NoError(t, ApplyResult(b, 3, 7, 4))
	require.NoError(t, ApplyResult(b, 5, 3, 7))

	// The losers-bracket finalist takes the first grand final, forcing
	// the rematch.
	require.NoError(t, ApplyResult(b, 6, 2, 7)) // B beats A

	reset := b.Reset()
	assert.Equal(t, bracket.MatchPending, reset.Status)
	assert.Equal(t, "A", reset.Slot1)
	assert.Equal(t, "B", reset.Slot2)
	assert.False(t, IsComplete(b))

	require.NoError(t, ApplyResult(b, 7, 7, 6)) // A takes the rematch

	assert.True(t, IsComplete(b))
	champion, ok := Champion(b)
	require.True(t, ok)
	assert.Equal(t, "A", champion)
}

func TestApplyResultSingleMode(t *testing.T) {
	players := []bracket.Player{
		{Name: "A", Seed: 1}, {Name: "B", Seed: 2},
		{Name: "C", Seed: 3}, {Name: "D", Seed: 4},
	}
	b, err := Generate(players, bracket.GrandFinalSingle)
	require.NoError(t, err)
	require.Len(t, b.Matches, 6)
	require.Nil(t, b.Reset())

	require.NoError(t, ApplyResult(b, 1, 7, 5))
	require.NoError(t, ApplyResult(b, 2, 7, 3))
	require.NoError(t, ApplyResult(b, 4, 2, 7))
	require.NoError(t, ApplyResult(b, 3, 7, 4))
	require.NoError(t, ApplyResult(b, 5, 3, 7))
	require.NoError(t, ApplyResult(b, 6, 2, 7)) // B wins, no rematch in single mode

	assert.True(t, IsComplete(b))
	champion, ok := Champion(b)
	require.True(t, ok)
	assert.Equal(t, "B", champion)
}

func TestApplyResultValidation(t *testing.T) {
	testCases := []struct {
		name        string
		matchID     int
		score1      int
		score2      int
		expectedErr error
	}{
		{
			name:        "unknown match",
			matchID:     99,
			score1:      7,
			score2:      0,
			expectedErr: ErrMatchNotFound,
		},
		{
			name:        "tied score",
			matchID:     1,
			score1:      5,
			score2:      5,
			expectedErr: ErrTiedScore,
		},
		{
			name:        "negative score",
			matchID:     1,
			score1:      -1,
			score2:      7,
			expectedErr: ErrNegativeScore,
		},
		{
			name:        "unresolved opponents",
			matchID:     3,
			score1:      7,
			score2:      0,
			expectedErr: ErrMissingOpponent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := fourPlayerBracket(t)
			err := ApplyResult(b, tc.matchID, tc.score1, tc.score2)
			assert.ErrorIs(t, err, tc.expectedErr)

			// A rejected submission must leave the bracket untouched.
			m1 := b.Match(1)
			assert.Equal(t, bracket.MatchPending, m1.Status)
			assert.Nil(t, m1.Score1)
			assert.Nil(t, m1.WinnerSlot)
			assert.Empty(t, b.Match(3).Slot1)
		})
	}
}

func TestApplyResultAlreadyDecided(t *testing.T) {
	b := fourPlayerBracket(t)
	require.NoError(t, ApplyResult(b, 1, 7, 5))

	err := ApplyResult(b, 1, 5, 7)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestApplyResultVoidReset(t *testing.T) {
	b := fourPlayerBracket(t)
	require.NoError(t, ApplyResult(b, 1, 7, 5))
	require.NoError(t, ApplyResult(b, 2, 7, 3))
	require.NoError(t, ApplyResult(b, 4, 2, 7))
	require.NoError(t, ApplyResult(b, 3, 7, 4))
	require.NoError(t, ApplyResult(b, 5, 3, 7))
	require.NoError(t, ApplyResult(b, 6, 7, 1))

	err := ApplyResult(b, 7, 7, 0)
	assert.ErrorIs(t, err, ErrMatchVoid)
}

func TestEditResultSameWinner(t *testing.T) {
	b := fourPlayerBracket(t)
	require.NoError(t, ApplyResult(b, 1, 7, 5))
	require.NoError(t, ApplyResult(b, 2, 7, 3))

	// Correcting the score without flipping the winner touches nothing
	// downstream.
	require.NoError(t, EditResult(b, 1, 9, 5))

	m1 := b.Match(1)
	assert.Equal(t, 9, *m1.Score1)
	assert.Equal(t, 5, *m1.Score2)
	assert.Equal(t, "A", m1.Winner())
	assert.Equal(t, "A", b.Match(3).Slot1)
	assert.Equal(t, "D", b.Match(4).Slot1)
}

func TestEditResultFlipsWinner(t *testing.T) {
	b := fourPlayerBracket(t)
	require.NoError(t, ApplyResult(b, 1, 7, 5))

	// D should have won; retract A from the winners final and D from the
	// losers bracket.
	require.NoError(t, EditResult(b, 1, 5, 7))

	m1 := b.Match(1)
	assert.Equal(t, "D", m1.Winner())
	assert.Equal(t, "D", b.Match(3).Slot1)
	assert.Equal(t, "A", b.Match(4).Slot1)
}

func TestEditResultRefusesDecidedDownstream(t *testing.T) {
	b := fourPlayerBracket(t)
	require.NoError(t, ApplyResult(b, 1, 7, 5))
	require.NoError(t, ApplyResult(b, 2, 7, 3))
	require.NoError(t, ApplyResult(b, 3, 7, 4)) // winners final decided

	err := EditResult(b, 1, 5, 7)
	assert.ErrorIs(t, err, ErrDownstreamDecided)

	// The refusal must not leak partial mutations.
	m1 := b.Match(1)
	assert.Equal(t, 7, *m1.Score1)
	assert.Equal(t, 5, *m1.Score2)
	assert.Equal(t, "A", m1.Winner())
	assert.Equal(t, "A", b.Match(3).Slot1)
	assert.Equal(t, "D", b.Match(4).Slot1)
}

func TestEditResultValidation(t *testing.T) {
	b := fourPlayerBracket(t)

	assert.ErrorIs(t, EditResult(b, 99, 7, 0), ErrMatchNotFound)
	assert.ErrorIs(t, EditResult(b, 1, 7, 0), ErrNotDecided)

	require.NoError(t, ApplyResult(b, 1, 7, 5))
	assert.ErrorIs(t, EditResult(b, 1, 5, 5), ErrTiedScore)
	assert.ErrorIs(t, EditResult(b, 1, -1, 5), ErrNegativeScore)
}

func TestEditResultByeNotEditable(t *testing.T) {
	players := []bracket.Player{
		{Name: "A", Seed: 1}, {Name: "B", Seed: 2}, {Name: "C", Seed: 3},
	}
	b, err := Generate(players, bracket.GrandFinalReset)
	require.NoError(t, err)

	byeMatch := b.Match(1) // A drew the bye
	require.True(t, byeMatch.IsBye)

	assert.ErrorIs(t, EditResult(b, byeMatch.ID, 7, 0), ErrByeNotEditable)
}

func TestEditResultCascadesThroughByes(t *testing.T) {
	// Three players in a four bracket: A byes into the winners final,
	// B and C play match 2, the loser drops into a losers match against
	// a bye and auto-advances to the losers final.
	players := []bracket.Player{
		{Name: "A", Seed: 1}, {Name: "B", Seed: 2}, {Name: "C", Seed: 3},
	}
	b, err := Generate(players, bracket.GrandFinalReset)
	require.NoError(t, err)

	require.NoError(t, ApplyResult(b, 2, 7, 4)) // B beats C

	losers1 := b.Match(4)
	require.True(t, losers1.IsBye)
	require.Equal(t, "C", losers1.Winner())
	require.Equal(t, "C", b.Match(5).Slot1)

	// The correction flips match 2 to C. B replaces C in the losers
	// bracket and the bye-decided match re-advances the new occupant.
	require.NoError(t, EditResult(b, 2, 4, 7))

	assert.Equal(t, "C", b.Match(3).Slot2)
	assert.Equal(t, "B", losers1.Slot2)
	assert.Equal(t, "B", losers1.Winner())
	assert.Equal(t, "B", b.Match(5).Slot1)
}
