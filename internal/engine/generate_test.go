package engine

import (
	"fmt"
	"testing"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayers(count int) []bracket.Player {
	players := make([]bracket.Player, 0, count)
	for i := 0; i < count; i++ {
		players = append(players, bracket.Player{Name: fmt.Sprintf("Player %d", i+1), Seed: i + 1})
	}
	return players
}

func TestGenerateRound1SeedOrder(t *testing.T) {
	testCases := []struct {
		name        string
		bracketSize int
		expected    [][2]int
	}{
		{
			name:        "2 seats",
			bracketSize: 2,
			expected:    [][2]int{{0, 1}},
		},
		{
			name:        "4 seats",
			bracketSize: 4,
			expected:    [][2]int{{0, 3}, {1, 2}},
		},
		{
			name:        "8 seats",
			bracketSize: 8,
			expected:    [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := generateRound1Pairs(tc.bracketSize)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestCalcBracketSize(t *testing.T) {
	testCases := []struct {
		count    int
		expected int
	}{
		{0, 0},
		{2, 2},
		{3, 4},
		{5, 8},
		{8, 8},
		{9, 16},
		{33, 64},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, calcBracketSize(tc.count), "count %d", tc.count)
	}
}

func TestGenerateStructure(t *testing.T) {
	testCases := []struct {
		name            string
		playerCount     int
		mode            bracket.GrandFinalMode
		expectedSize    int
		expectedMatches int
	}{
		{
			name:            "2 players reset",
			playerCount:     2,
			mode:            bracket.GrandFinalReset,
			expectedSize:    2,
			expectedMatches: 3, // winners final, grand final, reset
		},
		{
			name:            "4 players reset",
			playerCount:     4,
			mode:            bracket.GrandFinalReset,
			expectedSize:    4,
			expectedMatches: 7,
		},
		{
			name:            "4 players single",
			playerCount:     4,
			mode:            bracket.GrandFinalSingle,
			expectedSize:    4,
			expectedMatches: 6,
		},
		{
			name:            "5 players reset",
			playerCount:     5,
			mode:            bracket.GrandFinalReset,
			expectedSize:    8,
			expectedMatches: 15,
		},
		{
			name:            "8 players reset",
			playerCount:     8,
			mode:            bracket.GrandFinalReset,
			expectedSize:    8,
			expectedMatches: 15,
		},
		{
			name:            "16 players reset",
			playerCount:     16,
			mode:            bracket.GrandFinalReset,
			expectedSize:    16,
			expectedMatches: 31,
		},
		{
			name:            "64 players reset",
			playerCount:     64,
			mode:            bracket.GrandFinalReset,
			expectedSize:    64,
			expectedMatches: 127,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Generate(testPlayers(tc.playerCount), tc.mode)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedSize, b.Size)
			assert.Len(t, b.Matches, tc.expectedMatches)

			wbRounds := bracket.WinnersRounds(tc.expectedSize)
			for r := 1; r <= wbRounds; r++ {
				assert.Len(t, b.Round(bracket.WinnersSide, r), tc.expectedSize>>r, "winners round %d", r)
			}

			require.NotNil(t, b.GrandFinal())
			if tc.mode == bracket.GrandFinalReset {
				require.NotNil(t, b.Reset())
			} else {
				assert.Nil(t, b.Reset())
			}

			// Every non-final match must route its winner somewhere.
			for _, m := range b.Matches {
				if m.BracketSide == bracket.FinalsSide {
					continue
				}
				assert.NotZero(t, m.WinnerTo, "match %d has no winner route", m.ID)
			}
			// Every winners match must route its loser somewhere.
			for _, m := range b.Round(bracket.WinnersSide, 1) {
				assert.NotZero(t, m.LoserTo, "match %d has no loser route", m.ID)
			}
		})
	}
}

func TestGenerateValidation(t *testing.T) {
	testCases := []struct {
		name        string
		players     []bracket.Player
		expectedErr error
	}{
		{
			name:        "empty roster",
			players:     nil,
			expectedErr: ErrRosterTooSmall,
		},
		{
			name:        "single player",
			players:     testPlayers(1),
			expectedErr: ErrRosterTooSmall,
		},
		{
			name: "duplicate name",
			players: []bracket.Player{
				{Name: "Alice", Seed: 1}, {Name: "Alice", Seed: 2},
			},
			expectedErr: ErrDuplicatePlayer,
		},
		{
			name: "reserved bye name",
			players: []bracket.Player{
				{Name: "Alice", Seed: 1}, {Name: bracket.ByeName, Seed: 2},
			},
			expectedErr: ErrReservedName,
		},
		{
			name: "empty name",
			players: []bracket.Player{
				{Name: "Alice", Seed: 1}, {Name: "", Seed: 2},
			},
			expectedErr: ErrReservedName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(tc.players, bracket.GrandFinalReset)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestGenerateTwoPlayers(t *testing.T) {
	b, err := Generate(testPlayers(2), bracket.GrandFinalReset)
	require.NoError(t, err)

	assert.Empty(t, b.Round(bracket.LosersSide, 1))

	wbFinal := b.Round(bracket.WinnersSide, 1)[0]
	grandFinal := b.GrandFinal()
	assert.Equal(t, grandFinal.ID, wbFinal.WinnerTo)
	assert.Equal(t, 1, wbFinal.WinnerToSlot)
	assert.Equal(t, grandFinal.ID, wbFinal.LoserTo)
	assert.Equal(t, 2, wbFinal.LoserToSlot)
}

func TestGenerateByeResolution(t *testing.T) {
	// 5 players in an 8 bracket: seeds 1, 2 and 3 get byes and advance
	// immediately, seeds 4 and 5 meet in the only live round 1 match.
	b, err := Generate(testPlayers(5), bracket.GrandFinalReset)
	require.NoError(t, err)

	round1 := b.Round(bracket.WinnersSide, 1)
	require.Len(t, round1, 4)

	byes := 0
	for _, m := range round1 {
		if m.IsBye {
			byes++
			assert.Equal(t, bracket.MatchFinished, m.Status)
			assert.NotEqual(t, bracket.ByeName, m.Winner())
		}
	}
	assert.Equal(t, 3, byes)

	live := round1[1]
	assert.Equal(t, "Player 4", live.Slot1)
	assert.Equal(t, "Player 5", live.Slot2)
	assert.True(t, live.Ready())

	// Seeds 2 and 3 both advanced on byes, so their round 2 match is
	// already playable.
	round2 := b.Round(bracket.WinnersSide, 2)
	require.Len(t, round2, 2)
	assert.Equal(t, "Player 1", round2[0].Slot1)
	assert.True(t, round2[1].Ready())
}

func TestLoserRoutingAvoidsRematches(t *testing.T) {
	b, err := Generate(testPlayers(64), bracket.GrandFinalReset)
	require.NoError(t, err)

	round1 := b.Round(bracket.WinnersSide, 1)
	require.Len(t, round1, 32)
	for _, m := range round1 {
		require.NoError(t, ApplyResult(b, m.ID, 1, 0))
	}

	// Each losers round 1 match must pair losers from two different
	// round 1 matches, and no two players who already met may meet again.
	lbRound1 := b.Round(bracket.LosersSide, 1)
	require.Len(t, lbRound1, 16)
	for _, lm := range lbRound1 {
		require.True(t, lm.Ready(), "losers match %d not filled", lm.ID)

		var source1, source2 int
		for _, wm := range round1 {
			if wm.HasPlayer(lm.Slot1) {
				source1 = wm.ID
			}
			if wm.HasPlayer(lm.Slot2) {
				source2 = wm.ID
			}
		}
		require.NotZero(t, source1)
		require.NotZero(t, source2)
		assert.NotEqual(t, source1, source2, "losers match %d is a round 1 rematch", lm.ID)
	}
}
