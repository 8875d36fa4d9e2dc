package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetTeamCount(t *testing.T) {
	cases := []struct {
		players int
		teams   int
	}{
		{1, 1},
		{3, 1},
		{4, 2},
		{5, 2},
		{6, 3},
		{7, 3},
		{8, 4},
		{20, 4},
		{21, 5},
		{25, 5},
		{45, 9},
	}
	for _, tc := range cases {
		got, err := TargetTeamCount(tc.players)
		require.NoError(t, err)
		assert.Equal(t, tc.teams, got, "players=%d", tc.players)
	}
}

func TestTargetTeamCountOverCapacity(t *testing.T) {
	_, err := TargetTeamCount(46)
	require.ErrorIs(t, err, ErrTooManyPlayers)
}

func TestRebalanceSevenPlayersIsDeterministic(t *testing.T) {
	s := stateWithPlayers(t, "p1", "p2", "p3", "p4", "p5", "p6", "p7")

	// same input, same output, every time
	first, err := Rebalance(s)
	require.NoError(t, err)
	second, err := Rebalance(s)
	require.NoError(t, err)
	require.Equal(t, first, second)

	for _, m := range first {
		if CanAdvance(s, m) {
			Advance(s, m)
		}
	}
	checkInvariants(t, s)

	require.Len(t, s.Teams, 3)
	sizes := map[TeamID]int{}
	for tid, team := range s.Teams {
		sizes[tid] = len(team.Players)
	}
	assert.Equal(t, map[TeamID]int{"1": 3, "2": 2, "3": 2}, sizes)
}

func TestRebalanceIsFullReassignment(t *testing.T) {
	s := stateWithPlayers(t, "p1", "p2", "p3", "p4")
	moves, err := Rebalance(s)
	require.NoError(t, err)
	// one join-team event per player, movers and stayers alike
	require.Len(t, moves, 4)
}

func TestRebalanceEmptyGame(t *testing.T) {
	s := NewGameState("test1", DefaultRules())
	moves, err := Rebalance(s)
	require.NoError(t, err)
	require.Empty(t, moves)
}
