package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// mustAdvance gates with CanAdvance exactly like the pipeline does and
// fails the test if the guard rejects.
func mustAdvance(t *testing.T, s *GameState, e Event) {
	t.Helper()
	require.True(t, CanAdvance(s, e), "guard rejected %s", e.EventType())
	Advance(s, e)
}

// checkInvariants asserts the structural invariants that must hold
// after every applied event.
func checkInvariants(t *testing.T, s *GameState) {
	t.Helper()
	for id, p := range s.Players {
		team, ok := s.Teams[p.Team]
		require.True(t, ok, "player %s names missing team %s", id, p.Team)
		_, ok = team.Players[id]
		require.True(t, ok, "player %s not a member of their team %s", id, p.Team)
		require.GreaterOrEqual(t, p.Score, 0)
	}
	for tid, team := range s.Teams {
		require.NotEmpty(t, team.Players, "empty team %s persisted", tid)
		for pid := range team.Players {
			p, ok := s.Players[pid]
			require.True(t, ok, "team %s references missing player %s", tid, pid)
			require.Equal(t, tid, p.Team)
		}
	}
	if s.Phase == PhasePreGame {
		require.Equal(t, -1, s.Round)
	}
	if s.Phase == PhaseRounds {
		require.GreaterOrEqual(t, s.Round, 0)
		require.LessOrEqual(t, s.Round, s.Rules.MaxRoundID())
	}
}

func stateWithPlayers(t *testing.T, ids ...PlayerID) *GameState {
	t.Helper()
	s := NewGameState("test1", DefaultRules())
	for _, id := range ids {
		mustAdvance(t, s, Join{ID: id, Name: "player " + string(id), Team: BalancedTeamID(1)})
	}
	return s
}

func TestJoinLeftInvariantsHoldAfterEveryEvent(t *testing.T) {
	s := NewGameState("test1", DefaultRules())
	ids := []PlayerID{"p1", "p2", "p3", "p4", "p5"}

	for _, id := range ids {
		mustAdvance(t, s, Join{ID: id, Name: string(id), Team: BalancedTeamID(1)})
		checkInvariants(t, s)
		// apply the full rebalance like the pipeline does, dropping
		// no-op moves through the guard
		moves, err := Rebalance(s)
		require.NoError(t, err)
		for _, m := range moves {
			if CanAdvance(s, m) {
				Advance(s, m)
			}
			checkInvariants(t, s)
		}
	}

	for _, id := range ids {
		mustAdvance(t, s, Left{ID: id})
		checkInvariants(t, s)
		moves, err := Rebalance(s)
		require.NoError(t, err)
		for _, m := range moves {
			if CanAdvance(s, m) {
				Advance(s, m)
			}
			checkInvariants(t, s)
		}
	}
	require.Empty(t, s.Players)
	require.Empty(t, s.Teams)
}

func TestGuards(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) *GameState
		event Event
		want  bool
	}{
		{
			name:  "join new player",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t) },
			event: Join{ID: "p1", Name: "p1", Team: "1"},
			want:  true,
		},
		{
			name:  "join duplicate player",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: Join{ID: "p1", Name: "again", Team: "1"},
			want:  false,
		},
		{
			name:  "left in pre-game with zero score",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: Left{ID: "p1"},
			want:  true,
		},
		{
			name: "left with score is rejected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, IncPlayerScore{ID: "p1", Score: 3})
				return s
			},
			event: Left{ID: "p1"},
			want:  false,
		},
		{
			name: "left outside pre-game is rejected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				return s
			},
			event: Left{ID: "p1"},
			want:  false,
		},
		{
			name:  "score increment for missing player",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t) },
			event: IncPlayerScore{ID: "ghost", Score: 1},
			want:  false,
		},
		{
			name:  "zero score increment is a no-op",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: IncPlayerScore{ID: "p1", Score: 0},
			want:  false,
		},
		{
			name:  "rename to same name is a no-op",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: ChangePlayerName{ID: "p1", Name: "player p1"},
			want:  false,
		},
		{
			name:  "rename to new name",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: ChangePlayerName{ID: "p1", Name: "fresh"},
			want:  true,
		},
		{
			name:  "join same team is a no-op",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: JoinTeam{ID: "p1", Team: "1"},
			want:  false,
		},
		{
			name:  "join other team",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: JoinTeam{ID: "p1", Team: "2"},
			want:  true,
		},
		{
			name:  "ready in pre-game",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: Ready{ID: "p1"},
			want:  true,
		},
		{
			name: "ready twice",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, Ready{ID: "p1"})
				return s
			},
			event: Ready{ID: "p1"},
			want:  false,
		},
		{
			name: "ready mid-round is rejected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				mustAdvance(t, s, NewRound{Round: testRound("p1")})
				mustAdvance(t, s, RoundPhaseChange{Phase: RoundPlay})
				return s
			},
			event: Ready{ID: "p1"},
			want:  false,
		},
		{
			name: "ready in post-round",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				mustAdvance(t, s, NewRound{Round: testRound("p1")})
				mustAdvance(t, s, RoundPhaseChange{Phase: RoundPostRound})
				return s
			},
			event: Ready{ID: "p1"},
			want:  true,
		},
		{
			name:  "reconnect while connected is rejected",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: Reconnect{ID: "p1"},
			want:  false,
		},
		{
			name: "reconnect while disconnected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, Disconnect{ID: "p1"})
				return s
			},
			event: Reconnect{ID: "p1"},
			want:  true,
		},
		{
			name:  "timer is always legal",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t) },
			event: Timer{Deadline: 12345},
			want:  true,
		},
		{
			name: "new round past the final round is rejected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				s.Rules.MaxRounds = 1
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				mustAdvance(t, s, NewRound{Round: testRound("p1")})
				return s
			},
			event: NewRound{Round: testRound("p1")},
			want:  false,
		},
		{
			name: "round phase change to same phase is a no-op",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				mustAdvance(t, s, NewRound{Round: testRound("p1")})
				return s
			},
			event: RoundPhaseChange{Phase: RoundIntro},
			want:  false,
		},
		{
			name:  "round phase change with no round is rejected",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: RoundPhaseChange{Phase: RoundPlay},
			want:  false,
		},
		{
			name:  "game phase change to same phase is a no-op",
			setup: func(t *testing.T) *GameState { return stateWithPlayers(t, "p1") },
			event: GamePhaseChange{Phase: PhasePreGame},
			want:  false,
		},
		{
			name: "choose with word already resolved is rejected",
			setup: func(t *testing.T) *GameState {
				s := stateWithPlayers(t, "p1")
				mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
				mustAdvance(t, s, NewRound{Round: testRound("p1")})
				mustAdvance(t, s, Choose{ID: "p1", Difficulty: DifficultyEasy})
				return s
			},
			event: Choose{ID: "p1", Difficulty: DifficultyHard},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setup(t)
			require.Equal(t, tc.want, CanAdvance(s, tc.event))
			if tc.want {
				Advance(s, tc.event)
				checkInvariants(t, s)
			}
		})
	}
}

func testRound(drawers ...PlayerID) Round {
	return Round{
		Phase:    RoundIntro,
		Drawers:  drawers,
		Chooser:  drawers[0],
		EasyWord: "cat",
		HardWord: "pelican",
		Teams:    map[TeamID]*RoundTeam{},
	}
}

func TestScoreConservation(t *testing.T) {
	s := stateWithPlayers(t, "p1", "p2", "p3")
	mustAdvance(t, s, JoinTeam{ID: "p2", Team: "2"})

	increments := []IncPlayerScore{
		{ID: "p1", Score: 2},
		{ID: "p2", Score: 5},
		{ID: "p1", Score: 1},
		{ID: "p3", Score: 7},
	}
	for _, inc := range increments {
		mustAdvance(t, s, inc)
		checkInvariants(t, s)
	}

	playerSum, teamSum := 0, 0
	for _, p := range s.Players {
		playerSum += p.Score
	}
	for _, team := range s.Teams {
		teamSum += team.Score
	}
	require.Equal(t, 15, playerSum)
	require.Equal(t, playerSum, teamSum)
}

func TestScoreStaysBehindOnTeamSwitch(t *testing.T) {
	s := stateWithPlayers(t, "p1", "p2")
	mustAdvance(t, s, IncPlayerScore{ID: "p1", Score: 4})
	mustAdvance(t, s, JoinTeam{ID: "p1", Team: "2"})

	// old team still exists because p2 is on it, and keeps the points
	require.Equal(t, 4, s.Teams["1"].Score)
	require.Equal(t, 0, s.Teams["2"].Score)

	// only future increments accrue to the new team
	mustAdvance(t, s, IncPlayerScore{ID: "p1", Score: 2})
	require.Equal(t, 2, s.Teams["2"].Score)
	require.Equal(t, 6, s.Players["p1"].Score)
}

func TestNewRoundResetsReadyAndAssignsRoles(t *testing.T) {
	s := stateWithPlayers(t, "p1", "p2", "p3")
	for _, id := range []PlayerID{"p1", "p2", "p3"} {
		mustAdvance(t, s, Ready{ID: id})
	}
	mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
	mustAdvance(t, s, NewRound{Round: testRound("p2")})

	require.Equal(t, 0, s.Round)
	require.Len(t, s.Rounds, 1)
	for _, p := range s.Players {
		require.False(t, p.Ready)
	}
	require.Equal(t, RoleDrawer, s.Players["p2"].Role)
	require.Equal(t, RoleGuesser, s.Players["p1"].Role)
	require.Equal(t, RoleGuesser, s.Players["p3"].Role)
	require.False(t, s.Timer.IsSet())
}

func TestPhaseTransitionsClearTimer(t *testing.T) {
	s := stateWithPlayers(t, "p1")
	mustAdvance(t, s, Timer{Deadline: 99999})
	require.True(t, s.Timer.IsSet())

	mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
	require.False(t, s.Timer.IsSet())

	mustAdvance(t, s, Timer{Deadline: 99999})
	mustAdvance(t, s, NewRound{Round: testRound("p1")})
	require.False(t, s.Timer.IsSet())

	mustAdvance(t, s, Timer{Deadline: 99999})
	mustAdvance(t, s, RoundPhaseChange{Phase: RoundPickWord})
	require.False(t, s.Timer.IsSet())
}

func TestChooseResolvesWordFromOfferedPair(t *testing.T) {
	s := stateWithPlayers(t, "p1")
	mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
	mustAdvance(t, s, NewRound{Round: testRound("p1")})

	mustAdvance(t, s, Choose{ID: "p1", Difficulty: DifficultyHard})
	r := s.CurrentRound()
	require.Equal(t, "pelican", r.Word)
	require.Equal(t, DifficultyHard, r.Difficulty)
	require.Equal(t, 3, r.Multiplier)
}

func TestNewRoundClonesCarriedRound(t *testing.T) {
	s := stateWithPlayers(t, "p1")
	mustAdvance(t, s, GamePhaseChange{Phase: PhaseRounds})
	carried := testRound("p1")
	mustAdvance(t, s, NewRound{Round: carried})

	// mutating the event's round must not reach the state
	carried.Drawers[0] = "someone-else"
	require.Equal(t, PlayerID("p1"), s.CurrentRound().Drawers[0])
}
