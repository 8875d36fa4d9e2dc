package game

import (
	"errors"
	"strconv"
)

// ErrTooManyPlayers means the roster exceeds what the step table can
// balance. Capacity guard, not a steady-state path.
var ErrTooManyPlayers = errors.New("too many players to balance teams")

// teamSteps maps roster size to target team count: up to maxPlayers
// players get teams teams. Rows must stay sorted by maxPlayers.
var teamSteps = []struct {
	maxPlayers int
	teams      int
}{
	{3, 1},
	{5, 2},
	{7, 3},
	{20, 4},
	{25, 5},
	{30, 6},
	{35, 7},
	{40, 8},
	{45, 9},
}

// TargetTeamCount returns how many teams a roster of n players should
// be split into.
func TargetTeamCount(n int) (int, error) {
	for _, step := range teamSteps {
		if n <= step.maxPlayers {
			return step.teams, nil
		}
	}
	return 0, ErrTooManyPlayers
}

// Rebalance reassigns every player to teams 1..N round-robin over the
// sorted player-id list, keeping team sizes within one of each other.
// It always returns the full reassignment; the caller's guard filter
// drops the events that are no-ops, so only actual moves get emitted.
// Run only while the game is in pre-game.
func Rebalance(s *GameState) ([]JoinTeam, error) {
	ids := s.PlayerIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	teams, err := TargetTeamCount(len(ids))
	if err != nil {
		return nil, err
	}
	events := make([]JoinTeam, 0, len(ids))
	for i, id := range ids {
		events = append(events, JoinTeam{
			ID:   id,
			Team: BalancedTeamID(i%teams + 1),
		})
	}
	return events, nil
}

// BalancedTeamID names the nth balancer-assigned team, 1-based.
func BalancedTeamID(n int) TeamID {
	return TeamID(strconv.Itoa(n))
}
