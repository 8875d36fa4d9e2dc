// Package game is the pure replicated game state and its reducer. It is
// shared verbatim between the server's authority pipeline and any Go
// client doing optimistic application, so it must stay free of I/O,
// timers and logging; everything here is a function of state and event.
package game

import (
	"slices"

	"github.com/pretzelhammer/drawduel/internal/clock"
)

type GameID string
type PlayerID string
type TeamID string

type Phase string

const (
	PhasePreGame        Phase = "pre-game"
	PhaseRounds         Phase = "rounds"
	PhaseLightningRound Phase = "lightning-round"
	PhasePostGame       Phase = "post-game"
)

type RoundPhase string

const (
	RoundIntro     RoundPhase = "intro"
	RoundPickWord  RoundPhase = "pick-word"
	RoundPrePlay   RoundPhase = "pre-play"
	RoundPlay      RoundPhase = "play"
	RoundPostRound RoundPhase = "post-round"
)

type Role string

const (
	RoleDrawer    Role = "drawer"
	RoleGuesser   Role = "guesser"
	RoleSpectator Role = "spectator"
)

type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyHard Difficulty = "hard"
)

type GamePlayer struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Team      TeamID   `json:"team"`
	Ready     bool     `json:"ready"`
	Connected bool     `json:"connected"`
	Role      Role     `json:"role"`
}

// TeamPlayer is the per-team view of a member. It only carries the id
// today but is the hook for per-team player data later.
type TeamPlayer struct {
	ID PlayerID `json:"id"`
}

type GameTeam struct {
	Score   int                      `json:"score"`
	Players map[PlayerID]*TeamPlayer `json:"players"`
}

// RoundTeam is a team's in-round sub-record. The server relays guesses
// and drawing data opaquely; only clients interpret them.
type RoundTeam struct {
	Guesses []string `json:"guesses"`
}

type Round struct {
	Phase RoundPhase `json:"phase"`
	// Drawers holds exactly one player per team for this round.
	Drawers []PlayerID `json:"drawers"`
	// Chooser is the drawer who picks between the offered words.
	Chooser  PlayerID              `json:"chooser"`
	EasyWord string                `json:"easyWord"`
	HardWord string                `json:"hardWord"`
	// Word and Difficulty are empty until a choose event resolves them.
	Word       string                `json:"word"`
	Difficulty Difficulty            `json:"difficulty"`
	Multiplier int                   `json:"multiplier"`
	Teams      map[TeamID]*RoundTeam `json:"teams"`
}

// LightningRound is phase-only for now.
type LightningRound struct {
	Phase string `json:"phase"`
}

// GameState is the single authoritative state of one game, synced
// between the server and every connected client. Only Advance mutates
// it.
type GameState struct {
	ID      GameID                   `json:"id"`
	Phase   Phase                    `json:"phase"`
	Players map[PlayerID]*GamePlayer `json:"players"`
	Teams   map[TeamID]*GameTeam     `json:"teams"`
	// Timer is the instant the current phase auto-advances, 0 if unset.
	Timer clock.UnixMs `json:"timer"`
	// Round is -1 until the first round starts.
	Round          int            `json:"round"`
	Rounds         []*Round       `json:"rounds"`
	LightningRound LightningRound `json:"lightningRound"`
	Rules          Rules          `json:"rules"`
}

func NewGameState(id GameID, rules Rules) *GameState {
	return &GameState{
		ID:      id,
		Phase:   PhasePreGame,
		Players: map[PlayerID]*GamePlayer{},
		Teams:   map[TeamID]*GameTeam{},
		Round:   -1,
		Rounds:  []*Round{},
		Rules:   rules,
	}
}

// CurrentRound returns the round in progress, nil before the first
// new-round event.
func (s *GameState) CurrentRound() *Round {
	if s.Round < 0 || s.Round >= len(s.Rounds) {
		return nil
	}
	return s.Rounds[s.Round]
}

func (s *GameState) Player(id PlayerID) *GamePlayer {
	return s.Players[id]
}

// PlayerIDs returns all player ids in sorted order. Map iteration order
// is not stable in Go, and the balancer needs a reproducible list.
func (s *GameState) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TeamIDs returns all team ids in sorted order.
func (s *GameState) TeamIDs() []TeamID {
	ids := make([]TeamID, 0, len(s.Teams))
	for id := range s.Teams {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UnreadyConnected counts players who are connected but not ready.
func (s *GameState) UnreadyConnected() int {
	n := 0
	for _, p := range s.Players {
		if p.Connected && !p.Ready {
			n++
		}
	}
	return n
}

func (s *GameState) AnyReady() bool {
	for _, p := range s.Players {
		if p.Ready {
			return true
		}
	}
	return false
}

func (r *Round) HasDrawer(id PlayerID) bool {
	return slices.Contains(r.Drawers, id)
}

// Clone deep-copies a round so the state never aliases the round value
// carried inside a new-round event.
func (r *Round) Clone() *Round {
	out := *r
	out.Drawers = slices.Clone(r.Drawers)
	out.Teams = make(map[TeamID]*RoundTeam, len(r.Teams))
	for id, rt := range r.Teams {
		out.Teams[id] = &RoundTeam{Guesses: slices.Clone(rt.Guesses)}
	}
	return &out
}
