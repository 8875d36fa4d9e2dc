package game

import "github.com/pretzelhammer/drawduel/internal/clock"

type EventType string

const (
	EventJoin             EventType = "join"
	EventLeft             EventType = "left"
	EventIncPlayerScore   EventType = "inc-player-score"
	EventChangePlayerName EventType = "change-player-name"
	EventJoinTeam         EventType = "join-team"
	EventReady            EventType = "ready"
	EventReconnect        EventType = "reconnect"
	EventDisconnect       EventType = "disconnect"
	EventTimer            EventType = "timer"
	EventNewRound         EventType = "new-round"
	EventRoundPhase       EventType = "round-phase"
	EventGamePhase        EventType = "game-phase"
	EventChoose           EventType = "choose"
)

// Event is the closed union of every state mutation. New kinds must be
// added to CanAdvance and Advance; both switch exhaustively on the
// concrete types so a missing branch fails the reducer tests.
type Event interface {
	EventType() EventType
	isEvent()
}

// Join inserts a new player into the game and the named team.
type Join struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
	Team TeamID   `json:"team"`
}

// Left removes a player entirely; only legal pre-game with zero score.
type Left struct {
	ID PlayerID `json:"id"`
}

// IncPlayerScore adds Score to the player and their current team.
type IncPlayerScore struct {
	ID    PlayerID `json:"id"`
	Score int      `json:"score"`
}

type ChangePlayerName struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// JoinTeam moves a player to another team.
type JoinTeam struct {
	ID   PlayerID `json:"id"`
	Team TeamID   `json:"team"`
}

type Ready struct {
	ID PlayerID `json:"id"`
}

type Reconnect struct {
	ID PlayerID `json:"id"`
}

type Disconnect struct {
	ID PlayerID `json:"id"`
}

// Timer announces the instant the current phase auto-advances.
type Timer struct {
	Deadline clock.UnixMs `json:"deadline"`
}

// NewRound appends the carried round record and advances the round id.
type NewRound struct {
	Round Round `json:"round"`
}

// RoundPhaseChange moves the current round to another phase.
type RoundPhaseChange struct {
	Phase RoundPhase `json:"phase"`
}

// GamePhaseChange moves the game to another top-level phase.
type GamePhaseChange struct {
	Phase Phase `json:"phase"`
}

// Choose resolves the round's word from the offered pair.
type Choose struct {
	ID         PlayerID   `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
}

func (Join) EventType() EventType             { return EventJoin }
func (Left) EventType() EventType             { return EventLeft }
func (IncPlayerScore) EventType() EventType   { return EventIncPlayerScore }
func (ChangePlayerName) EventType() EventType { return EventChangePlayerName }
func (JoinTeam) EventType() EventType         { return EventJoinTeam }
func (Ready) EventType() EventType            { return EventReady }
func (Reconnect) EventType() EventType        { return EventReconnect }
func (Disconnect) EventType() EventType       { return EventDisconnect }
func (Timer) EventType() EventType            { return EventTimer }
func (NewRound) EventType() EventType         { return EventNewRound }
func (RoundPhaseChange) EventType() EventType { return EventRoundPhase }
func (GamePhaseChange) EventType() EventType  { return EventGamePhase }
func (Choose) EventType() EventType           { return EventChoose }

func (Join) isEvent()             {}
func (Left) isEvent()             {}
func (IncPlayerScore) isEvent()   {}
func (ChangePlayerName) isEvent() {}
func (JoinTeam) isEvent()         {}
func (Ready) isEvent()            {}
func (Reconnect) isEvent()        {}
func (Disconnect) isEvent()       {}
func (Timer) isEvent()            {}
func (NewRound) isEvent()         {}
func (RoundPhaseChange) isEvent() {}
func (GamePhaseChange) isEvent()  {}
func (Choose) isEvent()           {}
