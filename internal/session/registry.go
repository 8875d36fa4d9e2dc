// Package session is the server-private side of a game: per-player
// pass continuity and connection liveness. A Registry is owned by one
// game's pipeline goroutine and must only be touched from it, so it
// carries no locking of its own.
package session

import (
	"errors"

	"github.com/pretzelhammer/drawduel/internal/game"
)

var (
	// ErrIncorrectPass means a returning player id presented a pass
	// that doesn't match the stored one. Continuity check, not auth.
	ErrIncorrectPass = errors.New("incorrect pass")
	// ErrAlreadyConnected means a second live connection arrived for a
	// player that already has one.
	ErrAlreadyConnected = errors.New("player already connected")
)

// Admission says how a handshake resolved against the registry.
type Admission int

const (
	// AdmitNew is a never-seen player id; their pass was stored.
	AdmitNew Admission = iota
	// AdmitReturning is a known, disconnected player whose pass matched.
	AdmitReturning
)

type Player struct {
	ID          game.PlayerID
	Pass        string
	InitialName string
	Connected   bool
}

type Registry struct {
	players map[game.PlayerID]*Player
}

func NewRegistry() *Registry {
	return &Registry{players: map[game.PlayerID]*Player{}}
}

// Admit resolves a handshake. First write wins for a brand-new player;
// a returning player must present the exact stored pass and must not
// already hold a live connection. On success the player is marked
// connected. Nothing is mutated on failure.
func (r *Registry) Admit(id game.PlayerID, pass, name string) (Admission, error) {
	p := r.players[id]
	if p == nil {
		r.players[id] = &Player{
			ID:          id,
			Pass:        pass,
			InitialName: name,
			Connected:   true,
		}
		return AdmitNew, nil
	}
	if p.Pass != pass {
		return 0, ErrIncorrectPass
	}
	if p.Connected {
		return 0, ErrAlreadyConnected
	}
	p.Connected = true
	return AdmitReturning, nil
}

func (r *Registry) SetConnected(id game.PlayerID, connected bool) {
	if p := r.players[id]; p != nil {
		p.Connected = connected
	}
}

func (r *Registry) Remove(id game.PlayerID) {
	delete(r.players, id)
}

func (r *Registry) Player(id game.PlayerID) *Player {
	return r.players[id]
}

// ConnectedCount reports how many sessions are live. Zero after a
// disconnect means the game should be torn down.
func (r *Registry) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}
