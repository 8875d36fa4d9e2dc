// Package hub owns the process-wide map of live games. It is an
// explicit registry object injected into the transport layer, never a
// package-level singleton, so the pipeline stays testable against an
// isolated hub.
package hub

import (
	"context"
	"math/rand"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/game"
	"github.com/pretzelhammer/drawduel/internal/pipeline"
)

type HubMsg interface{ isHubMsg() }

// GetGame looks a game up; replies nil if it doesn't exist.
type GetGame struct {
	ID    game.GameID
	Reply chan *pipeline.Game
}

// EnsureGame looks a game up, creating it on first use.
type EnsureGame struct {
	ID    game.GameID
	Reply chan *pipeline.Game
}

// RemoveGame drops a game from the map. Sent by a game's OnEmpty hook
// when its last session disconnects.
type RemoveGame struct {
	ID game.GameID
}

type ShutdownHub struct{}

func (GetGame) isHubMsg()     {}
func (EnsureGame) isHubMsg()  {}
func (RemoveGame) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Config is shared by every game the hub creates.
type Config struct {
	Rules  game.Rules
	Clock  clockwork.Clock
	Rng    *rand.Rand
	Logger *zap.Logger
}

type Hub struct {
	inbox  chan HubMsg
	games  map[game.GameID]*pipeline.Game
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		games:  map[game.GameID]*pipeline.Game{},
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return
		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetGame:
				msg.Reply <- h.games[msg.ID] // may be nil

			case EnsureGame:
				g := h.games[msg.ID]
				if g == nil {
					g = h.create(msg.ID)
					h.games[msg.ID] = g
				}
				msg.Reply <- g

			case RemoveGame:
				delete(h.games, msg.ID)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(id game.GameID) *pipeline.Game {
	h.cfg.Logger.Info("creating game", zap.String("game_id", string(id)))
	// each game goroutine gets its own rand.Rand; *rand.Rand is not
	// safe for concurrent use across games
	return pipeline.NewGame(h.ctx, id, pipeline.Config{
		Rules:  h.cfg.Rules,
		Clock:  h.cfg.Clock,
		Rng:    rand.New(rand.NewSource(h.cfg.Rng.Int63())),
		Logger: h.cfg.Logger,
		OnEmpty: func(id game.GameID) {
			select {
			case h.inbox <- RemoveGame{ID: id}:
			case <-h.ctx.Done():
			}
		},
	})
}

func (h *Hub) shutdown() {
	for id, g := range h.games {
		select {
		case g.Inbox() <- pipeline.Shutdown{}:
		case <-g.Done():
		}
		delete(h.games, id)
	}
	h.cancel()
}
