// Package pipeline is the authority over one game: the only writer of
// its GameState and the only decider of what gets broadcast. Each game
// runs as a single goroutine draining a typed-message inbox, so events
// for one game are validated and applied strictly one at a time;
// different games are fully independent.
package pipeline

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/clock"
	"github.com/pretzelhammer/drawduel/internal/game"
	"github.com/pretzelhammer/drawduel/internal/session"
	"github.com/pretzelhammer/drawduel/pkg/types"
)

// Msg is the closed set of messages a game goroutine accepts.
type Msg interface{ isGameMsg() }

// Connect is a handshake-validated session asking to enter the game.
type Connect struct {
	PlayerID game.PlayerID
	Pass     string
	Name     string
	Outbox   chan types.ServerMessage
	Reply    chan ConnectReply
}

// ConnectReply carries the admission verdict. Err is empty on success.
type ConnectReply struct {
	Err types.ClientError
}

// Disconnected tells the game a session's socket is gone.
type Disconnected struct {
	PlayerID game.PlayerID
}

// FromClient carries events a connected player sent.
type FromClient struct {
	PlayerID game.PlayerID
	Events   []game.Event
}

// GetState is a test hook mirroring the game's state without races.
type GetState struct {
	Reply chan View
}

type Shutdown struct{}

type timerFired struct {
	gen uint64
}

func (Connect) isGameMsg()      {}
func (Disconnected) isGameMsg() {}
func (FromClient) isGameMsg()   {}
func (GetState) isGameMsg()     {}
func (Shutdown) isGameMsg()     {}
func (timerFired) isGameMsg()   {}

// View is a deep copy of the game's state plus session bookkeeping.
type View struct {
	NumClients int
	Connected  int
	State      *game.GameState
}

// Config carries the dependencies a game needs. Clock and Rng are
// injected so tests can drive deadlines and drawer selection
// deterministically.
type Config struct {
	Rules  game.Rules
	Clock  clockwork.Clock
	Rng    *rand.Rand
	Logger *zap.Logger
	// OnEmpty is called once when the last connected session leaves
	// and the game destroys itself.
	OnEmpty func(id game.GameID)
}

type Game struct {
	id    game.GameID
	inbox chan Msg

	state   *game.GameState
	reg     *session.Registry
	clients map[game.PlayerID]chan types.ServerMessage
	sched   *scheduler

	// firstReadyAt anchors the ready auto-advance deadline; cleared on
	// every phase or round change.
	firstReadyAt clock.UnixMs

	cfg    Config
	rng    *rand.Rand
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewGame(parent context.Context, id game.GameID, cfg Config) *Game {
	ctx, cancel := context.WithCancel(parent)
	g := &Game{
		id:      id,
		inbox:   make(chan Msg, 64),
		state:   game.NewGameState(id, cfg.Rules),
		reg:     session.NewRegistry(),
		clients: map[game.PlayerID]chan types.ServerMessage{},
		cfg:     cfg,
		rng:     cfg.Rng,
		log:     cfg.Logger.With(zap.String("game_id", string(id))),
		ctx:     ctx,
		cancel:  cancel,
	}
	g.sched = newScheduler(cfg.Clock, g.notifyTimer)
	go g.loop()
	return g
}

func (g *Game) Inbox() chan<- Msg { return g.inbox }

// Done closes when the game goroutine has shut down. Senders must
// select on it: a message offered to a destroyed game is never drained.
func (g *Game) Done() <-chan struct{} { return g.ctx.Done() }

// notifyTimer posts a timer fire back into the inbox so it re-enters
// the pipeline like any other message. Runs on the scheduler's wait
// goroutine.
func (g *Game) notifyTimer(gen uint64) {
	select {
	case g.inbox <- timerFired{gen: gen}:
	case <-g.ctx.Done():
	}
}

func (g *Game) loop() {
	for {
		select {
		case <-g.ctx.Done():
			g.shutdown()
			return
		case m := <-g.inbox:
			switch msg := m.(type) {
			case Connect:
				g.handleConnect(msg)
				if g.destroyIfEmpty() {
					return
				}
			case Disconnected:
				g.handleDisconnected(msg.PlayerID)
				if g.destroyIfEmpty() {
					return
				}
			case FromClient:
				g.handleFromClient(msg.PlayerID, msg.Events)
				if g.destroyIfEmpty() {
					return
				}
			case timerFired:
				g.handleTimerFired(msg.gen)
			case GetState:
				msg.Reply <- g.view()
			case Shutdown:
				g.shutdown()
				return
			}
		}
	}
}

func (g *Game) handleConnect(msg Connect) {
	adm, err := g.reg.Admit(msg.PlayerID, msg.Pass, msg.Name)
	switch err {
	case session.ErrIncorrectPass:
		g.log.Info("rejected connect: incorrect pass",
			zap.String("player_id", string(msg.PlayerID)))
		msg.Reply <- ConnectReply{Err: types.ErrIncorrectPass}
		return
	case session.ErrAlreadyConnected:
		g.log.Info("rejected connect: already connected elsewhere",
			zap.String("player_id", string(msg.PlayerID)))
		msg.Reply <- ConnectReply{Err: types.ErrAlreadyConnected}
		return
	}

	var emitted []game.Event
	if adm == session.AdmitNew {
		g.run(game.Join{
			ID:   msg.PlayerID,
			Name: msg.Name,
			Team: game.BalancedTeamID(1),
		}, 0, &emitted)
	} else {
		g.run(game.Reconnect{ID: msg.PlayerID}, 0, &emitted)
	}

	g.clients[msg.PlayerID] = msg.Outbox
	msg.Reply <- ConnectReply{}

	// the fresh socket gets the full authoritative snapshot; the
	// join/reconnect batch then goes to everyone, and the new client's
	// own reducer guard drops the parts its snapshot already contains
	snap, err := types.SnapshotMessage(g.state)
	if err != nil {
		g.log.Error("failed to snapshot game state", zap.Error(err))
	} else {
		g.send(msg.PlayerID, snap)
	}
	g.broadcast(emitted)

	g.log.Info("player connected",
		zap.String("player_id", string(msg.PlayerID)),
		zap.Bool("returning", adm == session.AdmitReturning))
}

func (g *Game) handleDisconnected(id game.PlayerID) {
	if ch, ok := g.clients[id]; ok {
		close(ch)
		delete(g.clients, id)
	}
	if g.state.Player(id) == nil {
		return
	}

	var emitted []game.Event
	left := game.Left{ID: id}
	if g.state.Phase == game.PhasePreGame && game.CanAdvance(g.state, left) {
		// pre-game: drop the player entirely and rebalance
		g.reg.Remove(id)
		g.run(left, 0, &emitted)
	} else {
		// mid-game: keep score and team, mark them away
		g.reg.SetConnected(id, false)
		g.run(game.Disconnect{ID: id}, 0, &emitted)
	}
	g.broadcast(emitted)

	g.log.Info("player disconnected", zap.String("player_id", string(id)))
}

func (g *Game) handleFromClient(id game.PlayerID, events []game.Event) {
	var emitted []game.Event
	for _, e := range events {
		if !g.hasPermission(id, e) {
			g.log.Warn("weird event from player: no permission",
				zap.String("player_id", string(id)),
				zap.String("event", string(e.EventType())))
			continue
		}
		if !game.CanAdvance(g.state, e) {
			g.log.Warn("weird event from player: rejected by guard",
				zap.String("player_id", string(id)),
				zap.String("event", string(e.EventType())))
			continue
		}
		g.run(e, 0, &emitted)
	}
	g.broadcast(emitted)

	// a voluntary left leaves no trace: drop the session alongside the
	// state so the id can re-admit fresh and the game can empty out
	for _, e := range emitted {
		if left, ok := e.(game.Left); ok {
			g.dropSession(left.ID)
		}
	}
}

func (g *Game) dropSession(id game.PlayerID) {
	g.reg.Remove(id)
	if ch, ok := g.clients[id]; ok {
		close(ch)
		delete(g.clients, id)
	}
	g.log.Info("player left", zap.String("player_id", string(id)))
}

// handleTimerFired re-enters the pipeline for a deadline expiry. The
// world may have changed since the timer was armed, so a stale
// generation is dropped outright and everything else re-validates
// through the usual guards.
func (g *Game) handleTimerFired(gen uint64) {
	if !g.sched.fired(gen) {
		g.log.Debug("dropping stale timer fire")
		return
	}

	var emitted []game.Event
	for _, e := range g.deadlineEvents() {
		g.run(e, 0, &emitted)
	}
	g.broadcast(emitted)
}

// hasPermission gates client-originated events: players may only
// target themselves with self-scoped events, only the round's chooser
// may choose, and everything else is server-synthesized only.
func (g *Game) hasPermission(id game.PlayerID, e game.Event) bool {
	switch e := e.(type) {
	case game.IncPlayerScore:
		return e.ID == id
	case game.ChangePlayerName:
		return e.ID == id
	case game.Ready:
		return e.ID == id
	case game.Left:
		return e.ID == id
	case game.Choose:
		r := g.state.CurrentRound()
		return e.ID == id && r != nil && r.Chooser == id
	default:
		return false
	}
}

func (g *Game) broadcast(events []game.Event) {
	if len(events) == 0 {
		return
	}
	msg := types.EventsMessage(events...)
	for id := range g.clients {
		g.send(id, msg)
	}
}

func (g *Game) send(id game.PlayerID, msg types.ServerMessage) {
	ch, ok := g.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// client can't keep up, drop them; their socket will notice
		g.log.Warn("dropping slow client", zap.String("player_id", string(id)))
		close(ch)
		delete(g.clients, id)
	}
}

func (g *Game) destroyIfEmpty() bool {
	if g.reg.ConnectedCount() > 0 {
		return false
	}
	g.log.Info("last session gone, destroying game")
	if g.cfg.OnEmpty != nil {
		g.cfg.OnEmpty(g.id)
	}
	g.shutdown()
	return true
}

func (g *Game) shutdown() {
	g.sched.stop()
	for id, ch := range g.clients {
		close(ch)
		delete(g.clients, id)
	}
	g.cancel()
}

// view deep-copies state through JSON so tests never share maps with
// the live goroutine.
func (g *Game) view() View {
	var copied game.GameState
	raw, err := json.Marshal(g.state)
	if err == nil {
		_ = json.Unmarshal(raw, &copied)
	}
	return View{
		NumClients: len(g.clients),
		Connected:  g.reg.ConnectedCount(),
		State:      &copied,
	}
}
