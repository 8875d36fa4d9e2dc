// Package ws is the transport edge: it upgrades sockets, validates the
// handshake before any game state is touched, and pumps frames between
// the socket and the game's pipeline goroutine.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/game"
	"github.com/pretzelhammer/drawduel/internal/hub"
	"github.com/pretzelhammer/drawduel/internal/ident"
	"github.com/pretzelhammer/drawduel/internal/pipeline"
	"github.com/pretzelhammer/drawduel/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	// outboxSize buffers broadcasts; a client that falls this far
	// behind is dropped by the pipeline.
	outboxSize = 16
)

type handshake struct {
	gameID game.GameID
	player game.PlayerID
	pass   string
	name   string
}

// validateHandshake checks every connection parameter and reports all
// failures at once, so a client can fix its whole handshake in one go.
func validateHandshake(r *http.Request) (handshake, []types.ClientError) {
	q := r.URL.Query()
	var errs []types.ClientError

	gameID := q.Get("game")
	switch {
	case gameID == "":
		errs = append(errs, types.ErrMissingGameID)
	case !ident.ValidGameID(gameID):
		errs = append(errs, types.ErrInvalidGameID)
	}

	player := q.Get("player")
	switch {
	case player == "":
		errs = append(errs, types.ErrMissingPlayerID)
	case !ident.ValidPlayerID(player):
		errs = append(errs, types.ErrInvalidPlayerID)
	}

	pass := q.Get("pass")
	switch {
	case pass == "":
		errs = append(errs, types.ErrMissingPass)
	case !ident.ValidPass(pass):
		errs = append(errs, types.ErrInvalidPass)
	}

	name := q.Get("name")
	switch {
	case name == "":
		errs = append(errs, types.ErrMissingName)
	case !ident.ValidName(name):
		errs = append(errs, types.ErrInvalidName)
	}

	return handshake{
		gameID: game.GameID(gameID),
		player: game.PlayerID(player),
		pass:   pass,
		name:   name,
	}, errs
}

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs, errs := validateHandshake(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		if len(errs) > 0 {
			// report the whole error list, then hang up; no state was
			// touched
			writeMessage(r.Context(), conn, types.ClientErrorMessage(errs...))
			conn.Close(websocket.StatusPolicyViolation, "bad handshake")
			return
		}

		log := logger.With(
			zap.String("game_id", string(hs.gameID)),
			zap.String("player_id", string(hs.player)))

		outbox := make(chan types.ServerMessage, outboxSize)
		g, reply := connect(r.Context(), h, hs, outbox)
		if g == nil {
			writeMessage(r.Context(), conn, types.ServerErrorMessage(types.ErrInternal))
			return
		}
		if reply.Err != "" {
			writeMessage(r.Context(), conn, types.ClientErrorMessage(reply.Err))
			conn.Close(websocket.StatusPolicyViolation, string(reply.Err))
			return
		}
		defer func() {
			select {
			case g.Inbox() <- pipeline.Disconnected{PlayerID: hs.player}:
			case <-g.Done():
			}
		}()

		// writer: everything the pipeline emits for this session
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range outbox {
				writeMessage(writeCtx, conn, msg)
			}
			// pipeline closed the outbox: dropped or game destroyed
			conn.Close(websocket.StatusGoingAway, "bye")
		}()

		// reader: client events into the pipeline
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("socket read ended", zap.Error(err))
				}
				return
			}

			if string(data) == "PING" {
				_ = conn.Write(r.Context(), websocket.MessageText, []byte("PONG"))
				continue
			}

			events, err := types.DecodeClientMessage(data)
			if err != nil {
				log.Warn("undecodable message from client", zap.Error(err))
				writeMessage(r.Context(), conn, types.ServerErrorMessage(types.ErrBadMessage))
				continue
			}

			select {
			case g.Inbox() <- pipeline.FromClient{PlayerID: hs.player, Events: events}:
			case <-g.Done():
				return
			}
		}
	}
}

// connect resolves the game through the hub and runs the admission
// round-trip. The game may destroy itself between lookup and delivery,
// so every send selects on its Done channel and retries the lookup.
func connect(ctx context.Context, h *hub.Hub, hs handshake, outbox chan types.ServerMessage) (*pipeline.Game, pipeline.ConnectReply) {
	for attempt := 0; attempt < 3; attempt++ {
		gameReply := make(chan *pipeline.Game, 1)
		h.Inbox() <- hub.EnsureGame{ID: hs.gameID, Reply: gameReply}
		g := <-gameReply
		if g == nil {
			return nil, pipeline.ConnectReply{}
		}

		reply := make(chan pipeline.ConnectReply, 1)
		select {
		case g.Inbox() <- pipeline.Connect{
			PlayerID: hs.player,
			Pass:     hs.pass,
			Name:     hs.name,
			Outbox:   outbox,
			Reply:    reply,
		}:
		case <-g.Done():
			continue
		case <-ctx.Done():
			return nil, pipeline.ConnectReply{}
		}

		select {
		case r := <-reply:
			return g, r
		case <-g.Done():
			// the game may have replied just before shutting down
			select {
			case r := <-reply:
				return g, r
			default:
			}
			continue
		case <-ctx.Done():
			return nil, pipeline.ConnectReply{}
		}
	}
	return nil, pipeline.ConnectReply{}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	b, err := msg.Encode()
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, b)
}
