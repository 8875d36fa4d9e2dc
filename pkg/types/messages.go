// Package types is the wire protocol: the JSON envelope shared by
// client and server. Every frame is {"type": ..., "data": ...}; game
// events use their own event type as the tag, so the envelope namespace
// is the event union plus the control kinds below.
package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pretzelhammer/drawduel/internal/game"
)

const (
	KindSetGameState = "set-game-state"
	KindBatch        = "batch"
	KindClientError  = "client-error"
	KindServerError  = "server-error"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrEmptyBatch  = errors.New("empty batch")
	ErrNestedBatch = errors.New("batch inside batch")
)

// ClientError identifies why a handshake was rejected.
type ClientError string

const (
	ErrMissingGameID    ClientError = "missing-game-id"
	ErrInvalidGameID    ClientError = "invalid-game-id"
	ErrMissingPlayerID  ClientError = "missing-player-id"
	ErrInvalidPlayerID  ClientError = "invalid-player-id"
	ErrMissingPass      ClientError = "missing-pass"
	ErrInvalidPass      ClientError = "invalid-pass"
	ErrIncorrectPass    ClientError = "incorrect-pass"
	ErrMissingName      ClientError = "missing-name"
	ErrInvalidName      ClientError = "invalid-name"
	ErrAlreadyConnected ClientError = "already-connected"
)

// ServerError identifies a server-side fault reported to clients.
type ServerError string

const (
	ErrInternal   ServerError = "internal-error"
	ErrBadMessage ServerError = "bad-message"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage is one outbound frame. Exactly one field is set.
// Snapshots are pre-marshaled by the pipeline so the game state is
// never read outside its single-writer goroutine.
type ServerMessage struct {
	Events       []game.Event
	Snapshot     json.RawMessage
	ClientErrors []ClientError
	ServerErrors []ServerError
}

func EventsMessage(events ...game.Event) ServerMessage {
	return ServerMessage{Events: events}
}

func SnapshotMessage(s *game.GameState) (ServerMessage, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return ServerMessage{}, fmt.Errorf("marshal game state: %w", err)
	}
	return ServerMessage{Snapshot: raw}, nil
}

func ClientErrorMessage(errs ...ClientError) ServerMessage {
	return ServerMessage{ClientErrors: errs}
}

func ServerErrorMessage(errs ...ServerError) ServerMessage {
	return ServerMessage{ServerErrors: errs}
}

// Encode renders the frame: a bare event for a single event, a batch
// envelope for two or more, control envelopes otherwise.
func (m ServerMessage) Encode() ([]byte, error) {
	switch {
	case len(m.Events) == 1:
		return EncodeEvent(m.Events[0])
	case len(m.Events) > 1:
		frames := make([]json.RawMessage, 0, len(m.Events))
		for _, e := range m.Events {
			frame, err := EncodeEvent(e)
			if err != nil {
				return nil, err
			}
			frames = append(frames, frame)
		}
		return marshalEnvelope(KindBatch, frames)
	case m.Snapshot != nil:
		return marshalEnvelope(KindSetGameState, m.Snapshot)
	case len(m.ClientErrors) > 0:
		return marshalEnvelope(KindClientError, m.ClientErrors)
	case len(m.ServerErrors) > 0:
		return marshalEnvelope(KindServerError, m.ServerErrors)
	}
	return nil, ErrEmptyBatch
}

// EncodeEvent renders one game event as its tagged envelope.
func EncodeEvent(e game.Event) ([]byte, error) {
	return marshalEnvelope(string(e.EventType()), e)
}

func marshalEnvelope(kind string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return json.Marshal(envelope{Type: kind, Data: raw})
}

// DecodeClientMessage parses an inbound frame into its events: one for
// a bare event, all of them in order for a batch. Batches may not nest.
func DecodeClientMessage(raw []byte) ([]game.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type != KindBatch {
		e, err := decodeEvent(env)
		if err != nil {
			return nil, err
		}
		return []game.Event{e}, nil
	}
	var inner []json.RawMessage
	if err := json.Unmarshal(env.Data, &inner); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	if len(inner) == 0 {
		return nil, ErrEmptyBatch
	}
	events := make([]game.Event, 0, len(inner))
	for _, frame := range inner {
		var ienv envelope
		if err := json.Unmarshal(frame, &ienv); err != nil {
			return nil, fmt.Errorf("unmarshal batch entry: %w", err)
		}
		if ienv.Type == KindBatch {
			return nil, ErrNestedBatch
		}
		e, err := decodeEvent(ienv)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func decodeEvent(env envelope) (game.Event, error) {
	var (
		e   game.Event
		err error
	)
	switch game.EventType(env.Type) {
	case game.EventJoin:
		e, err = unmarshalEvent[game.Join](env.Data)
	case game.EventLeft:
		e, err = unmarshalEvent[game.Left](env.Data)
	case game.EventIncPlayerScore:
		e, err = unmarshalEvent[game.IncPlayerScore](env.Data)
	case game.EventChangePlayerName:
		e, err = unmarshalEvent[game.ChangePlayerName](env.Data)
	case game.EventJoinTeam:
		e, err = unmarshalEvent[game.JoinTeam](env.Data)
	case game.EventReady:
		e, err = unmarshalEvent[game.Ready](env.Data)
	case game.EventReconnect:
		e, err = unmarshalEvent[game.Reconnect](env.Data)
	case game.EventDisconnect:
		e, err = unmarshalEvent[game.Disconnect](env.Data)
	case game.EventTimer:
		e, err = unmarshalEvent[game.Timer](env.Data)
	case game.EventNewRound:
		e, err = unmarshalEvent[game.NewRound](env.Data)
	case game.EventRoundPhase:
		e, err = unmarshalEvent[game.RoundPhaseChange](env.Data)
	case game.EventGamePhase:
		e, err = unmarshalEvent[game.GamePhaseChange](env.Data)
	case game.EventChoose:
		e, err = unmarshalEvent[game.Choose](env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return e, nil
}

func unmarshalEvent[E game.Event](data []byte) (game.Event, error) {
	var e E
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return e, nil
}
