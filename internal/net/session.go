package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/time/rate"

	"github.com/benbenpetit/Seeet/internal/game"
	"github.com/benbenpetit/Seeet/internal/log"
)

// MessageConn carries protocol messages in both directions. TCP uses
// JSONConn; the web front end wraps a websocket.
type MessageConn interface {
	ReadMessage(ctx context.Context) (ClientMessage, error)
	WriteMessage(ctx context.Context, msg ServerMessage) error
}

// JSONConn is a MessageConn over a byte stream, one JSON object per line.
type JSONConn struct {
	enc *json.Encoder
	dec *json.Decoder
	mu  sync.Mutex // guards enc
}

// NewJSONConn wraps a stream connection.
func NewJSONConn(rw io.ReadWriter) *JSONConn {
	return &JSONConn{
		enc: json.NewEncoder(rw),
		dec: json.NewDecoder(rw),
	}
}

// ReadMessage decodes the next client message. ctx is not consulted;
// close the underlying connection to unblock a pending read.
func (c *JSONConn) ReadMessage(ctx context.Context) (ClientMessage, error) {
	var msg ClientMessage
	err := c.dec.Decode(&msg)
	return msg, err
}

// WriteMessage encodes one server message.
func (c *JSONConn) WriteMessage(ctx context.Context, msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(msg)
}

// SessionConfig holds configuration for a session.
type SessionConfig struct {
	Engine  game.EngineConfig
	Limiter *rate.Limiter // nil = unlimited
}

// Session plays one game engine over one connection. Every engine event is
// forwarded as an "event" message; a fresh "state" follows each command
// and each phase change, so timed resolutions reach the client unprompted.
type Session struct {
	conn    MessageConn
	engine  *game.Engine
	limiter *rate.Limiter

	ctx context.Context

	mu      sync.Mutex
	sendErr error
}

// NewSession creates a session and its engine. The engine deals
// immediately, but nothing is sent until Run.
func NewSession(conn MessageConn, cfg SessionConfig) *Session {
	s := &Session{
		conn:    conn,
		limiter: cfg.Limiter,
		ctx:     context.Background(),
	}
	s.engine = game.NewEngine(cfg.Engine)
	return s
}

var errSessionClosed = errors.New("session closed")

// Engine returns the session's engine.
func (s *Session) Engine() *game.Engine {
	return s.engine
}

// Run sends the initial state and serves commands until the client quits,
// the connection fails or ctx is cancelled. A clean disconnect returns nil.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer s.close()

	s.engine.Subscribe(game.ObserverFunc(s.Notify))
	if err := s.sendState(""); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.conn.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}
		if msg.Type == CmdQuit {
			return nil
		}
		if err := s.Handle(msg); err != nil {
			return err
		}
	}
}

// Handle applies one client command and sends the response.
func (s *Session) Handle(msg ClientMessage) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return s.send(ServerMessage{Type: MsgError, Error: "too many commands, slow down"})
	}

	switch msg.Type {
	case CmdSelect:
		var out game.Outcome
		if msg.Card != "" {
			card, err := game.ParseCard(msg.Card)
			if err != nil {
				return s.send(ServerMessage{Type: MsgError, Error: err.Error()})
			}
			out = s.engine.SelectCard(card)
		} else {
			out = s.engine.SelectIndex(msg.Index)
		}
		return s.sendState(out.String())

	case CmdMore:
		return s.sendState(s.engine.RequestMoreCards(msg.Count).String())

	case CmdReset:
		s.engine.Reset()
		return s.sendState(game.OutcomeApplied.String())

	case CmdHint:
		triple, found := s.engine.Hint()
		snap := s.engine.Snapshot()
		reply := ServerMessage{Type: MsgHint, Found: found, State: BuildStateView(snap, found)}
		if found {
			for _, c := range triple {
				reply.Hint = append(reply.Hint, BuildCardView(snap.Board.Index(c), c))
			}
		}
		return s.send(reply)

	case CmdState:
		return s.sendState("")

	default:
		return s.send(ServerMessage{Type: MsgError, Error: fmt.Sprintf("unknown command %q", msg.Type)})
	}
}

// Notify implements game.Observer.
func (s *Session) Notify(event log.GameEvent) {
	s.sendAsync(ServerMessage{Type: MsgEvent, Event: BuildEventView(event)})
	if event.Type == log.EventPhaseChange {
		s.sendAsync(ServerMessage{Type: MsgState, State: snapshotView(s.engine)})
	}
}

// Err returns the first error from an observer-driven send.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendErr
}

// close stops event forwarding, then settles the engine. Events raised by
// the engine while closing are not sent to a client that has gone.
func (s *Session) close() {
	s.mu.Lock()
	if s.sendErr == nil {
		s.sendErr = errSessionClosed
	}
	s.mu.Unlock()
	s.engine.Close()
}

func (s *Session) sendState(outcome string) error {
	if err := s.Err(); err != nil {
		return err
	}
	return s.send(ServerMessage{Type: MsgState, State: snapshotView(s.engine), Outcome: outcome})
}

func (s *Session) send(msg ServerMessage) error {
	if err := s.conn.WriteMessage(s.ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// sendAsync sends from observer context, where there is no caller to
// return an error to. The first failure is kept and later sends skipped.
func (s *Session) sendAsync(msg ServerMessage) {
	if s.Err() != nil {
		return
	}
	if err := s.send(msg); err != nil {
		s.mu.Lock()
		if s.sendErr == nil {
			s.sendErr = err
		}
		s.mu.Unlock()
	}
}
