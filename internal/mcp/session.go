package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	seeetnet "github.com/benbenpetit/Seeet/internal/net"

	"github.com/benbenpetit/Seeet/internal/game"
	"github.com/benbenpetit/Seeet/internal/log"
)

// settleTimeout bounds how long a tool call waits for a pending resolution.
const settleTimeout = 10 * time.Second

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []seeetnet.EventView `json:"events"`
	State    *seeetnet.StateView  `json:"state"`
	Outcome  string               `json:"outcome,omitempty"`
	Hint     []seeetnet.CardView  `json:"hint,omitempty"`
	Sets     int                  `json:"sets_on_board"`
	GameOver bool                 `json:"game_over"`
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	engine *game.Engine

	// changed is signalled (without blocking) on every phase change.
	changed chan struct{}

	mu     sync.Mutex
	events []seeetnet.EventView
}

// NewGameSession creates a session and deals the first game. Events from
// the very first deal are kept for the first tool response.
func NewGameSession(cfg game.EngineConfig) *GameSession {
	sess := &GameSession{changed: make(chan struct{}, 1)}
	cfg.Observers = append(append([]game.Observer(nil), cfg.Observers...), game.ObserverFunc(sess.notify))
	sess.engine = game.NewEngine(cfg)
	return sess
}

// Engine returns the session's engine.
func (s *GameSession) Engine() *game.Engine {
	return s.engine
}

// Close cancels any pending resolution.
func (s *GameSession) Close() {
	s.engine.Close()
}

func (s *GameSession) notify(event log.GameEvent) {
	s.appendEvent(*seeetnet.BuildEventView(event))
	if event.Type == log.EventPhaseChange {
		select {
		case s.changed <- struct{}{}:
		default:
		}
	}
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev seeetnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []seeetnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// waitSettled blocks until no resolution is pending, so the caller sees
// the board after a Set is removed or a miss is cleared.
func (s *GameSession) waitSettled(ctx context.Context) error {
	timer := time.NewTimer(settleTimeout)
	defer timer.Stop()
	for s.engine.Snapshot().Pending {
		select {
		case <-s.changed:
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("resolution still pending after %s", settleTimeout)
		}
	}
	return nil
}

// respond waits for the engine to settle and builds a ToolResponse with
// the events accumulated since the previous response.
func (s *GameSession) respond(ctx context.Context, outcome string) (*ToolResponse, error) {
	if err := s.waitSettled(ctx); err != nil {
		return nil, err
	}
	snap := s.engine.Snapshot()
	sets := game.CountSets(snap.Board)
	resp := &ToolResponse{
		Events:   s.drainEvents(),
		State:    seeetnet.BuildStateView(snap, sets > 0),
		Outcome:  outcome,
		Sets:     sets,
		GameOver: snap.Over,
	}
	// Ensure events is never null in JSON
	if resp.Events == nil {
		resp.Events = []seeetnet.EventView{}
	}
	return resp, nil
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
