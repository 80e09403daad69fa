package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/benbenpetit/Seeet/internal/game"
	"github.com/benbenpetit/Seeet/internal/log"
)

// testConn is the client end of a piped session.
type testConn struct {
	t    *testing.T
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	done chan error
}

func startSession(t *testing.T, cfg SessionConfig) *testConn {
	t.Helper()
	if cfg.Engine.SuccessDelay == 0 {
		cfg.Engine.SuccessDelay = 5 * time.Millisecond
	}
	if cfg.Engine.FailDelay == 0 {
		cfg.Engine.FailDelay = 5 * time.Millisecond
	}
	cfg.Engine.NoShuffle = true

	clientConn, serverConn := net.Pipe()
	tc := &testConn{
		t:    t,
		conn: clientConn,
		enc:  json.NewEncoder(clientConn),
		dec:  json.NewDecoder(clientConn),
		done: make(chan error, 1),
	}
	go func() {
		defer serverConn.Close()
		tc.done <- NewSession(NewJSONConn(serverConn), cfg).Run(context.Background())
	}()
	t.Cleanup(func() { clientConn.Close() })
	return tc
}

func (tc *testConn) send(msg ClientMessage) {
	tc.t.Helper()
	tc.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := tc.enc.Encode(msg); err != nil {
		tc.t.Fatalf("send %s: %v", msg.Type, err)
	}
}

// readUntil reads messages until match returns true, returning every
// message read including the match.
func (tc *testConn) readUntil(match func(ServerMessage) bool) []ServerMessage {
	tc.t.Helper()
	tc.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var seen []ServerMessage
	for {
		var msg ServerMessage
		if err := tc.dec.Decode(&msg); err != nil {
			tc.t.Fatalf("read after %d messages: %v", len(seen), err)
		}
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

// reply reads up to the state or hint answering the last command.
func (tc *testConn) reply() ServerMessage {
	tc.t.Helper()
	msgs := tc.readUntil(func(m ServerMessage) bool {
		return (m.Type == MsgState && m.Outcome != "") || m.Type == MsgHint || m.Type == MsgError
	})
	return msgs[len(msgs)-1]
}

func (tc *testConn) initial() *StateView {
	tc.t.Helper()
	msgs := tc.readUntil(func(m ServerMessage) bool { return m.Type == MsgState })
	return msgs[len(msgs)-1].State
}

func TestSessionInitialState(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	sv := tc.initial()
	if len(sv.Board) != game.DefaultInitialBoardSize {
		t.Fatalf("board = %d cards", len(sv.Board))
	}
	if sv.Phase != game.PhaseIdle.String() || sv.Score != 0 || sv.DeckCount != game.DeckSize-3 {
		t.Errorf("state = %+v", sv)
	}
	if sv.Board[0].Name != "SOLID-GREEN-OVAL-1" || sv.Board[2].Size != 3 {
		t.Errorf("board = %+v", sv.Board)
	}
	if !sv.HasSet {
		t.Error("canonical first three cards form a Set")
	}
}

func TestSessionSelectToggles(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()

	tc.send(ClientMessage{Type: CmdSelect, Index: 1})
	r := tc.reply()
	if r.Outcome != "applied" || len(r.State.Selection) != 1 || !r.State.Board[1].Selected {
		t.Fatalf("after select: %+v", r.State)
	}
	if r.State.Phase != game.PhaseSelecting.String() {
		t.Errorf("phase = %s", r.State.Phase)
	}

	tc.send(ClientMessage{Type: CmdSelect, Index: 1})
	r = tc.reply()
	if len(r.State.Selection) != 0 || r.State.Phase != game.PhaseIdle.String() {
		t.Fatalf("after deselect: %+v", r.State)
	}

	tc.send(ClientMessage{Type: CmdSelect, Index: 40})
	if r = tc.reply(); r.Outcome != "ignored" {
		t.Errorf("out of range outcome = %q", r.Outcome)
	}
}

func TestSessionSetResolves(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()

	// The pipe is unbuffered: read each reply before sending the next command.
	for i := 0; i < 2; i++ {
		tc.send(ClientMessage{Type: CmdSelect, Index: i})
		if r := tc.reply(); r.Outcome != "applied" {
			t.Fatalf("select %d outcome = %q", i, r.Outcome)
		}
	}
	tc.send(ClientMessage{Type: CmdSelect, Index: 2})
	msgs := tc.readUntil(func(m ServerMessage) bool {
		return m.Type == MsgState && m.State.Score == 1 && m.State.Phase == game.PhaseIdle.String()
	})

	var found bool
	for _, m := range msgs {
		if m.Type == MsgEvent && m.Event.Type == "SetFound" {
			found = true
			if len(m.Event.Cards) != 3 {
				t.Errorf("SetFound cards = %v", m.Event.Cards)
			}
		}
	}
	if !found {
		t.Error("no SetFound event forwarded")
	}
	last := msgs[len(msgs)-1].State
	if len(last.Board) != 0 || last.DeckCount != game.DeckSize-3 || last.Pending {
		t.Errorf("after resolution: %+v", last)
	}
}

func TestSessionSelectByName(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()

	tc.send(ClientMessage{Type: CmdSelect, Card: "solid-green-oval-3"})
	r := tc.reply()
	if len(r.State.Selection) != 1 || r.State.Selection[0] != "SOLID-GREEN-OVAL-3" {
		t.Fatalf("selection = %v", r.State.Selection)
	}

	tc.send(ClientMessage{Type: CmdSelect, Card: "PLAID-GREEN-OVAL-1"})
	if r = tc.reply(); r.Type != MsgError {
		t.Fatalf("bad card reply = %+v", r)
	}

	tc.send(ClientMessage{Type: CmdSelect, Card: "EMPTY-RED-WAVE-3"})
	if r = tc.reply(); r.Outcome != "ignored" {
		t.Errorf("off-board outcome = %q", r.Outcome)
	}
}

func TestSessionHintAndMore(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()

	tc.send(ClientMessage{Type: CmdHint})
	r := tc.reply()
	if r.Type != MsgHint || !r.Found || len(r.Hint) != 3 {
		t.Fatalf("hint = %+v", r)
	}
	for i, cv := range r.Hint {
		if cv.Index != i {
			t.Errorf("hint[%d] index = %d", i, cv.Index)
		}
	}

	tc.send(ClientMessage{Type: CmdMore, Count: 6})
	r = tc.reply()
	if len(r.State.Board) != 9 || r.State.DeckCount != game.DeckSize-9 {
		t.Errorf("after more: board %d deck %d", len(r.State.Board), r.State.DeckCount)
	}

	tc.send(ClientMessage{Type: CmdReset})
	r = tc.reply()
	if r.State.Game != 2 || len(r.State.Board) != 3 {
		t.Errorf("after reset: %+v", r.State)
	}
}

func TestSessionErrorsAndQuit(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()

	tc.send(ClientMessage{Type: "shuffle"})
	if r := tc.reply(); r.Type != MsgError || !strings.Contains(r.Error, "unknown command") {
		t.Fatalf("reply = %+v", r)
	}

	tc.send(ClientMessage{Type: CmdQuit})
	select {
	case err := <-tc.done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on quit")
	}
}

func TestSessionRateLimit(t *testing.T) {
	tc := startSession(t, SessionConfig{Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)})
	tc.initial()

	tc.send(ClientMessage{Type: CmdState})
	if r := tc.readUntil(func(m ServerMessage) bool { return m.Type == MsgState }); r[len(r)-1].Type != MsgState {
		t.Fatal("first command not served")
	}
	tc.send(ClientMessage{Type: CmdSelect, Index: 0})
	if r := tc.reply(); r.Type != MsgError || !strings.Contains(r.Error, "slow down") {
		t.Fatalf("throttled reply = %+v", r)
	}
}

func TestSessionDisconnect(t *testing.T) {
	tc := startSession(t, SessionConfig{})
	tc.initial()
	tc.conn.Close()
	select {
	case err := <-tc.done:
		if err != nil {
			t.Fatalf("Run after disconnect = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on disconnect")
	}
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Error("zero rate should disable limiting")
	}
	l := NewLimiter(10, 0)
	if l == nil || l.Burst() != 1 {
		t.Errorf("limiter = %+v", l)
	}
}

func TestServerServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var logBuf syncBuffer
	s := &Server{Engine: game.EngineConfig{NoShuffle: true}, LogOutput: &logBuf}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	tc := &testConn{t: t, conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
	if sv := tc.initial(); len(sv.Board) != 3 {
		t.Fatalf("board = %+v", sv.Board)
	}
	tc.send(ClientMessage{Type: CmdMore})
	if r := tc.reply(); len(r.State.Board) != 6 {
		t.Fatalf("board after more = %d", len(r.State.Board))
	}
	if !strings.Contains(logBuf.String(), "Dealt 3") {
		t.Errorf("server log missing deal: %q", logBuf.String())
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("Serve = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestServerSessionsKeepNoEventHistory(t *testing.T) {
	quiet := &Server{}
	if l := quiet.NewSession(&bytes.Buffer{}).Engine().Config().Logger; l != (log.DiscardLogger{}) {
		t.Errorf("logger without output = %T, want DiscardLogger", l)
	}

	var out bytes.Buffer
	s := &Server{Engine: game.EngineConfig{NoShuffle: true}, LogOutput: &out}
	a := s.NewSession(&bytes.Buffer{}).Engine()
	b := s.NewSession(&bytes.Buffer{}).Engine()
	la, ok := a.Config().Logger.(*log.StreamLogger)
	if !ok {
		t.Fatalf("logger with output = %T, want *StreamLogger", a.Config().Logger)
	}
	if b.Config().Logger != la {
		t.Error("sessions do not share the server's stream logger")
	}

	for i := 0; i < 5; i++ {
		a.Reset()
	}
	if got := strings.Count(out.String(), "=== Game"); got != 7 {
		t.Errorf("logged %d new games, want 7", got)
	}
	if la.Events() != nil {
		t.Error("stream logger kept events")
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
