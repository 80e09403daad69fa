package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/time/rate"

	"github.com/benbenpetit/Seeet/internal/game"
	"github.com/benbenpetit/Seeet/internal/log"
)

// Server hosts independent single-player games, one per TCP connection.
type Server struct {
	Port   string
	Engine game.EngineConfig

	// CommandRate and CommandBurst throttle each connection (0 rate = unlimited).
	CommandRate  float64
	CommandBurst int

	// LogOutput, when set, receives every session's events in text form.
	LogOutput io.Writer

	streamOnce sync.Once
	stream     *log.StreamLogger
}

// Run listens on Port and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	fmt.Printf("Serving Seeet on port %s...\n", s.Port)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It closes ln and
// every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		conns = map[net.Conn]struct{}{}
	)

	closeAll := func() {
		ln.Close()
		mu.Lock()
		for c := range conns {
			c.Close()
		}
		mu.Unlock()
	}
	stop := context.AfterFunc(ctx, closeAll)
	defer stop()

	defer wg.Wait()
	defer closeAll()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		mu.Lock()
		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				mu.Lock()
				delete(conns, conn)
				mu.Unlock()
				conn.Close()
			}()
			fmt.Printf("Player connected from %s\n", conn.RemoteAddr())
			if err := s.NewSession(conn).Run(ctx); err != nil && ctx.Err() == nil {
				fmt.Printf("Session %s: %v\n", conn.RemoteAddr(), err)
			}
		}()
	}
}

// NewSession creates a session for one connection using the server's
// rules, throttle and log output. Session engines keep no event history.
func (s *Server) NewSession(rw io.ReadWriter) *Session {
	cfg := s.Engine
	cfg.Logger = s.sessionLogger()
	return NewSession(NewJSONConn(rw), SessionConfig{
		Engine:  cfg,
		Limiter: NewLimiter(s.CommandRate, s.CommandBurst),
	})
}

func (s *Server) sessionLogger() log.EventLogger {
	if s.LogOutput == nil {
		return log.NewDiscardLogger()
	}
	s.streamOnce.Do(func() { s.stream = log.NewStreamLogger(s.LogOutput) })
	return s.stream
}

// NewLimiter returns a per-session command limiter, or nil when r is 0.
func NewLimiter(r float64, burst int) *rate.Limiter {
	if r <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r), burst)
}

// PlayLocal runs a game in-process: a session on one end of a pipe and a
// terminal client on the other.
func PlayLocal(ctx context.Context, cfg game.EngineConfig, in io.Reader, out io.Writer) error {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	errCh := make(chan error, 2)
	go func() {
		defer serverConn.Close()
		errCh <- NewSession(NewJSONConn(serverConn), SessionConfig{Engine: cfg}).Run(ctx)
	}()
	go func() {
		client := NewClient(clientConn, in, out)
		errCh <- client.RunREPL(ctx)
	}()

	return <-errCh
}
