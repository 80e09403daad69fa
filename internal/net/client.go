package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/benbenpetit/Seeet/internal/log"
)

const replHelp = `Commands:
  1 5 7     select cards by board number (selecting again deselects)
  m [n]     deal more cards
  h         show a Set, if there is one
  s         redraw the board
  r         new game
  q         quit`

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer

	mu  sync.Mutex // guards out
	enc *json.Encoder
}

// NewClient creates a client over conn reading commands from in and
// rendering to out.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out, enc: json.NewEncoder(conn)}
}

// Connect dials a server and runs the REPL on in/out.
func Connect(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Fprintln(out, "Connected!")
	return NewClient(conn, in, out).RunREPL(ctx)
}

// RunREPL renders server messages as they arrive and sends commands read
// from the input, until either side finishes.
func (c *Client) RunREPL(ctx context.Context) error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readLoop()
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	c.printf("%s\n", replHelp)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				_ = c.enc.Encode(ClientMessage{Type: CmdQuit})
				return nil
			}
			msgs, quit, err := ParseCommand(line)
			if err != nil {
				c.printf("%v\n", err)
				continue
			}
			for _, msg := range msgs {
				if err := c.enc.Encode(msg); err != nil {
					return fmt.Errorf("send %s: %w", msg.Type, err)
				}
			}
			if quit {
				return nil
			}
		}
	}
}

// ParseCommand turns one REPL line into protocol messages. Board numbers
// are 1-based on the terminal and 0-based on the wire.
func ParseCommand(line string) ([]ClientMessage, bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch fields[0] {
	case "q", "quit":
		return []ClientMessage{{Type: CmdQuit}}, true, nil
	case "r", "reset":
		return []ClientMessage{{Type: CmdReset}}, false, nil
	case "h", "hint":
		return []ClientMessage{{Type: CmdHint}}, false, nil
	case "s", "state":
		return []ClientMessage{{Type: CmdState}}, false, nil
	case "m", "more":
		msg := ClientMessage{Type: CmdMore}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, false, fmt.Errorf("more takes a positive count")
			}
			msg.Count = n
		}
		return []ClientMessage{msg}, false, nil
	case "?", "help":
		return nil, false, errors.New(replHelp)
	}

	var msgs []ClientMessage
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, false, fmt.Errorf("unknown command %q (? for help)", f)
		}
		msgs = append(msgs, ClientMessage{Type: CmdSelect, Index: n - 1})
	}
	return msgs, false, nil
}

func (c *Client) readLoop() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				c.printf("Server closed the connection.\n")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgEvent:
			c.renderEvent(msg.Event)
		case MsgState:
			c.renderState(msg.State)
			if msg.Outcome != "" && msg.Outcome != "applied" {
				c.printf("(%s)\n", msg.Outcome)
			}
		case MsgHint:
			c.renderHint(msg)
		case MsgError:
			c.printf("error: %s\n", msg.Error)
		}
	}
}

func (c *Client) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	switch ev.Type {
	case log.EventSetFound.String(), log.EventNotASet.String(), log.EventDeal.String(),
		log.EventGameOver.String(), log.EventRejected.String():
		c.printf("* %s\n", ev.Details)
	}
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	c.printf("%s", FormatBoard(sv))
}

func (c *Client) renderHint(msg ServerMessage) {
	if !msg.Found {
		c.printf("No Set on the board. Ask for more cards (m).\n")
		return
	}
	var parts []string
	for _, cv := range msg.Hint {
		parts = append(parts, fmt.Sprintf("[%d] %s", cv.Index+1, cv.Name))
	}
	c.printf("Hint: %s\n", strings.Join(parts, "  "))
}

// FormatBoard renders a state as a numbered board, three cards per row.
// Selected cards are marked with '*'.
func FormatBoard(sv *StateView) string {
	var b strings.Builder
	b.WriteString("\n╔══════════════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(&b, "║  Game %d | Score %d | Deck %d | %s\n", sv.Game, sv.Score, sv.DeckCount, sv.Phase)
	b.WriteString("║──────────────────────────────────────────────────────────────────────────\n")
	for i, cv := range sv.Board {
		if i%3 == 0 {
			b.WriteString("║ ")
		}
		mark := " "
		if cv.Selected {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s[%2d] %-20s", mark, cv.Index+1, cv.Name)
		if i%3 == 2 || i == len(sv.Board)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("╚══════════════════════════════════════════════════════════════════════════╝\n")
	switch {
	case sv.Over:
		b.WriteString("GAME OVER. No Sets left. r for a new game.\n")
	case !sv.HasSet && sv.DeckCount > 0:
		b.WriteString("No Set on the board. m for more cards.\n")
	}
	return b.String()
}
