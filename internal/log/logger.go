package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- StreamLogger: writes lines without keeping events ---

// StreamLogger writes each event like TextLogger but retains nothing, so it
// suits long-lived servers. One StreamLogger may be shared by many engines.
type StreamLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStreamLogger(w io.Writer) *StreamLogger {
	return &StreamLogger{w: w}
}

func (l *StreamLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, FormatEvent(event))
}

// Events always returns nil.
func (l *StreamLogger) Events() []GameEvent { return nil }

// --- DiscardLogger ---

type DiscardLogger struct{}

func NewDiscardLogger() DiscardLogger { return DiscardLogger{} }

func (DiscardLogger) Log(GameEvent)       {}
func (DiscardLogger) Events() []GameEvent { return nil }

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 18 chars for alignment
	for len(phase) < 18 {
		phase += " "
	}
	return fmt.Sprintf("G%-2d %s| %s", e.Game, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewGameEvent(game int, phase string, boardSize, deckSize int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventNewGame,
		Details: fmt.Sprintf("=== Game %d: %d on board, %d in deck ===", game, boardSize, deckSize),
	}
}

func NewPhaseChangeEvent(game int, from, to string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   to,
		Type:    EventPhaseChange,
		Score:   score,
		Details: fmt.Sprintf("Phase %s → %s", from, to),
	}
}

func NewBoardChangeEvent(game int, phase string, board []string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventBoardChange,
		Cards:   board,
		Score:   score,
		Details: fmt.Sprintf("Board now %d cards", len(board)),
	}
}

func NewSelectionChangeEvent(game int, phase string, selection []string, score int) GameEvent {
	details := "Selection cleared"
	if len(selection) > 0 {
		details = fmt.Sprintf("Selection: %s", strings.Join(selection, ", "))
	}
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventSelectionChange,
		Cards:   selection,
		Score:   score,
		Details: details,
	}
}

func NewScoreChangeEvent(game int, phase string, oldScore, newScore int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventScoreChange,
		Score:   newScore,
		Details: fmt.Sprintf("Score: %d → %d", oldScore, newScore),
	}
}

func NewDealEvent(game int, phase string, cards []string, deckLeft, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventDeal,
		Cards:   cards,
		Score:   score,
		Details: fmt.Sprintf("Dealt %d card(s): %s (%d left in deck)", len(cards), strings.Join(cards, ", "), deckLeft),
	}
}

func NewSetFoundEvent(game int, phase string, cards []string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventSetFound,
		Cards:   cards,
		Score:   score,
		Details: fmt.Sprintf("Set! %s", strings.Join(cards, ", ")),
	}
}

func NewNotASetEvent(game int, phase string, cards []string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventNotASet,
		Cards:   cards,
		Score:   score,
		Details: fmt.Sprintf("Not a Set: %s", strings.Join(cards, ", ")),
	}
}

func NewRejectedEvent(game int, phase string, command string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventRejected,
		Score:   score,
		Details: fmt.Sprintf("%s rejected: resolution pending", command),
	}
}

func NewGameOverEvent(game int, phase string, score int) GameEvent {
	return GameEvent{
		Game:    game,
		Phase:   phase,
		Type:    EventGameOver,
		Score:   score,
		Details: fmt.Sprintf("Game over: deck empty and no Set left (score %d)", score),
	}
}
