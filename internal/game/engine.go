package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/benbenpetit/Seeet/internal/log"
)

const (
	DefaultInitialBoardSize = 3
	DefaultReplenishCount   = 3
	// Any 21 cards contain a Set, so a board at this size always has a move.
	DefaultMaxBoardSize = 21
	DefaultSuccessDelay = 500 * time.Millisecond
	DefaultFailDelay    = 300 * time.Millisecond

	SelectionSize = 3
)

// Observer receives engine events: board, selection, score and phase
// changes, plus deals and verdicts. Presentation layers implement it to
// drive layout, animation and sound. Notify is never called with the
// engine lock held, so an observer may call back into the engine.
type Observer interface {
	Notify(event log.GameEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(event log.GameEvent)

func (f ObserverFunc) Notify(event log.GameEvent) { f(event) }

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The engine's only suspension point.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EngineConfig holds configuration for creating an engine.
type EngineConfig struct {
	InitialBoardSize int           // cards dealt by a new game (0 = default)
	ReplenishCount   int           // cards added by RequestMoreCards(0) (0 = default)
	MaxBoardSize     int           // cap for RequestMoreCards (0 = default)
	AutoReplenish    bool          // refill to InitialBoardSize after a Set
	SuccessDelay     time.Duration // resolution delay after a Set (0 = default)
	FailDelay        time.Duration // resolution delay after a miss (0 = default)
	Seed             int64         // RNG seed (0 for random)
	NoShuffle        bool          // deal in canonical order (for deterministic tests)

	Logger    log.EventLogger
	Scheduler Scheduler
	Observers []Observer
}

func (cfg EngineConfig) withDefaults() EngineConfig {
	if cfg.InitialBoardSize <= 0 {
		cfg.InitialBoardSize = DefaultInitialBoardSize
	}
	if cfg.ReplenishCount <= 0 {
		cfg.ReplenishCount = DefaultReplenishCount
	}
	if cfg.MaxBoardSize <= 0 {
		cfg.MaxBoardSize = DefaultMaxBoardSize
	}
	if cfg.SuccessDelay <= 0 {
		cfg.SuccessDelay = DefaultSuccessDelay
	}
	if cfg.FailDelay <= 0 {
		cfg.FailDelay = DefaultFailDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = realScheduler{}
	}
	return cfg
}

// State is an immutable snapshot of the engine.
type State struct {
	Game      int
	Board     Board
	Selection []Card
	Score     int
	Phase     Phase
	DeckCount int
	Pending   bool // a delayed resolution is in flight
	Over      bool // deck empty and no Set on the board
}

// Selected reports whether card is in the snapshot's selection.
func (s State) Selected(card Card) bool {
	for _, c := range s.Selection {
		if c == card {
			return true
		}
	}
	return false
}

// Engine is the selection/resolution state machine. It owns the deck,
// board, selection and score of one game at a time.
type Engine struct {
	mu     sync.Mutex
	cfg    EngineConfig
	rng    *rand.Rand
	logger log.EventLogger
	sched  Scheduler

	observers   []Observer
	outbox      []log.GameEvent
	dispatching bool
	seq         int

	game      int
	deck      Deck
	board     Board
	selection []Card
	score     int
	phase     Phase
	over      bool

	// pending is the in-flight resolution timer. token identifies it; a
	// callback whose token no longer matches is stale and does nothing.
	pending Timer
	token   uint64
}

// NewEngine creates an engine and deals the first game.
func NewEngine(cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	e := &Engine{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    cfg.Logger,
		sched:     cfg.Scheduler,
		observers: append([]Observer(nil), cfg.Observers...),
	}

	e.mu.Lock()
	e.newGameLocked()
	e.mu.Unlock()
	e.flush()
	return e
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Subscribe registers an observer for all future events.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// --- Commands ---

// Reset cancels any pending resolution and starts a new game. Valid in
// every phase.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cancelPendingLocked()
	e.newGameLocked()
	e.mu.Unlock()
	e.flush()
}

// Close cancels any pending resolution and drops the selection it would
// have resolved, leaving the engine Idle. The engine stays queryable and
// accepts commands afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancelPendingLocked()
	if e.phase.Resolving() {
		e.selection = nil
		e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), nil, e.score))
		e.setPhaseLocked(PhaseIdle)
	}
	e.checkInvariantsLocked()
	e.mu.Unlock()
	e.flush()
}

// SelectCard toggles card in the selection. Selecting a third card
// evaluates the selection and schedules its resolution. Cards not on the
// board and a fourth card are ignored; any selection while a resolution is
// pending is rejected.
func (e *Engine) SelectCard(card Card) Outcome {
	e.mu.Lock()
	out := e.selectLocked(card)
	e.checkInvariantsLocked()
	e.mu.Unlock()
	e.flush()
	return out
}

// SelectIndex selects the card at a board position, for callers that
// address cards by layout slot.
func (e *Engine) SelectIndex(i int) Outcome {
	e.mu.Lock()
	var out Outcome
	switch {
	case e.pending != nil || e.phase.Resolving():
		out = e.rejectLocked(fmt.Sprintf("select #%d", i))
	case i < 0 || i >= len(e.board):
		e.mu.Unlock()
		return OutcomeIgnored
	default:
		out = e.selectLocked(e.board[i])
	}
	e.checkInvariantsLocked()
	e.mu.Unlock()
	e.flush()
	return out
}

// RequestMoreCards deals up to count more cards (count <= 0 uses the
// configured ReplenishCount). The board stops growing at MaxBoardSize
// unless it holds no Set.
func (e *Engine) RequestMoreCards(count int) Outcome {
	e.mu.Lock()
	out := e.requestMoreLocked(count)
	e.checkInvariantsLocked()
	e.mu.Unlock()
	e.flush()
	return out
}

// --- Queries ---

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Game:      e.game,
		Board:     append(Board(nil), e.board...),
		Selection: append([]Card(nil), e.selection...),
		Score:     e.score,
		Phase:     e.phase,
		DeckCount: len(e.deck),
		Pending:   e.pending != nil,
		Over:      e.over,
	}
}

// HasSet reports whether the current board holds at least one Set.
func (e *Engine) HasSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HasSet(e.board)
}

// Hint returns one Set on the current board, if any.
func (e *Engine) Hint() (Triple, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FindSet(e.board)
}

// SetsOnBoard counts the Sets on the current board.
func (e *Engine) SetsOnBoard() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CountSets(e.board)
}

// --- State machine ---

func (e *Engine) newGameLocked() {
	e.game++
	if e.cfg.NoShuffle {
		e.deck, e.board, _ = Replenish(Deck(FullDeck()), nil, e.cfg.InitialBoardSize)
	} else {
		e.deck, e.board = Deal(e.rng, e.cfg.InitialBoardSize)
	}
	oldScore := e.score
	e.score = 0
	e.selection = nil
	e.over = false

	e.emit(log.NewGameEvent(e.game, e.phase.String(), len(e.board), len(e.deck)))
	e.emit(log.NewBoardChangeEvent(e.game, e.phase.String(), cardNames(e.board), e.score))
	e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), nil, e.score))
	if oldScore != 0 {
		e.emit(log.NewScoreChangeEvent(e.game, e.phase.String(), oldScore, 0))
	}
	e.setPhaseLocked(PhaseIdle)
	e.checkOverLocked()
	e.checkInvariantsLocked()
}

// rejectLocked records a command refused by the resolution latch.
func (e *Engine) rejectLocked(command string) Outcome {
	e.emit(log.NewRejectedEvent(e.game, e.phase.String(), command, e.score))
	return OutcomeRejected
}

func (e *Engine) selectLocked(card Card) Outcome {
	if e.pending != nil || e.phase.Resolving() {
		return e.rejectLocked("select " + card.String())
	}
	if !e.board.Contains(card) {
		return OutcomeIgnored
	}

	for i, c := range e.selection {
		if c == card {
			sel := make([]Card, 0, len(e.selection)-1)
			sel = append(sel, e.selection[:i]...)
			e.selection = append(sel, e.selection[i+1:]...)
			e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), cardNames(e.selection), e.score))
			if len(e.selection) == 0 {
				e.setPhaseLocked(PhaseIdle)
			}
			return OutcomeApplied
		}
	}

	if len(e.selection) >= SelectionSize {
		return OutcomeIgnored
	}
	e.selection = append(append([]Card(nil), e.selection...), card)
	e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), cardNames(e.selection), e.score))
	e.setPhaseLocked(PhaseSelecting)
	if len(e.selection) == SelectionSize {
		e.evaluateLocked()
	}
	return OutcomeApplied
}

func (e *Engine) evaluateLocked() {
	e.setPhaseLocked(PhaseEvaluating)
	ok, err := IsSet(e.selection...)
	if err != nil {
		// Selection cards are distinct board members; anything else is an engine bug.
		panic(fmt.Sprintf("game: evaluate selection: %v", err))
	}

	names := cardNames(e.selection)
	if ok {
		e.emit(log.NewSetFoundEvent(e.game, e.phase.String(), names, e.score))
		e.setPhaseLocked(PhaseResolvingSuccess)
		e.scheduleLocked(e.cfg.SuccessDelay, e.resolveSuccessLocked)
		return
	}
	e.emit(log.NewNotASetEvent(e.game, e.phase.String(), names, e.score))
	e.setPhaseLocked(PhaseResolvingFail)
	e.scheduleLocked(e.cfg.FailDelay, e.resolveFailLocked)
}

func (e *Engine) scheduleLocked(d time.Duration, resolve func()) {
	e.token++
	token := e.token
	e.pending = e.sched.AfterFunc(d, func() {
		e.mu.Lock()
		if token != e.token || e.pending == nil {
			e.mu.Unlock()
			return
		}
		e.pending = nil
		resolve()
		e.checkInvariantsLocked()
		e.mu.Unlock()
		e.flush()
	})
}

func (e *Engine) cancelPendingLocked() {
	e.token++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) resolveSuccessLocked() {
	board, err := e.board.Remove(e.selection...)
	if err != nil {
		panic(fmt.Sprintf("game: resolve Set: %v", err))
	}
	e.board = board
	oldScore := e.score
	e.score++
	e.selection = nil

	e.emit(log.NewBoardChangeEvent(e.game, e.phase.String(), cardNames(e.board), e.score))
	e.emit(log.NewScoreChangeEvent(e.game, e.phase.String(), oldScore, e.score))
	e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), nil, e.score))

	if e.cfg.AutoReplenish && len(e.board) < e.cfg.InitialBoardSize {
		e.replenishLocked(e.cfg.InitialBoardSize - len(e.board))
	}
	e.setPhaseLocked(PhaseIdle)
	e.checkOverLocked()
}

func (e *Engine) resolveFailLocked() {
	e.selection = nil
	e.emit(log.NewSelectionChangeEvent(e.game, e.phase.String(), nil, e.score))
	e.setPhaseLocked(PhaseIdle)
}

func (e *Engine) requestMoreLocked(count int) Outcome {
	if e.pending != nil || e.phase.Resolving() {
		return e.rejectLocked("more cards")
	}
	if count <= 0 {
		count = e.cfg.ReplenishCount
	}
	if len(e.deck) == 0 {
		return OutcomeIgnored
	}
	room := e.cfg.MaxBoardSize - len(e.board)
	if room <= 0 {
		if HasSet(e.board) {
			return OutcomeIgnored
		}
		room = count
	}
	if count > room {
		count = room
	}
	e.replenishLocked(count)
	e.checkOverLocked()
	return OutcomeApplied
}

func (e *Engine) replenishLocked(count int) {
	deck, board, drawn := Replenish(e.deck, e.board, count)
	if len(drawn) == 0 {
		return
	}
	e.deck, e.board = deck, board
	e.emit(log.NewDealEvent(e.game, e.phase.String(), cardNames(drawn), len(e.deck), e.score))
	e.emit(log.NewBoardChangeEvent(e.game, e.phase.String(), cardNames(e.board), e.score))
}

func (e *Engine) setPhaseLocked(p Phase) {
	if e.phase == p {
		return
	}
	from := e.phase
	e.phase = p
	e.emit(log.NewPhaseChangeEvent(e.game, from.String(), p.String(), e.score))
}

func (e *Engine) checkOverLocked() {
	over := len(e.deck) == 0 && !HasSet(e.board)
	if over && !e.over {
		e.emit(log.NewGameOverEvent(e.game, e.phase.String(), e.score))
	}
	e.over = over
}

// checkInvariantsLocked panics when the engine's own bookkeeping is
// inconsistent. User input can never trigger it.
func (e *Engine) checkInvariantsLocked() {
	if len(e.selection) > SelectionSize {
		panic(fmt.Sprintf("game: selection holds %d cards", len(e.selection)))
	}
	for _, c := range e.selection {
		if !e.board.Contains(c) {
			panic(fmt.Sprintf("game: selected card %s not on board", c))
		}
	}
	onBoard := make(map[Card]bool, len(e.board))
	for _, c := range e.board {
		if onBoard[c] {
			panic(fmt.Sprintf("game: card %s on board twice", c))
		}
		onBoard[c] = true
	}
	for _, c := range e.deck {
		if onBoard[c] {
			panic(fmt.Sprintf("game: card %s in deck and on board", c))
		}
	}
	if total := len(e.deck) + len(e.board) + SelectionSize*e.score; total != DeckSize {
		panic(fmt.Sprintf("game: %d cards accounted for, want %d", total, DeckSize))
	}
}

// --- Notification ---

// emit records an event and queues it for observers. Caller holds mu.
func (e *Engine) emit(event log.GameEvent) {
	e.seq++
	event.Seq = e.seq
	e.logger.Log(event)
	e.outbox = append(e.outbox, event)
}

// flush delivers queued events in order. Only one goroutine dispatches at a
// time; events queued by an observer calling back into the engine are
// delivered by the same loop.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.dispatching {
		e.mu.Unlock()
		return
	}
	e.dispatching = true
	// An observer that panics must not leave dispatching set.
	delivering := false
	defer func() {
		if delivering {
			e.mu.Lock()
			e.dispatching = false
			e.mu.Unlock()
		}
	}()
	for len(e.outbox) > 0 {
		batch := e.outbox
		e.outbox = nil
		observers := append([]Observer(nil), e.observers...)
		e.mu.Unlock()
		delivering = true
		for _, ev := range batch {
			for _, o := range observers {
				o.Notify(ev)
			}
		}
		delivering = false
		e.mu.Lock()
	}
	e.dispatching = false
	e.mu.Unlock()
}

func cardNames(cards []Card) []string {
	if len(cards) == 0 {
		return nil
	}
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.String()
	}
	return names
}
