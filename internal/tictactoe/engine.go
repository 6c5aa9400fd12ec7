// Package tictactoe implements the game state machine: moves, win and draw detection, turn rotation,
// linear history with undo, the turn timer and mystery symbols.
package tictactoe

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/clock"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	DefaultTurnBudget   = 10
	DefaultTickInterval = time.Second
)

// Random is the source mystery symbols are drawn from. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

type Options struct {
	TurnBudget   int
	TickInterval time.Duration
}

type listenerEntry struct {
	id int
	fn Listener
}

type Engine struct {
	logger    *slog.Logger
	scheduler clock.Scheduler
	random    Random
	budget    int
	interval  time.Duration

	mu           sync.Mutex
	board        entity.Board
	player       entity.Mark
	scores       entity.Scores
	symbols      entity.Symbols
	mystery      bool
	sound        bool
	history      []snapshot
	currentIndex int
	timeLeft     int
	decided      bool
	closed       bool

	cancelTimer clock.Cancel
	timerGen    uint64

	// pending is guarded by mu. deliverMu serialises delivery so listeners see events in the order they were raised.
	pending   []Event
	deliverMu sync.Mutex

	listenersMu    sync.RWMutex
	listeners      []listenerEntry
	nextListenerID int
}

// New creates an engine with an empty board, X to move and the turn timer running.
// A nil scheduler means real time and a nil random means a time-seeded source.
func New(logger *slog.Logger, scheduler clock.Scheduler, random Random, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	if scheduler == nil {
		scheduler = clock.NewReal()
	}

	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // display only
	}

	if opts.TurnBudget <= 0 {
		opts.TurnBudget = DefaultTurnBudget
	}

	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	engine := &Engine{
		logger:       logger.With("component", "engine"),
		scheduler:    scheduler,
		random:       random,
		budget:       opts.TurnBudget,
		interval:     opts.TickInterval,
		player:       entity.PlayerX,
		symbols:      entity.DefaultSymbols(),
		sound:        true,
		currentIndex: -1,
	}

	engine.mu.Lock()
	engine.startTimer()
	engine.mu.Unlock()

	return engine
}

// ApplyMove marks cell for the current player. Rejected moves return an error and change nothing.
func (that *Engine) ApplyMove(cell int) error {
	return that.mutate(func() ([]Event, error) {
		if err := that.validateMove(cell); err != nil {
			return nil, err
		}

		return that.makeMove(cell), nil
	})
}

// Undo reverts the last accepted move. The first move cannot be undone.
func (that *Engine) Undo() error {
	return that.mutate(func() ([]Event, error) {
		if that.currentIndex <= 0 {
			return nil, apperror.ErrNothingToUndo
		}

		that.undo()

		that.logger.Debug("move undone", "index", that.currentIndex, "player", that.player)

		return []Event{that.event(EventRender)}, nil
	})
}

// Reset starts a new round. Scores are kept.
func (that *Engine) Reset() error {
	return that.mutate(func() ([]Event, error) {
		that.board = entity.Board{}
		that.player = entity.PlayerX
		that.history = nil
		that.currentIndex = -1
		that.decided = false
		that.startTimer()

		that.logger.Debug("game reset")

		return []Event{that.event(EventReset), that.event(EventRender)}, nil
	})
}

// SetMysteryMode switches between random glyphs and the plain X/O symbols.
func (that *Engine) SetMysteryMode(enabled bool) error {
	return that.mutate(func() ([]Event, error) {
		that.mystery = enabled

		if enabled {
			that.symbols = entity.Symbols{
				X: that.drawSymbol(),
				O: that.drawSymbol(),
			}
		} else {
			that.symbols = entity.DefaultSymbols()
		}

		that.logger.Debug("mystery mode toggled", "enabled", enabled, "symbols", that.symbols)

		return []Event{that.event(EventRender)}, nil
	})
}

// SetSound stores the sound preference for the presentation layer.
func (that *Engine) SetSound(enabled bool) error {
	return that.mutate(func() ([]Event, error) {
		that.sound = enabled
		return nil, nil
	})
}

// Subscribe registers l and returns a function that removes it.
func (that *Engine) Subscribe(l Listener) func() {
	that.listenersMu.Lock()
	defer that.listenersMu.Unlock()

	that.nextListenerID++
	id := that.nextListenerID
	that.listeners = append(that.listeners, listenerEntry{id: id, fn: l})

	return func() {
		that.listenersMu.Lock()
		defer that.listenersMu.Unlock()

		for i, entry := range that.listeners {
			if entry.id == id {
				that.listeners = append(that.listeners[:i], that.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close stops the timer. Every later mutation fails with apperror.ErrSessionClosed.
// Once Close returns no listener is running or will be called again; undelivered events are dropped.
// Close must not be called from a listener.
func (that *Engine) Close() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}

	that.closed = true
	that.stopTimer()
	that.mu.Unlock()

	that.deliverMu.Lock()
	defer that.deliverMu.Unlock()

	that.mu.Lock()
	that.pending = nil
	that.mu.Unlock()
}

func (that *Engine) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotState()
}

func (that *Engine) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *Engine) CurrentPlayer() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.player
}

func (that *Engine) Scores() entity.Scores {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.scores
}

func (that *Engine) Symbols() entity.Symbols {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.symbols
}

func (that *Engine) TimeLeft() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.timeLeft
}

// Progress is the elapsed fraction of the current turn, from 0 to 1.
func (that *Engine) Progress() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.progress()
}

func (that *Engine) CurrentIndex() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.currentIndex
}

func (that *Engine) HistoryLen() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.history)
}

func (that *Engine) Decided() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.decided
}

func (that *Engine) CheckWin() bool {
	board := that.Board()
	return board.CheckWin()
}

func (that *Engine) IsDraw() bool {
	board := that.Board()
	return board.IsDraw()
}

func (that *Engine) WinningLines() []entity.Line {
	board := that.Board()
	return board.WinningLines()
}

// mutate runs fn under the lock, queues its events and delivers them before returning.
func (that *Engine) mutate(fn func() ([]Event, error)) error {
	err := func() error {
		that.mu.Lock()
		defer that.mu.Unlock()

		if that.closed {
			return apperror.ErrSessionClosed
		}

		events, err := fn()
		if err != nil {
			return err
		}

		that.pending = append(that.pending, events...)

		return nil
	}()
	if err != nil {
		return err
	}

	that.flush()

	return nil
}

// flush delivers queued events until none are left. Events raised by another goroutine while a listener
// runs are delivered by whichever caller holds deliverMu, after the ones queued before them.
func (that *Engine) flush() {
	that.deliverMu.Lock()
	defer that.deliverMu.Unlock()

	for {
		that.mu.Lock()
		events := that.pending
		that.pending = nil
		that.mu.Unlock()

		if len(events) == 0 {
			return
		}

		that.dispatch(events)
	}
}

func (that *Engine) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}

	that.listenersMu.RLock()
	listeners := make([]Listener, 0, len(that.listeners))
	for _, entry := range that.listeners {
		listeners = append(listeners, entry.fn)
	}
	that.listenersMu.RUnlock()

	for _, event := range events {
		for _, l := range listeners {
			l(event)
		}
	}
}

func (that *Engine) event(eventType EventType) Event {
	return Event{Type: eventType, State: that.snapshotState()}
}

func (that *Engine) snapshotState() State {
	lines := that.board.WinningLines()

	return State{
		Board:        that.board,
		Player:       that.player,
		Symbols:      that.symbols,
		Scores:       that.scores,
		TimeLeft:     that.timeLeft,
		Budget:       that.budget,
		Progress:     that.progress(),
		Decided:      that.decided,
		Winner:       that.board.Winner(),
		WinningLines: lines,
		CurrentIndex: that.currentIndex,
		HistoryLen:   len(that.history),
		MysteryMode:  that.mystery,
		SoundEnabled: that.sound,
		TimerActive:  that.cancelTimer != nil,
	}
}

func (that *Engine) progress() float64 {
	return float64(that.budget-that.timeLeft) / float64(that.budget)
}

func (that *Engine) drawSymbol() string {
	return entity.MysteryPalette[that.random.Intn(len(entity.MysteryPalette))]
}
