package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/clock"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const publishBuffer = 256

type eventPublisherDep interface {
	Publish(ctx context.Context, sessionID string, event tictactoe.Event) error
}

type Params struct {
	TurnBudget   int
	TickInterval time.Duration
	// MysterySeed of 0 leaves each engine with a time-seeded source.
	MysterySeed int64
	// NewScheduler builds the clock for each session. Nil means real time.
	NewScheduler func() clock.Scheduler
}

type Session struct {
	ID     string
	Engine *tictactoe.Engine

	unsubscribe func()
	outbox      chan tictactoe.Event
	published   chan struct{}
}

// SessionManager owns the live game sessions. Every engine event is forwarded to the publisher when one is set.
type SessionManager struct {
	logger    *slog.Logger
	publisher eventPublisherDep
	params    Params

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(logger *slog.Logger, publisher eventPublisherDep, params Params) *SessionManager {
	return &SessionManager{
		logger:    logger.With("component", "session_manager"),
		publisher: publisher,
		params:    params,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new engine under a fresh session id.
func (that *SessionManager) Create() *Session {
	id := pkg.GenerateSessionID()

	var scheduler clock.Scheduler
	if that.params.NewScheduler != nil {
		scheduler = that.params.NewScheduler()
	}

	var random tictactoe.Random
	if that.params.MysterySeed != 0 {
		random = rand.New(rand.NewSource(that.params.MysterySeed)) //nolint: gosec // display only
	}

	engine := tictactoe.New(that.logger.With("session_id", id), scheduler, random, tictactoe.Options{
		TurnBudget:   that.params.TurnBudget,
		TickInterval: that.params.TickInterval,
	})

	session := &Session{
		ID:          id,
		Engine:      engine,
		unsubscribe: func() {},
	}

	if that.publisher != nil {
		session.outbox = make(chan tictactoe.Event, publishBuffer)
		session.published = make(chan struct{})
		session.unsubscribe = engine.Subscribe(that.forward(session))

		go that.publish(session)
	}

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	that.logger.Info("session created", "session_id", id)

	return session
}

func (that *SessionManager) Get(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

// Close stops the session timer and forgets the session.
func (that *SessionManager) Close(id string) error {
	that.mu.Lock()
	session, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	session.close()

	that.logger.Info("session closed", "session_id", id)

	return nil
}

func (that *SessionManager) CloseAll() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*Session)
	that.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}

	that.logger.Info("all sessions closed", "count", len(sessions))
}

func (that *SessionManager) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// forward queues events for publishing without blocking the engine. Events are dropped when the queue is full.
func (that *SessionManager) forward(session *Session) tictactoe.Listener {
	return func(event tictactoe.Event) {
		select {
		case session.outbox <- event:
		default:
			that.logger.Warn("publish queue is full, event dropped", "session_id", session.ID, "event", event.Type)
		}
	}
}

// publish sends queued events in order until the session is closed and its queue drained.
func (that *SessionManager) publish(session *Session) {
	defer close(session.published)

	for event := range session.outbox {
		if err := that.publisher.Publish(context.Background(), session.ID, event); err != nil {
			that.logger.Error("failed to publish event", "session_id", session.ID, "event", event.Type, "error", err)
		}
	}
}

// close stops the engine and waits for queued events to be published.
func (that *Session) close() {
	that.Engine.Close()
	that.unsubscribe()

	if that.outbox != nil {
		close(that.outbox)
		<-that.published
	}
}
