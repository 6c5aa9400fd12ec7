package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/clock"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-engine/mocks/usecase"
)

var errRedisDown = errors.New("redis down")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func manualParams(scheduler **clock.Manual) Params {
	return Params{
		NewScheduler: func() clock.Scheduler {
			*scheduler = clock.NewManual()
			return *scheduler
		},
	}
}

func eventOf(eventType tictactoe.EventType) interface{} {
	return mock.MatchedBy(func(event tictactoe.Event) bool {
		return event.Type == eventType
	})
}

func TestSessionManager_Create(t *testing.T) {
	t.Run("Creates a fresh engine under a new id", func(t *testing.T) {
		// Given: a manager without a publisher
		var scheduler *clock.Manual
		manager := NewSessionManager(newTestLogger(), nil, manualParams(&scheduler))

		// When: creating a session
		session := manager.Create()

		// Then: the id is a uuid and the engine is at its initial state
		assert.True(t, pkg.IsSessionID(session.ID))
		assert.Equal(t, entity.Board{}, session.Engine.Board())
		assert.Equal(t, entity.PlayerX, session.Engine.CurrentPlayer())
		assert.Equal(t, 1, scheduler.Active())
		assert.Equal(t, 1, manager.Len())

		found, err := manager.Get(session.ID)
		require.NoError(t, err)
		assert.Same(t, session, found)
	})

	t.Run("Sessions do not share state", func(t *testing.T) {
		var scheduler *clock.Manual
		manager := NewSessionManager(newTestLogger(), nil, manualParams(&scheduler))

		first := manager.Create()
		second := manager.Create()
		require.NoError(t, first.Engine.ApplyMove(4))

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, entity.Board{}, second.Engine.Board())
		assert.Equal(t, 2, manager.Len())
	})

	t.Run("Applies the configured turn budget", func(t *testing.T) {
		var scheduler *clock.Manual
		params := manualParams(&scheduler)
		params.TurnBudget = 3
		manager := NewSessionManager(newTestLogger(), nil, params)

		session := manager.Create()
		scheduler.Advance(3)

		assert.Equal(t, entity.PlayerO, session.Engine.CurrentPlayer())
	})

	t.Run("A fixed mystery seed gives every session the same symbols", func(t *testing.T) {
		var scheduler *clock.Manual
		params := manualParams(&scheduler)
		params.MysterySeed = 42
		manager := NewSessionManager(newTestLogger(), nil, params)

		first := manager.Create()
		second := manager.Create()
		require.NoError(t, first.Engine.SetMysteryMode(true))
		require.NoError(t, second.Engine.SetMysteryMode(true))

		assert.Equal(t, first.Engine.Symbols(), second.Engine.Symbols())
		assert.Contains(t, entity.MysteryPalette, first.Engine.Symbols().X)
	})
}

func TestSessionManager_Get(t *testing.T) {
	manager := NewSessionManager(newTestLogger(), nil, Params{})

	_, err := manager.Get("missing")

	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestSessionManager_Publish(t *testing.T) {
	t.Run("Forwards engine events to the publisher in order", func(t *testing.T) {
		// Given: a manager with a mocked publisher
		var scheduler *clock.Manual
		publisher := mockedUseCase.NewMockeventPublisherDep(t)
		manager := NewSessionManager(newTestLogger(), publisher, manualParams(&scheduler))
		session := manager.Create()

		var order []tictactoe.EventType
		record := func(_ context.Context, _ string, event tictactoe.Event) {
			order = append(order, event.Type)
		}

		publisher.EXPECT().Publish(mock.Anything, session.ID, eventOf(tictactoe.EventClick)).Run(record).Return(nil).Once()
		publisher.EXPECT().Publish(mock.Anything, session.ID, eventOf(tictactoe.EventRender)).Run(record).Return(nil).Once()
		publisher.EXPECT().Publish(mock.Anything, session.ID, eventOf(tictactoe.EventTick)).Run(record).Return(nil).Once()

		// When: a move is played, one second passes and the session is closed
		require.NoError(t, session.Engine.ApplyMove(0))
		scheduler.Tick()
		require.NoError(t, manager.Close(session.ID))

		// Then: click, render and tick were published in that order before Close returned
		assert.Equal(t, []tictactoe.EventType{tictactoe.EventClick, tictactoe.EventRender, tictactoe.EventTick}, order)
	})

	t.Run("Publish errors do not reject the move", func(t *testing.T) {
		var scheduler *clock.Manual
		publisher := mockedUseCase.NewMockeventPublisherDep(t)
		manager := NewSessionManager(newTestLogger(), publisher, manualParams(&scheduler))
		session := manager.Create()

		publisher.EXPECT().Publish(mock.Anything, session.ID, mock.Anything).Return(errRedisDown).Twice()

		err := session.Engine.ApplyMove(0)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, session.Engine.Board()[0])
		require.NoError(t, manager.Close(session.ID))
	})

	t.Run("A slow publisher does not hold up the move", func(t *testing.T) {
		// Given: a publisher that blocks until released
		var scheduler *clock.Manual
		publisher := mockedUseCase.NewMockeventPublisherDep(t)
		manager := NewSessionManager(newTestLogger(), publisher, manualParams(&scheduler))
		session := manager.Create()

		release := make(chan struct{})
		publisher.EXPECT().Publish(mock.Anything, session.ID, mock.Anything).
			RunAndReturn(func(context.Context, string, tictactoe.Event) error {
				<-release
				return nil
			}).
			Times(3)

		// When: X moves and a second passes
		moved := make(chan error, 1)
		go func() {
			err := session.Engine.ApplyMove(0)
			if err == nil {
				scheduler.Tick()
			}
			moved <- err
		}()

		// Then: both return while the first publish is still blocked
		select {
		case err := <-moved:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("move waited for the publisher")
		}
		assert.Equal(t, entity.PlayerO, session.Engine.CurrentPlayer())
		assert.Equal(t, tictactoe.DefaultTurnBudget-1, session.Engine.TimeLeft())

		// When: the publisher recovers
		close(release)

		// Then: the queued events are still published on close
		require.NoError(t, manager.Close(session.ID))
	})
}

func TestSessionManager_Close(t *testing.T) {
	t.Run("Close stops the engine and forgets the session", func(t *testing.T) {
		// Given: a session with a publisher that expects nothing
		var scheduler *clock.Manual
		publisher := mockedUseCase.NewMockeventPublisherDep(t)
		manager := NewSessionManager(newTestLogger(), publisher, manualParams(&scheduler))
		session := manager.Create()

		// When: closing it
		err := manager.Close(session.ID)
		require.NoError(t, err)

		// Then: the timer is gone, moves fail and nothing is published
		assert.Equal(t, 0, scheduler.Active())
		require.ErrorIs(t, session.Engine.ApplyMove(0), apperror.ErrSessionClosed)
		assert.Equal(t, 0, manager.Len())

		_, err = manager.Get(session.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Closing twice fails", func(t *testing.T) {
		manager := NewSessionManager(newTestLogger(), nil, Params{NewScheduler: func() clock.Scheduler { return clock.NewManual() }})
		session := manager.Create()
		require.NoError(t, manager.Close(session.ID))

		err := manager.Close(session.ID)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("CloseAll closes every session", func(t *testing.T) {
		schedulers := make([]*clock.Manual, 0, 3)
		manager := NewSessionManager(newTestLogger(), nil, Params{NewScheduler: func() clock.Scheduler {
			scheduler := clock.NewManual()
			schedulers = append(schedulers, scheduler)
			return scheduler
		}})
		sessions := []*Session{manager.Create(), manager.Create(), manager.Create()}

		manager.CloseAll()

		assert.Equal(t, 0, manager.Len())
		for i, session := range sessions {
			assert.Equal(t, 0, schedulers[i].Active())
			require.ErrorIs(t, session.Engine.Reset(), apperror.ErrSessionClosed)
		}
	})
}
