package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/clock"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

func newTestRouter(t *testing.T) (http.Handler, *usecase.SessionManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := usecase.NewSessionManager(logger, nil, usecase.Params{
		NewScheduler: func() clock.Scheduler { return clock.NewManual() },
	})
	t.Cleanup(sessions.CloseAll)

	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	return NewRouter(logger, sessions, ws), sessions
}

func TestRouter_Ping(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_GetSession(t *testing.T) {
	t.Run("Returns the state of a live session", func(t *testing.T) {
		// Given: a session where X has played the centre
		router, sessions := newTestRouter(t)
		session := sessions.Create()
		require.NoError(t, session.Engine.ApplyMove(4))

		// When: requesting it
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+session.ID, nil))

		// Then: the snapshot is returned as JSON
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body sessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, session.ID, body.SessionID)
		assert.Equal(t, entity.PlayerX, body.State.Board[4])
		assert.Equal(t, entity.PlayerO, body.State.Player)
	})

	t.Run("Unknown sessions are not found", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_WebSocketRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
