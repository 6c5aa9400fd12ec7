package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

type sessionGetter interface {
	Get(id string) (*usecase.Session, error)
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	State     tictactoe.State `json:"state"`
}

type sessionHandler struct {
	logger   *slog.Logger
	sessions sessionGetter
}

// getSession - returns the current snapshot of a live session.
func (that *sessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := that.sessions.Get(id)
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}

		that.logger.Error("failed to get session", "session_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err = json.NewEncoder(w).Encode(sessionResponse{SessionID: session.ID, State: session.Engine.State()}); err != nil {
		that.logger.Error("failed to write response", "session_id", id, "error", err)
	}
}
