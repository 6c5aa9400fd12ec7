package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var errMissingCell = errors.New("cell is required")

// rejections are reported to the client as is. Anything else is logged and hidden.
var rejections = []error{
	apperror.ErrInvalidCell,
	apperror.ErrCellOccupied,
	apperror.ErrGameFinished,
	apperror.ErrNothingToUndo,
	apperror.ErrSessionClosed,
	errMissingCell,
}

func (that *Server) handleMove(c *client, session *usecase.Session, msg *Message) error {
	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Cell == nil {
		return errMissingCell
	}

	if err := session.Engine.ApplyMove(*payload.Cell); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	return that.handleState(c, session, msg)
}

func (that *Server) handleUndo(c *client, session *usecase.Session, msg *Message) error {
	if err := session.Engine.Undo(); err != nil {
		return fmt.Errorf("failed to undo: %w", err)
	}

	return that.handleState(c, session, msg)
}

func (that *Server) handleReset(c *client, session *usecase.Session, msg *Message) error {
	if err := session.Engine.Reset(); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}

	return that.handleState(c, session, msg)
}

func (that *Server) handleMystery(c *client, session *usecase.Session, msg *Message) error {
	var payload TogglePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := session.Engine.SetMysteryMode(payload.Enabled); err != nil {
		return fmt.Errorf("failed to toggle mystery mode: %w", err)
	}

	return that.handleState(c, session, msg)
}

func (that *Server) handleSound(c *client, session *usecase.Session, msg *Message) error {
	var payload TogglePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := session.Engine.SetSound(payload.Enabled); err != nil {
		return fmt.Errorf("failed to toggle sound: %w", err)
	}

	return that.handleState(c, session, msg)
}

// handleState - answers with the current snapshot. Mutating handlers end with it as their acknowledgement.
func (that *Server) handleState(c *client, session *usecase.Session, msg *Message) error {
	state := session.Engine.State()
	that.sendMessage(c, msg.Action, ResponsePayload{SessionID: session.ID, State: &state})

	return nil
}

func (that *Server) handleError(c *client, action string, err error) {
	log := that.logger.With("method", "handleError", "action", action)

	for _, rejection := range rejections {
		if errors.Is(err, rejection) {
			log.Debug("action rejected", "error", err)
			that.sendErrorResponse(c, action, rejection.Error())
			return
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		log.Debug("malformed payload", "error", err)
		that.sendErrorResponse(c, action, "malformed payload")
		return
	}

	log.Error("error processing message", "error", err)
	that.sendErrorResponse(c, action, "internal error")
}
