package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	actionConnect = "connect"
	actionError   = "error"
	actionMove    = "game:move"
	actionUndo    = "game:undo"
	actionReset   = "game:reset"
	actionState   = "game:state"
	actionMystery = "mode:mystery"
	actionSound   = "mode:sound"

	eventActionPrefix = "event:"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Cell *int `json:"cell"`
}

type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

type ResponsePayload struct {
	SessionID string           `json:"session_id,omitempty"`
	State     *tictactoe.State `json:"state,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func eventAction(event tictactoe.Event) string {
	return eventActionPrefix + string(event.Type)
}
