package apperror

import "errors"

var (
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrGameFinished  = errors.New("game is already finished")
	ErrNothingToUndo = errors.New("nothing to undo")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
	ErrUnknownAction   = errors.New("unknown action")
)
