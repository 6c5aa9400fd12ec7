package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const drawMessage = "It's a Draw!"

// validateMove - checks if the move is valid.
func (that *Engine) validateMove(cell int) error {
	if !entity.ValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.decided {
		return apperror.ErrGameFinished
	}

	if !that.board.IsEmpty(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// makeMove - places the mark, records it and resolves the outcome.
func (that *Engine) makeMove(cell int) []Event {
	mover := that.player

	that.board[cell] = mover
	that.saveHistory(mover)

	events := []Event{that.event(EventClick)}

	log := that.logger.With("method", "makeMove", "cell", cell, "player", mover)

	switch lines := that.board.WinningLines(); {
	case len(lines) > 0:
		that.scores.Increment(mover)
		that.decided = true
		that.stopTimer()

		victory := that.event(EventVictory)
		victory.Message = winMessage(that.symbols.For(mover))
		victory.Lines = lines
		victory.Cells = entity.Cells(lines)
		events = append(events, victory)

		log.Info("game won", "lines", lines, "scores", that.scores)
	case that.board.IsFull():
		that.decided = true
		that.stopTimer()

		draw := that.event(EventDraw)
		draw.Message = drawMessage
		draw.Cells = entity.AllCells()
		events = append(events, draw)

		log.Info("game drawn")
	default:
		that.player = mover.Opponent()
		that.startTimer()

		log.Debug("move accepted")
	}

	return append(events, that.event(EventRender))
}

func winMessage(symbol string) string {
	return symbol + " Wins!"
}
