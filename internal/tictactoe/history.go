package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// snapshot is the board after an accepted move together with the player who made it.
// Timer passes are not recorded.
type snapshot struct {
	board entity.Board
	mover entity.Mark
}

// saveHistory drops any entries past the cursor and appends the current board.
func (that *Engine) saveHistory(mover entity.Mark) {
	that.history = append(that.history[:that.currentIndex+1], snapshot{board: that.board, mover: mover})
	that.currentIndex++
}

// undo steps the cursor back one entry. The caller checks currentIndex > 0.
// The player to move becomes the one whose move was undone.
func (that *Engine) undo() {
	undone := that.history[that.currentIndex]

	that.currentIndex--
	that.board = that.history[that.currentIndex].board
	that.player = undone.mover
	that.decided = that.board.IsDecided()

	if that.decided {
		that.stopTimer()
		return
	}

	that.startTimer()
}
