package tictactoe

// startTimer replaces the running countdown with a fresh one at full budget.
// Must be called with the lock held.
func (that *Engine) startTimer() {
	that.stopTimer()

	that.timeLeft = that.budget
	gen := that.timerGen

	that.cancelTimer = that.scheduler.Every(that.interval, func() {
		that.onTick(gen)
	})
}

// stopTimer cancels the countdown. Bumping the generation turns any tick already in flight into a no-op.
// Must be called with the lock held.
func (that *Engine) stopTimer() {
	that.timerGen++

	if that.cancelTimer != nil {
		that.cancelTimer()
		that.cancelTimer = nil
	}
}

func (that *Engine) onTick(gen uint64) {
	that.mu.Lock()
	events := that.tick(gen)
	that.pending = append(that.pending, events...)
	that.mu.Unlock()

	if len(events) > 0 {
		that.flush()
	}
}

// tick must be called with the lock held. A tick from a replaced or stopped countdown does nothing.
func (that *Engine) tick(gen uint64) []Event {
	if gen != that.timerGen || that.closed || that.decided {
		return nil
	}

	that.timeLeft--
	events := []Event{that.event(EventTick)}

	if that.timeLeft > 0 {
		return events
	}

	passed := that.player
	that.player = passed.Opponent()
	that.startTimer()

	that.logger.Debug("turn timed out", "passed", passed, "next", that.player)

	timeout := that.event(EventTimeout)
	timeout.Message = that.symbols.For(passed) + " ran out of time"

	return append(events, timeout, that.event(EventRender))
}
