// Package clock provides the periodic callback primitive the turn timer runs on.
package clock

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cancel stops a scheduled callback. It is idempotent and never blocks on a running callback.
type Cancel func()

// Scheduler runs fn every interval until the returned Cancel is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
}

// Real runs each callback on its own goroutine, driven by a clockwork ticker.
type Real struct {
	clock clockwork.Clock
}

// NewReal schedules on the wall clock.
func NewReal() *Real {
	return NewRealFrom(clockwork.NewRealClock())
}

// NewRealFrom schedules on c. With a fake clock, callbacks still run asynchronously after each Advance.
func NewRealFrom(c clockwork.Clock) *Real {
	return &Real{clock: c}
}

func (that *Real) Every(interval time.Duration, fn func()) Cancel {
	ticker := that.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				// a tick may race with cancel; prefer cancel
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			close(done)
		})
	}
}

// Manual runs callbacks on the caller's goroutine, only when the fake clock is advanced through Tick.
type Manual struct {
	clock clockwork.FakeClock

	mu      sync.Mutex
	nextID  int
	entries map[int]*manualEntry
}

type manualEntry struct {
	interval time.Duration
	ticker   clockwork.Ticker
	fn       func()
}

func NewManual() *Manual {
	return &Manual{
		clock:   clockwork.NewFakeClock(),
		entries: make(map[int]*manualEntry),
	}
}

// Clock exposes the underlying fake clock.
func (that *Manual) Clock() clockwork.FakeClock {
	return that.clock
}

func (that *Manual) Every(interval time.Duration, fn func()) Cancel {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	entry := &manualEntry{
		interval: interval,
		ticker:   that.clock.NewTicker(interval),
		fn:       fn,
	}
	that.entries[id] = entry

	return func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if _, ok := that.entries[id]; ok {
			entry.ticker.Stop()
			delete(that.entries, id)
		}
	}
}

// Tick advances the fake clock by the shortest active interval and runs, in registration order,
// every callback whose ticker fired. Callbacks cancelled by an earlier callback in the same Tick are skipped.
func (that *Manual) Tick() {
	that.mu.Lock()
	ids := make([]int, 0, len(that.entries))
	var step time.Duration
	for id, entry := range that.entries {
		ids = append(ids, id)
		if step == 0 || entry.interval < step {
			step = entry.interval
		}
	}
	that.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	slices.Sort(ids)

	that.clock.Advance(step)

	for _, id := range ids {
		that.mu.Lock()
		entry, ok := that.entries[id]
		that.mu.Unlock()

		if !ok {
			continue
		}

		select {
		case <-entry.ticker.Chan():
			entry.fn()
		default:
		}
	}
}

// Advance calls Tick n times.
func (that *Manual) Advance(n int) {
	for i := 0; i < n; i++ {
		that.Tick()
	}
}

// Active returns the number of live handles.
func (that *Manual) Active() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.entries)
}
