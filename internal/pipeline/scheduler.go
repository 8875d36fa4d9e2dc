package pipeline

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// scheduler is the single auto-advance timer a game may have armed.
// Arm cancels any previous timer before scheduling, so "at most one
// outstanding deadline per game" is enforced here and nowhere else.
// All methods must be called from the game goroutine; only the wait
// goroutine it spawns runs elsewhere, and that goroutine touches
// nothing but its own timer and the notify callback.
type scheduler struct {
	clock  clockwork.Clock
	notify func(gen uint64)

	// gen invalidates stale fires: a callback that was already in
	// flight when the timer was replaced carries an old gen and gets
	// dropped by the game loop.
	gen    uint64
	timer  clockwork.Timer
	cancel chan struct{}
}

func newScheduler(clock clockwork.Clock, notify func(gen uint64)) *scheduler {
	return &scheduler{clock: clock, notify: notify}
}

// arm schedules a fire after d, replacing any outstanding timer.
func (s *scheduler) arm(d time.Duration) {
	s.stop()
	s.gen++
	s.timer = s.clock.NewTimer(d)
	s.cancel = make(chan struct{})
	go s.wait(s.timer, s.cancel, s.gen)
}

func (s *scheduler) wait(t clockwork.Timer, cancel <-chan struct{}, gen uint64) {
	select {
	case <-t.Chan():
		s.notify(gen)
	case <-cancel:
		stopAndDrainTimer(t)
	}
}

// fired reports whether a fire callback carrying gen belongs to the
// outstanding timer. A match consumes the timer; anything else is a
// stale fire from a replaced or cancelled timer.
func (s *scheduler) fired(gen uint64) bool {
	if s.timer == nil || gen != s.gen {
		return false
	}
	s.timer = nil
	s.cancel = nil
	return true
}

// stop tears down the outstanding timer, if any, without scheduling a
// replacement.
func (s *scheduler) stop() {
	if s.timer == nil {
		return
	}
	// bump gen so a fire that already slipped past the cancel is
	// recognized as stale
	s.gen++
	close(s.cancel)
	stopAndDrainTimer(s.timer)
	s.timer = nil
	s.cancel = nil
}

// stopAndDrainTimer stops a timer and drains its channel if it already
// fired, per the time.Timer.Stop contract.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
