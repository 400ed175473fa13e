package loop

import "time"

// ticker is the timer task of the loop. The loop keeps exactly one
// outstanding delay request at a time, which prevents tick backlog when a
// tick takes long to process; a fresh request replaces a pending timer, and
// closing stop terminates the goroutine.
type ticker struct {
	req  chan time.Duration
	fire chan struct{}
	stop chan struct{}
}

func newTicker() *ticker {
	return &ticker{
		req:  make(chan time.Duration),
		fire: make(chan struct{}),
		stop: make(chan struct{}),
	}
}

// arm requests a tick after the given delay, replacing any pending one.
func (t *ticker) arm(d time.Duration) {
	select {
	case t.req <- d:
	case <-t.stop:
	}
}

func (t *ticker) run() {
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := false // an elapsed tick awaiting delivery

	for {
		if pending {
			select {
			case t.fire <- struct{}{}:
				pending = false
			case d := <-t.req:
				// Re-armed before delivery; the stale tick is dropped.
				stopTimer(timer)
				timer.Reset(d)
				pending = false
			case <-t.stop:
				return
			}
			continue
		}

		select {
		case <-timer.C:
			pending = true
		case d := <-t.req:
			stopTimer(timer)
			timer.Reset(d)
		case <-t.stop:
			return
		}
	}
}

// stopTimer stops the timer and drains its channel so Reset is safe.
func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
