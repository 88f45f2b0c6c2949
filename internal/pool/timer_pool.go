// Package pool provides a shared pool of reusable timers for the
// deadline-bounded waits in the acquisition loop and the script sandbox.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer armed for d. Hand it back with PutTimer once the
// wait is over.
func GetTimer(d time.Duration) *time.Timer {
	v := timerPool.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t := v.(*time.Timer) // the pool only ever holds *time.Timer
	if t.Reset(d) {
		// The timer was still armed; drain a stale fire.
		select {
		case <-t.C:
		default:
		}
	}

	return t
}

// PutTimer stops t and returns it to the pool. The caller must not touch t
// afterwards.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// Already fired; drain the channel unless the caller consumed it.
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
