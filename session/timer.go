package session

import (
	"sync"
	"time"
)

// autoDisconnectTimer is a one-shot, resettable timer for the Canon
// 30-second auto-disconnect (§5, §9). The background goroutine spawned
// by time.AfterFunc only posts a request on a channel; it never mutates
// session state itself. A single consumer goroutine (started once,
// see newAutoDisconnectTimer) drains that channel and invokes onFire,
// keeping "decide to disconnect" and "the timer firing" as separate
// concerns connected only by message-passing.
//
// Hosts without a convenient timer can skip the background goroutine
// entirely and call Tick periodically instead (§9); Tick runs on the
// caller's own goroutine so it may invoke onFire directly.
type autoDisconnectTimer struct {
	mu         sync.Mutex
	duration   time.Duration
	timer      *time.Timer
	lastReset  time.Time
	onFire     func()
	requests   chan struct{}
	fired      bool
}

func newAutoDisconnectTimer(d time.Duration, onFire func()) *autoDisconnectTimer {
	t := &autoDisconnectTimer{
		duration: d,
		onFire:   onFire,
		requests: make(chan struct{}, 1),
	}
	go t.consume()
	return t
}

func (t *autoDisconnectTimer) consume() {
	for range t.requests {
		t.onFire()
	}
}

// Reset (re)arms the timer for another full duration from now.
func (t *autoDisconnectTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.lastReset = time.Now()
	t.fired = false
	t.timer = time.AfterFunc(t.duration, func() {
		select {
		case t.requests <- struct{}{}:
		default:
		}
	})
}

// Stop disarms the timer without firing it.
func (t *autoDisconnectTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.lastReset = time.Time{}
}

// Tick lets a caller without a convenient timer drive the check manually
// (§9). Because Tick runs on the caller's own goroutine, it is safe for
// it to invoke onFire synchronously rather than going through the
// request channel.
func (t *autoDisconnectTimer) Tick(now time.Time) {
	t.mu.Lock()
	if t.lastReset.IsZero() || t.fired || now.Sub(t.lastReset) < t.duration {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.onFire()
}
