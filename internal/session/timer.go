package session

import (
	"sync"
	"time"
)

// TimerState is the lifecycle of a RoundTimer: Idle -> Running -> {Expired, Cancelled}.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerExpired
	TimerCancelled
)

// RoundTimer is a one-shot countdown. The expiry callback fires at most
// once, and never after Cancel: cancellation wins whenever it takes the
// state lock before expiry is observed. A timer that reached a terminal
// state cannot be restarted; rounds get a fresh instance.
type RoundTimer struct {
	mu       sync.Mutex
	state    TimerState
	timer    *time.Timer
	deadline time.Time
}

func NewRoundTimer() *RoundTimer {
	return &RoundTimer{}
}

// Start arms the countdown. Starting a timer that is not idle is a no-op
// returning false.
func (t *RoundTimer) Start(d time.Duration, onExpire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerIdle {
		return false
	}

	t.state = TimerRunning
	t.deadline = time.Now().Add(d)
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.state != TimerRunning {
			t.mu.Unlock()
			return
		}
		t.state = TimerExpired
		t.mu.Unlock()

		if onExpire != nil {
			onExpire()
		}
	})
	return true
}

// Cancel stops the countdown. Safe to call in any state, including after
// expiry has already fired.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerRunning {
		return
	}
	t.state = TimerCancelled
	t.timer.Stop()
}

// Remaining reports whole seconds left, floored at zero.
func (t *RoundTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerRunning {
		return 0
	}
	left := time.Until(t.deadline)
	if left < 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}

// State returns the current lifecycle state.
func (t *RoundTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
