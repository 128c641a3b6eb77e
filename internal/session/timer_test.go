package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerExpiresOnce(t *testing.T) {
	var fired atomic.Int64
	done := make(chan struct{})

	rt := NewRoundTimer()
	rt.Start(10*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never expired")
	}

	// Give a double-fire a chance to show up.
	time.Sleep(30 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("expected exactly 1 expiry, got %d", n)
	}
	if rt.State() != TimerExpired {
		t.Errorf("state = %v, want TimerExpired", rt.State())
	}
}

func TestCancelPreventsExpiry(t *testing.T) {
	var fired atomic.Int64

	rt := NewRoundTimer()
	rt.Start(20*time.Millisecond, func() { fired.Add(1) })
	rt.Cancel()

	time.Sleep(60 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("expected no expiry after cancel, got %d", n)
	}
	if rt.State() != TimerCancelled {
		t.Errorf("state = %v, want TimerCancelled", rt.State())
	}
}

func TestCancelAfterExpiryIsNoop(t *testing.T) {
	var fired atomic.Int64
	done := make(chan struct{})

	rt := NewRoundTimer()
	rt.Start(5*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})
	<-done

	rt.Cancel()

	time.Sleep(20 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("cancel after expiry re-invoked callback: fired %d times", n)
	}
	if rt.State() != TimerExpired {
		t.Errorf("state = %v, want TimerExpired", rt.State())
	}
}

func TestTimerCannotRestart(t *testing.T) {
	rt := NewRoundTimer()
	rt.Start(5*time.Millisecond, nil)
	rt.Cancel()

	if rt.Start(time.Hour, nil) {
		t.Error("expected Start on a terminal timer to be refused")
	}
}

func TestRemainingCountsDown(t *testing.T) {
	rt := NewRoundTimer()
	rt.Start(300*time.Second, nil)
	defer rt.Cancel()

	if r := rt.Remaining(); r < 298 || r > 300 {
		t.Errorf("remaining = %d, want ~300", r)
	}
}
