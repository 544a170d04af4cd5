package multiplayer

import (
	"sync"
	"testing"
	"time"
)

type fakeTarget struct {
	mu        sync.Mutex
	inputs    int
	gravities int
	running   bool
	next      time.Duration
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{running: true}
}

func (f *fakeTarget) inputTick() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return false
	}
	f.inputs++
	return true
}

func (f *fakeTarget) gravityTick() (bool, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return false, 0
	}
	f.gravities++
	return true, f.next
}

func (f *fakeTarget) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs, f.gravities
}

func (f *fakeTarget) setRunning(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = v
}

func TestSchedulerTicks(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler(target, 2*time.Millisecond, 5*time.Millisecond, false, testLogger())
	s.Start()
	defer s.Stop()

	eventually(t, "both timers to fire", func() bool {
		in, grav := target.counts()
		return in >= 3 && grav >= 2
	})
	if !s.Running() {
		t.Error("Running() = false while ticking")
	}
}

func TestSchedulerStopIsSynchronous(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler(target, time.Millisecond, time.Millisecond, false, testLogger())
	s.Start()

	eventually(t, "first ticks", func() bool {
		in, _ := target.counts()
		return in > 0
	})
	s.Stop()

	in, grav := target.counts()
	time.Sleep(20 * time.Millisecond)
	in2, grav2 := target.counts()
	if in != in2 || grav != grav2 {
		t.Errorf("ticks after Stop(): inputs %d -> %d, gravity %d -> %d", in, in2, grav, grav2)
	}
	if s.Running() {
		t.Error("Running() = true after Stop()")
	}

	// Idempotent.
	s.Stop()
}

func TestSchedulerSelfStops(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler(target, time.Millisecond, time.Millisecond, false, testLogger())
	s.Start()
	target.setRunning(false)

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on a stale room")
	}
	s.Stop()
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler(target, time.Millisecond, time.Millisecond, false, testLogger())
	s.Start()
	s.Start()
	s.Stop()
	s.Start()

	if s.Running() {
		t.Error("Start() after Stop() should not restart the loop")
	}
}

func TestSchedulerStopBeforeStart(t *testing.T) {
	s := NewScheduler(newFakeTarget(), time.Millisecond, time.Millisecond, false, testLogger())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() on an unstarted scheduler blocked")
	}
	s.Start()
	if s.Running() {
		t.Error("stopped scheduler started")
	}
}

func TestSchedulerDynamicInterval(t *testing.T) {
	fixed := newFakeTarget()
	fixed.next = time.Millisecond
	dynamic := newFakeTarget()
	dynamic.next = time.Millisecond

	a := NewScheduler(fixed, time.Hour, 40*time.Millisecond, false, testLogger())
	b := NewScheduler(dynamic, time.Hour, 40*time.Millisecond, true, testLogger())
	a.Start()
	b.Start()
	time.Sleep(300 * time.Millisecond)
	a.Stop()
	b.Stop()

	_, fixedGravity := fixed.counts()
	_, dynamicGravity := dynamic.counts()
	if fixedGravity > 10 {
		t.Errorf("fixed scheduler ran %d gravity ticks, expected about 7", fixedGravity)
	}
	if dynamicGravity < 2*fixedGravity+5 {
		t.Errorf("dynamic scheduler ran %d gravity ticks, expected far more than %d", dynamicGravity, fixedGravity)
	}
}
