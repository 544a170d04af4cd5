package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// tickTarget is what a Scheduler drives. Each method reports whether the
// room is still running after the tick; the scheduler stops on false.
type tickTarget interface {
	inputTick() bool

	// gravityTick also returns the gravity period to use from now on.
	gravityTick() (running bool, next time.Duration)
}

// Scheduler drives one room on two timers: a fixed input tick and a gravity
// tick whose period may change after every gravity tick.
type Scheduler struct {
	target  tickTarget
	input   time.Duration
	gravity time.Duration
	dynamic bool
	logger  *log.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	exited  chan struct{}
}

// NewScheduler creates a scheduler. When dynamic is false the gravity period
// returned by the target is ignored.
func NewScheduler(target tickTarget, input, gravity time.Duration, dynamic bool, logger *log.Logger) *Scheduler {
	return &Scheduler{
		target:  target,
		input:   input,
		gravity: gravity,
		dynamic: dynamic,
		logger:  logger,
		stop:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start launches the timer loop. Starting a started or stopped scheduler
// does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true
	go s.run()
}

// Stop cancels both timers and waits for the loop to exit, so no tick runs
// after Stop returns. Safe to call multiple times and from any goroutine
// except the loop itself.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	s.mu.Unlock()

	if started {
		<-s.exited
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// Done returns a channel closed when the loop exits.
func (s *Scheduler) Done() <-chan struct{} {
	return s.exited
}

func (s *Scheduler) run() {
	defer close(s.exited)

	inputTicker := time.NewTicker(s.input)
	defer inputTicker.Stop()

	gravityTicker := time.NewTicker(s.gravity)
	defer gravityTicker.Stop()

	current := s.gravity
	for {
		select {
		case <-s.stop:
			return

		case <-inputTicker.C:
			if !s.target.inputTick() {
				s.logger.Debug("room not running, scheduler stopped")
				return
			}

		case <-gravityTicker.C:
			running, next := s.target.gravityTick()
			if !running {
				s.logger.Debug("room not running, scheduler stopped")
				return
			}
			if s.dynamic && next > 0 && next != current {
				gravityTicker.Reset(next)
				current = next
				s.logger.Debug("gravity interval changed", "interval", next)
			}
		}
	}
}
