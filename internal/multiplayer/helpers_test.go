package multiplayer

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tetra-arena/internal/config"
)

type recorded struct {
	room string
	to   SessionID
	evt  Event
}

// recordingTransport stores every event it is asked to deliver.
type recordingTransport struct {
	mu     sync.Mutex
	events []recorded
}

func (t *recordingTransport) BroadcastToRoom(room string, evt Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, recorded{room: room, evt: evt})
}

func (t *recordingTransport) EmitTo(id SessionID, evt Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, recorded{to: id, evt: evt})
}

func (t *recordingTransport) count(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, r := range t.events {
		if r.evt.EventName() == name {
			n++
		}
	}
	return n
}

func (t *recordingTransport) last(name string) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].evt.EventName() == name {
			return t.events[i].evt, true
		}
	}
	return nil, false
}

// chanSaver hands saved results to the test.
type chanSaver struct {
	results chan MatchResultData
}

func newChanSaver() *chanSaver {
	return &chanSaver{results: make(chan MatchResultData, 4)}
}

func (s *chanSaver) SaveMatchResult(result MatchResultData) error {
	s.results <- result
	return nil
}

func (s *chanSaver) wait(t *testing.T) MatchResultData {
	t.Helper()
	select {
	case r := <-s.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for match result")
		return MatchResultData{}
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// fastGameConfig returns game settings with short timers.
func fastGameConfig() config.GameConfig {
	cfg := config.Default().Game
	cfg.InputTick = 5 * time.Millisecond
	cfg.Gravity.NormalInterval = 10 * time.Millisecond
	cfg.Gravity.DynamicBase = 10 * time.Millisecond
	cfg.Gravity.DynamicFloor = 5 * time.Millisecond
	return cfg
}

func newTestCoordinator() (*Coordinator, *recordingTransport) {
	tr := &recordingTransport{}
	c := NewCoordinator(fastGameConfig(), tr, testLogger())
	c.seed = func() int64 { return 1 }
	return c, tr
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
