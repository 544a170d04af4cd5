package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveMatch(MatchRecord{MatchID: "m1", Room: "r", Mode: "normal", EndReason: "forced"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	m, err := store.MatchByID("m1")
	if err != nil || m == nil {
		t.Fatalf("MatchByID() after reopen = %v, %v", m, err)
	}
}

func TestStoreSaveAndRetrieveMatch(t *testing.T) {
	store := openTestStore(t)

	record := MatchRecord{
		MatchID:   "m1",
		Room:      "r1",
		Mode:      "dynamic",
		Loser:     "B",
		EndReason: "topped_out",
		Duration:  42,
		Players: []PlayerScore{
			{Name: "A", Score: 1200, Lines: 10},
			{Name: "B", Score: 300, Lines: 3},
		},
	}
	id, err := store.SaveMatch(record)
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveMatch() id = %d, expected positive", id)
	}

	got, err := store.MatchByID("m1")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("MatchByID() returned nil")
	}
	if got.Room != "r1" || got.Mode != "dynamic" || got.Loser != "B" || got.Duration != 42 {
		t.Errorf("MatchByID() = %+v", got)
	}
	if len(got.Players) != 2 || got.Players[0] != record.Players[0] || got.Players[1] != record.Players[1] {
		t.Errorf("Players = %+v, expected %+v", got.Players, record.Players)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestStoreMatchByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.MatchByID("nope")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("MatchByID(nope) = %+v, expected nil", got)
	}
}

func TestStoreDuplicateMatchID(t *testing.T) {
	store := openTestStore(t)

	m := MatchRecord{MatchID: "dup", Room: "r", Mode: "normal", EndReason: "forced",
		Players: []PlayerScore{{Name: "A", Score: 100}}}
	if _, err := store.SaveMatch(m); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveMatch(m); err == nil {
		t.Error("SaveMatch() with a duplicate match id should fail")
	}

	// The failed transaction must not leave player rows behind.
	history, err := store.PlayerHistory("A", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("PlayerHistory() has %d rows, expected 1", len(history))
	}
}

func TestStoreTopScores(t *testing.T) {
	store := openTestStore(t)

	matches := []MatchRecord{
		{MatchID: "m1", Room: "r", Mode: "normal", EndReason: "forced",
			Players: []PlayerScore{{Name: "A", Score: 100}, {Name: "B", Score: 500}}},
		{MatchID: "m2", Room: "r", Mode: "dynamic", EndReason: "forced",
			Players: []PlayerScore{{Name: "A", Score: 900}}},
		{MatchID: "m3", Room: "r", Mode: "normal", EndReason: "forced",
			Players: []PlayerScore{{Name: "C", Score: 300}}},
	}
	for _, m := range matches {
		if _, err := store.SaveMatch(m); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.TopScores("", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	expected := []int{900, 500, 300, 100}
	if len(all) != len(expected) {
		t.Fatalf("TopScores() returned %d entries, expected %d", len(all), len(expected))
	}
	for i, score := range expected {
		if all[i].Score != score {
			t.Errorf("TopScores()[%d] = %d, expected %d", i, all[i].Score, score)
		}
	}

	normal, err := store.TopScores("normal", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(normal) != 2 || normal[0].Name != "B" || normal[1].Name != "C" {
		t.Errorf("TopScores(normal, 2) = %+v, expected B then C", normal)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("HighScore() on empty store = %d, expected 0", high)
	}

	if _, err := store.SaveMatch(MatchRecord{MatchID: "m1", Room: "r", Mode: "normal", EndReason: "forced",
		Players: []PlayerScore{{Name: "A", Score: 700}, {Name: "B", Score: 200}}}); err != nil {
		t.Fatal(err)
	}

	if high, _ := store.HighScore("normal"); high != 700 {
		t.Errorf("HighScore(normal) = %d, expected 700", high)
	}
	if high, _ := store.HighScore("dynamic"); high != 0 {
		t.Errorf("HighScore(dynamic) = %d, expected 0", high)
	}
}

func TestStoreRecentMatches(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 3; i++ {
		if _, err := store.SaveMatch(MatchRecord{
			MatchID: fmt.Sprintf("m%d", i), Room: "r", Mode: "normal", EndReason: "forced",
			Players: []PlayerScore{{Name: "A", Score: i * 100}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := store.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentMatches(2) returned %d, expected 2", len(recent))
	}
	if recent[0].MatchID != "m3" || recent[1].MatchID != "m2" {
		t.Errorf("RecentMatches() order = %s, %s; expected m3, m2", recent[0].MatchID, recent[1].MatchID)
	}
	if len(recent[0].Players) != 1 || recent[0].Players[0].Score != 300 {
		t.Errorf("RecentMatches()[0].Players = %+v", recent[0].Players)
	}
}

func TestStorePlayerStats(t *testing.T) {
	store := openTestStore(t)

	matches := []MatchRecord{
		{MatchID: "m1", Room: "r", Mode: "normal", Loser: "A", EndReason: "topped_out",
			Players: []PlayerScore{{Name: "A", Score: 100, Lines: 1}, {Name: "B", Score: 400, Lines: 4}}},
		{MatchID: "m2", Room: "r", Mode: "normal", EndReason: "forced",
			Players: []PlayerScore{{Name: "A", Score: 300, Lines: 3}}},
	}
	for _, m := range matches {
		if _, err := store.SaveMatch(m); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.GetPlayerStats("A")
	if err != nil {
		t.Fatalf("GetPlayerStats() failed: %v", err)
	}
	if stats.Matches != 2 || stats.Losses != 1 || stats.HighScore != 300 || stats.TotalLines != 4 {
		t.Errorf("GetPlayerStats(A) = %+v", stats)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, expected 200", stats.AvgScore)
	}

	empty, err := store.GetPlayerStats("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Matches != 0 || empty.HighScore != 0 {
		t.Errorf("GetPlayerStats(nobody) = %+v", empty)
	}

	all, err := store.GetAllPlayerStats()
	if err != nil {
		t.Fatalf("GetAllPlayerStats() failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "B" || all[1].Name != "A" {
		t.Errorf("GetAllPlayerStats() = %+v, expected B then A", all)
	}
}

func TestStoreSaveMatchResult(t *testing.T) {
	store := openTestStore(t)

	data := multiplayer.MatchResultData{
		MatchID:      "uuid-1",
		Room:         "r1",
		Mode:         "normal",
		Loser:        "A",
		EndReason:    "topped_out",
		DurationSecs: 12,
		Players: []multiplayer.PlayerResult{
			{Name: "A", Score: 100, Lines: 1},
			{Name: "B", Score: 200, Lines: 2},
		},
	}
	if err := store.SaveMatchResult(data); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	m, err := store.MatchByID("uuid-1")
	if err != nil || m == nil {
		t.Fatalf("MatchByID() = %v, %v", m, err)
	}
	if m.Loser != "A" || m.Duration != 12 || len(m.Players) != 2 {
		t.Errorf("saved match = %+v", m)
	}
}

func TestStoreConcurrentSaves(t *testing.T) {
	store := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.SaveMatchResult(multiplayer.MatchResultData{
				MatchID: fmt.Sprintf("c%d", i), Room: "r", Mode: "normal", EndReason: "forced",
				Players: []multiplayer.PlayerResult{{Name: "A", Score: i}},
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent SaveMatchResult() failed: %v", err)
		}
	}
	recent, err := store.RecentMatches(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 10 {
		t.Errorf("RecentMatches() returned %d, expected 10", len(recent))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.arena-test/test.db")
	if err != nil {
		t.Fatalf("Open() with ~ path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".arena-test", "test.db")); err != nil {
		t.Errorf("database not created under home: %v", err)
	}
}
