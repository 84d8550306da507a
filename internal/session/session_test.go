package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/llehouerou/cuesync/internal/policy"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenAt(filepath.Join(t.TempDir(), "cuesync.db"), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestGetUnknownMediaReturnsNil(t *testing.T) {
	m := openTestManager(t)

	state, err := m.Get("/media/never-played.mkv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != nil {
		t.Errorf("Get for unknown media = %+v, want nil", state)
	}
}

func TestSaveAndGetRoundtrip(t *testing.T) {
	m := openTestManager(t)

	saved := PlaybackState{
		MediaPath: "/media/lesson-03.mkv",
		Position:  12340 * time.Millisecond,
		Duration:  90 * time.Second,
		Rate:      1.25,
		Loop: policy.LoopConfig{
			Enabled:   true,
			Mode:      policy.LoopFinite,
			Remaining: 2,
		},
		SubtitlePath: "/media/lesson-03.srt",
	}
	m.Save(saved)
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := m.Get(saved.MediaPath)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for saved media")
	}
	if *got != saved {
		t.Errorf("roundtrip = %+v, want %+v", *got, saved)
	}
}

func TestSaveDebounceKeepsLatest(t *testing.T) {
	m := openTestManager(t)

	for i := range 5 {
		m.Save(PlaybackState{
			MediaPath: "/media/lesson-03.mkv",
			Position:  time.Duration(i) * time.Second,
			Rate:      1.0,
		})
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := m.Get("/media/lesson-03.mkv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Position != 4*time.Second {
		t.Errorf("position after burst = %+v, want 4s", got)
	}
}

func TestCloseFlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuesync.db")
	m, err := OpenAt(path, time.Hour) // debounce never fires in-test
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	m.Save(PlaybackState{MediaPath: "/media/a.mkv", Position: 3 * time.Second, Rate: 1.0})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m2, err := OpenAt(path, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m2.Close()

	got, err := m2.Get("/media/a.mkv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Position != 3*time.Second {
		t.Errorf("state after Close flush = %+v, want position 3s", got)
	}
}

func TestUpdateOverwritesExistingRow(t *testing.T) {
	m := openTestManager(t)

	m.Save(PlaybackState{MediaPath: "/media/a.mkv", Position: 1 * time.Second, Rate: 1.0})
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	m.Save(PlaybackState{MediaPath: "/media/a.mkv", Position: 9 * time.Second, Rate: 2.0})
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := m.Get("/media/a.mkv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Position != 9*time.Second || got.Rate != 2.0 {
		t.Errorf("updated state = %+v, want position 9s rate 2.0", got)
	}
}
