// Package session persists per-media playback state so a reopened file
// resumes where it left off, with the same loop setup and rate.
package session

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "cuesync"
	dbFileName = "cuesync.db"

	defaultSaveDebounce = 2 * time.Second
)

// Manager owns the session database. Saves are debounced: rapid position
// updates coalesce into one write, and Close flushes whatever is pending.
type Manager struct {
	db       *sql.DB
	debounce time.Duration

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *PlaybackState
}

// Open opens the session database in the user's data directory.
func Open(debounce time.Duration) (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenAt(dbPath, debounce)
}

// OpenAt opens the session database at an explicit path.
func OpenAt(dbPath string, debounce time.Duration) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = defaultSaveDebounce
	}
	return &Manager{db: db, debounce: debounce}, nil
}

// Close flushes any pending save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = savePlayback(m.db, *pending)
	}

	return m.db.Close()
}

// Get returns the saved state for a media path, or nil when the file has
// never been played.
func (m *Manager) Get(mediaPath string) (*PlaybackState, error) {
	return getPlayback(m.db, mediaPath)
}

// Save schedules a debounced write of the playback state. Only the most
// recent state per call window reaches the database.
func (m *Manager) Save(state PlaybackState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.debounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = savePlayback(m.db, *pending)
		}
	})
}

// Flush writes any pending state immediately.
func (m *Manager) Flush() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending == nil {
		return nil
	}
	return savePlayback(m.db, *pending)
}

// DB exposes the underlying handle for maintenance tooling.
func (m *Manager) DB() *sql.DB {
	return m.db
}
