package session

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_sessions (
			media_path TEXT PRIMARY KEY,
			position_ms INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			rate REAL NOT NULL DEFAULT 1.0,
			loop_enabled INTEGER NOT NULL DEFAULT 0,
			loop_mode INTEGER NOT NULL DEFAULT 0,
			loop_remaining INTEGER NOT NULL DEFAULT 0,
			subtitle_path TEXT,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON playback_sessions(updated_at);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO schema_version (version) VALUES (?)
		ON CONFLICT(version) DO NOTHING
	`, currentSchemaVersion)
	return err
}
