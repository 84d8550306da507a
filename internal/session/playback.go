package session

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/cuesync/internal/db"
	"github.com/llehouerou/cuesync/internal/policy"
)

// PlaybackState is the resumable state of one media file.
type PlaybackState struct {
	MediaPath    string
	Position     time.Duration
	Duration     time.Duration
	Rate         float64
	Loop         policy.LoopConfig
	SubtitlePath string
}

func getPlayback(db *sql.DB, mediaPath string) (*PlaybackState, error) {
	row := db.QueryRow(`
		SELECT position_ms, duration_ms, rate, loop_enabled, loop_mode, loop_remaining, subtitle_path
		FROM playback_sessions WHERE media_path = ?
	`, mediaPath)

	var (
		positionMs, durationMs, loopMode, loopRemaining sql.NullInt64
		loopEnabled                                     sql.NullInt64
		rate                                            sql.NullFloat64
		subtitlePath                                    sql.NullString
	)

	err := row.Scan(&positionMs, &durationMs, &rate, &loopEnabled, &loopMode, &loopRemaining, &subtitlePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first play
	}
	if err != nil {
		return nil, err
	}

	return &PlaybackState{
		MediaPath: mediaPath,
		Position:  time.Duration(dbutil.NullInt64Value(positionMs)) * time.Millisecond,
		Duration:  time.Duration(dbutil.NullInt64Value(durationMs)) * time.Millisecond,
		Rate:      dbutil.NullFloat64Value(rate, 1.0),
		Loop: policy.LoopConfig{
			Enabled:   dbutil.NullInt64Value(loopEnabled) != 0,
			Mode:      policy.LoopMode(dbutil.NullInt64Value(loopMode)),
			Remaining: int(dbutil.NullInt64Value(loopRemaining)),
		},
		SubtitlePath: dbutil.NullStringValue(subtitlePath),
	}, nil
}

func savePlayback(db *sql.DB, state PlaybackState) error {
	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		loopEnabled := 0
		if state.Loop.Enabled {
			loopEnabled = 1
		}
		_, err := tx.Exec(`
			INSERT INTO playback_sessions (media_path, position_ms, duration_ms, rate,
			                               loop_enabled, loop_mode, loop_remaining, subtitle_path, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(media_path) DO UPDATE SET
				position_ms = excluded.position_ms,
				duration_ms = excluded.duration_ms,
				rate = excluded.rate,
				loop_enabled = excluded.loop_enabled,
				loop_mode = excluded.loop_mode,
				loop_remaining = excluded.loop_remaining,
				subtitle_path = excluded.subtitle_path,
				updated_at = excluded.updated_at
		`,
			state.MediaPath,
			state.Position.Milliseconds(),
			state.Duration.Milliseconds(),
			state.Rate,
			loopEnabled,
			int(state.Loop.Mode),
			state.Loop.Remaining,
			state.SubtitlePath,
			time.Now().Unix(),
		)
		return err
	})
}
