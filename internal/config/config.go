package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/cuesync/internal/policy"
)

type Config struct {
	MediaFolder string `koanf:"media_folder"` // empty means use cwd

	// Loop settings for repeating the active subtitle cue
	Loop LoopConfig `koanf:"loop"`

	// Auto-pause settings for stopping at each cue end
	AutoPause AutoPauseConfig `koanf:"autopause"`

	// Engine tuning
	Engine EngineConfig `koanf:"engine"`

	// Session persistence
	Session SessionConfig `koanf:"session"`
}

// LoopConfig holds cue-loop configuration.
type LoopConfig struct {
	Enabled bool   `koanf:"enabled"`
	Mode    string `koanf:"mode"`  // "infinite" or "finite" (default: "infinite")
	Count   int    `koanf:"count"` // passes in finite mode (1-100, default: 3)
}

// AutoPauseConfig holds cue-end auto-pause configuration.
type AutoPauseConfig struct {
	Enabled       bool `koanf:"enabled"`
	AutoResume    bool `koanf:"auto_resume"`
	ResumeAfterMs int  `koanf:"resume_after_ms"` // hold before resuming (default: 1500)
}

// EngineConfig holds engine tuning knobs.
type EngineConfig struct {
	SeekLockHoldMs int     `koanf:"seek_lock_hold_ms"` // cue-click lock hold (default: 2000)
	PlaybackRate   float64 `koanf:"playback_rate"`     // initial rate (0.25-4.0, default: 1.0)
}

// SessionConfig holds playback-session persistence configuration.
type SessionConfig struct {
	Path           string `koanf:"path"`             // sqlite file; empty uses the state dir
	SaveDebounceMs int    `koanf:"save_debounce_ms"` // position save debounce (default: 2000)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.MediaFolder != "" {
		cfg.MediaFolder = expandPath(cfg.MediaFolder)
	}
	if cfg.Session.Path != "" {
		cfg.Session.Path = expandPath(cfg.Session.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/cuesync/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cuesync", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetLoopConfig returns the loop configuration with defaults applied.
func (c *Config) GetLoopConfig() policy.LoopConfig {
	mode := policy.LoopInfinite
	if c.Loop.Mode == "finite" {
		mode = policy.LoopFinite
	}
	count := c.Loop.Count
	if count <= 0 || count > 100 {
		count = 3
	}
	return policy.LoopConfig{
		Enabled:   c.Loop.Enabled,
		Mode:      mode,
		Remaining: count,
	}
}

// GetAutoPauseConfig returns the auto-pause configuration with defaults
// applied.
func (c *Config) GetAutoPauseConfig() policy.AutoPauseConfig {
	resumeAfter := c.AutoPause.ResumeAfterMs
	if resumeAfter <= 0 {
		resumeAfter = 1500
	}
	return policy.AutoPauseConfig{
		Enabled:     c.AutoPause.Enabled,
		AutoResume:  c.AutoPause.AutoResume,
		ResumeAfter: time.Duration(resumeAfter) * time.Millisecond,
	}
}

// SeekLockHold returns the cue-click lock hold with defaults applied.
func (c *Config) SeekLockHold() time.Duration {
	ms := c.Engine.SeekLockHoldMs
	if ms <= 0 {
		ms = 2000
	}
	return time.Duration(ms) * time.Millisecond
}

// InitialRate returns the starting playback rate with defaults applied.
func (c *Config) InitialRate() float64 {
	r := c.Engine.PlaybackRate
	if r < 0.25 || r > 4.0 {
		return 1.0
	}
	return r
}

// SaveDebounce returns the session save debounce with defaults applied.
func (c *Config) SaveDebounce() time.Duration {
	ms := c.Session.SaveDebounceMs
	if ms <= 0 {
		ms = 2000
	}
	return time.Duration(ms) * time.Millisecond
}
