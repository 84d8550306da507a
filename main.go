package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/llehouerou/cuesync/internal/config"
	"github.com/llehouerou/cuesync/internal/engine"
	"github.com/llehouerou/cuesync/internal/log"
	"github.com/llehouerou/cuesync/internal/mirror"
	"github.com/llehouerou/cuesync/internal/session"
	"github.com/llehouerou/cuesync/internal/subtitle"
)

// sampleSRT is used when no subtitle file is given on the command line.
const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Bonjour, comment allez-vous ?

2
00:00:04,200 --> 00:00:06,800
Très bien, merci beaucoup.

3
00:00:07,500 --> 00:00:10,000
Qu'est-ce que vous faites ce week-end ?
`

// simBackend is a fake playback backend. Commands mutate its state; the
// driving loop reports time progress back to the engine, the way a real
// player process reports over IPC.
type simBackend struct {
	mu sync.Mutex

	position time.Duration
	duration time.Duration
	paused   bool
	rate     float64
	volume   float64
	muted    bool
}

func newSimBackend(duration time.Duration) *simBackend {
	return &simBackend{
		duration: duration,
		paused:   true,
		rate:     1.0,
		volume:   1.0,
	}
}

func (b *simBackend) Play() error {
	b.mu.Lock()
	b.paused = false
	b.mu.Unlock()
	return nil
}

func (b *simBackend) Pause() error {
	b.mu.Lock()
	b.paused = true
	b.mu.Unlock()
	return nil
}

func (b *simBackend) Seek(pos time.Duration) error {
	b.mu.Lock()
	b.position = pos
	b.mu.Unlock()
	return nil
}

func (b *simBackend) SetRate(rate float64) error {
	b.mu.Lock()
	b.rate = rate
	b.mu.Unlock()
	return nil
}

func (b *simBackend) SetVolume(v float64) error {
	b.mu.Lock()
	b.volume = v
	b.mu.Unlock()
	return nil
}

func (b *simBackend) SetMuted(muted bool) error {
	b.mu.Lock()
	b.muted = muted
	b.mu.Unlock()
	return nil
}

func (b *simBackend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

func (b *simBackend) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *simBackend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *simBackend) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rate
}

func (b *simBackend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *simBackend) Muted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

// advance moves media time by one frame and reports it, like a backend's
// periodic time-pos property change. It returns the new position and
// whether the media just ran out.
func (b *simBackend) advance(step time.Duration, eng *engine.Engine) (time.Duration, bool) {
	b.mu.Lock()
	if b.paused {
		pos := b.position
		b.mu.Unlock()
		return pos, false
	}
	b.position += time.Duration(float64(step) * b.rate)
	pos := b.position
	ended := pos >= b.duration
	if ended {
		b.position = b.duration
		b.paused = true
		pos = b.duration
	}
	b.mu.Unlock()

	eng.OnTimeProgressed(pos)
	if ended {
		eng.OnEnded()
	}
	return pos, ended
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Configure(log.Config{})
	logger := log.WithComponent("main")

	raw := sampleSRT
	mediaPath := "sim://sample"
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			return fmt.Errorf("read subtitles: %w", err)
		}
		raw = string(data)
		mediaPath = os.Args[1]
	}

	track, err := subtitle.ParseSRT(strings.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse subtitles: %w", err)
	}
	if track.IsEmpty() {
		return fmt.Errorf("no usable cues in subtitle input")
	}
	logger.Info().Int("cues", len(track.Cues)).Str("media", mediaPath).Msg("track loaded")

	sessions, err := session.Open(cfg.SaveDebounce())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	duration := track.Cues[len(track.Cues)-1].End + 2*time.Second
	backend := newSimBackend(duration)

	store := mirror.NewStore()
	eng, err := engine.New(engine.Options{
		Device:       backend,
		Mirror:       store,
		Loop:         cfg.GetLoopConfig(),
		AutoPause:    cfg.GetAutoPauseConfig(),
		SeekLockHold: cfg.SeekLockHold(),
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer eng.Close()

	eng.SetCues(track.Cues)
	eng.OnDurationKnown(duration)

	// Resume where this media left off last time.
	if saved, err := sessions.Get(mediaPath); err == nil && saved != nil && saved.Position > 0 {
		logger.Info().Dur("position", saved.Position).Msg("resuming saved session")
		if err := eng.RequestSeek(saved.Position); err == nil {
			eng.OnSeekStarted()
			eng.OnSeekCompleted(backend.Position())
		}
		if saved.Rate != 1.0 {
			_ = eng.RequestSetRate(saved.Rate)
		}
	}

	if err := eng.RequestPlay(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	eng.OnPlayStarted()

	// Frame loop: ~25 fps of time reports, with session saves riding on
	// top. The engine sees the same noisy stream a real backend produces.
	const frame = 40 * time.Millisecond
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	lastIndex := -1
	for range ticker.C {
		pos, ended := backend.advance(frame, eng)

		snap := store.Snapshot()
		if snap.ActiveCueIndex != lastIndex {
			lastIndex = snap.ActiveCueIndex
			if lastIndex >= 0 && lastIndex < len(track.Cues) {
				logger.Info().
					Int("cue", lastIndex).
					Dur("position", pos).
					Msg(track.Cues[lastIndex].Text)
			} else {
				logger.Info().Dur("position", pos).Msg("(no active cue)")
			}
		}

		sessions.Save(session.PlaybackState{
			MediaPath: mediaPath,
			Position:  pos,
			Duration:  duration,
			Rate:      snap.PlaybackRate,
			Loop:      eng.Snapshot().Loop,
		})

		if ended {
			break
		}
	}

	ticks := eng.Trace()
	slow := 0
	for _, tk := range ticks {
		if tk.Slow {
			slow++
		}
	}
	logger.Info().
		Int("ticks", len(ticks)).
		Int("slow", slow).
		Msg("playback finished")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
