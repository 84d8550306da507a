package subtitle

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Matches a cue timing line like "00:00:10,500 --> 00:00:13,000".
// Both comma and dot millisecond separators are accepted.
var timingRe = regexp.MustCompile(
	`^(\d+):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d+):(\d{2}):(\d{2})[,.](\d{1,3})`)

// ParseSRT parses SubRip subtitles from a reader.
//
// The parser is tolerant: blocks without a valid timing line are skipped,
// counter lines are ignored (cues are re-indexed after sorting), and basic
// formatting tags are kept as-is in the text.
func ParseSRT(r io.Reader) (*Track, error) {
	track := &Track{}
	scanner := bufio.NewScanner(r)

	var (
		cur   *Cue
		text  []string
		inCue bool
	)

	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(text, "\n"))
			track.Cues = append(track.Cues, *cur)
		}
		cur = nil
		text = nil
		inCue = false
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\ufeff")

		if line == "" {
			flush()
			continue
		}

		if m := timingRe.FindStringSubmatch(line); m != nil {
			flush()
			start := parseClock(m[1], m[2], m[3], m[4])
			end := parseClock(m[5], m[6], m[7], m[8])
			if end < start {
				// Broken timing, skip the whole block.
				inCue = false
				continue
			}
			cur = &Cue{Start: start, End: end}
			inCue = true
			continue
		}

		if !inCue {
			// Counter line or stray text outside a cue block.
			continue
		}
		text = append(text, scanner.Text())
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(track.Cues, func(i, j int) bool {
		return track.Cues[i].Start < track.Cues[j].Start
	})
	for i := range track.Cues {
		track.Cues[i].Index = i
	}

	return track, nil
}

// parseClock converts hour/minute/second/millisecond strings to a Duration.
// Inputs are pre-validated by the timing regexp.
func parseClock(h, m, s, ms string) time.Duration {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	// ",5" means 500ms, ",50" means 500ms: pad to three digits.
	switch len(ms) {
	case 1:
		millis *= 100
	case 2:
		millis *= 10
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}
