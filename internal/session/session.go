// Package session models one typing test as an explicit state machine.
//
// A session is driven by two events: Input (the typed text changed) and Tick
// (a periodic clock reading). It is owned by a single caller and is not safe
// for concurrent use.
package session

import (
	"math"
	"time"

	"github.com/verte-zerg/typeforge/internal/metrics"
	"github.com/verte-zerg/typeforge/internal/model"
)

// TickInterval is how often the caller is expected to deliver Tick.
const TickInterval = 100 * time.Millisecond

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config fixes the parameters of a session.
type Config struct {
	Mode            string
	DurationSeconds int
	Source          model.TextSource
	WindowSize      int
}

// Session tracks input, timing and speed samples for one prompt.
type Session struct {
	cfg       Config
	reference []rune
	typed     []rune

	state      State
	startedAt  time.Time
	finishedAt time.Time

	samples *metrics.SampleWindow
}

// New returns an idle session for the reference text.
func New(cfg Config, reference string) *Session {
	if cfg.Mode == "" {
		cfg.Mode = model.DefaultMode
	}
	s := &Session{cfg: cfg, samples: metrics.NewSampleWindow(cfg.WindowSize)}
	s.Restart(reference)
	return s
}

// Restart discards all progress and returns to idle with a new prompt.
func (s *Session) Restart(reference string) {
	s.reference = []rune(reference)
	s.typed = nil
	s.state = Idle
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.samples.Reset()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Config returns the session parameters.
func (s *Session) Config() Config {
	return s.cfg
}

// Reference returns the prompt text.
func (s *Session) Reference() string {
	return string(s.reference)
}

// Typed returns the current input.
func (s *Session) Typed() string {
	return string(s.typed)
}

// StartedAt returns when the first character was typed.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Input replaces the typed text. The value is truncated to the prompt length.
// The first non-empty input starts the clock; input equal to the prompt
// finishes the session. Input after finishing is ignored.
// It reports whether the session finished as a result.
func (s *Session) Input(value string, now time.Time) bool {
	if s.state == Finished {
		return false
	}
	runes := []rune(value)
	if len(runes) > len(s.reference) {
		runes = runes[:len(s.reference)]
	}
	if s.state == Idle {
		if len(runes) == 0 {
			return false
		}
		s.state = Running
		s.startedAt = now
	}
	s.typed = runes
	if len(s.reference) > 0 && string(s.typed) == string(s.reference) {
		s.finish(now)
		return true
	}
	return false
}

// Tick records a speed sample and finishes the session once the configured
// duration has elapsed. It reports whether the session finished as a result.
func (s *Session) Tick(now time.Time) bool {
	if s.state != Running {
		return false
	}
	elapsed := now.Sub(s.startedAt)
	if elapsed > 0 {
		gross := metrics.GrossWPM(len(s.typed), elapsed.Seconds())
		// A repeated clock reading carries no new information.
		_ = s.samples.Append(metrics.Sample{At: elapsed, WPM: gross})
	}
	if elapsed >= s.duration() {
		s.finish(now)
		return true
	}
	return false
}

func (s *Session) finish(now time.Time) {
	s.state = Finished
	s.finishedAt = now
}

func (s *Session) duration() time.Duration {
	return time.Duration(s.cfg.DurationSeconds) * time.Second
}

// Elapsed returns the seconds spent typing, capped at the configured duration.
func (s *Session) Elapsed(now time.Time) float64 {
	switch s.state {
	case Idle:
		return 0
	case Finished:
		now = s.finishedAt
	}
	elapsed := now.Sub(s.startedAt).Seconds()
	return math.Min(float64(s.cfg.DurationSeconds), elapsed)
}

// Remaining returns whole seconds left on the clock.
func (s *Session) Remaining(now time.Time) int {
	if s.state == Finished {
		return 0
	}
	left := math.Ceil(float64(s.cfg.DurationSeconds) - s.Elapsed(now))
	if left < 0 {
		return 0
	}
	return int(left)
}

// Samples returns the retained speed samples, oldest first.
func (s *Session) Samples() []float64 {
	return s.samples.Values()
}

// Summary computes live metrics as of now.
func (s *Session) Summary(now time.Time) metrics.Summary {
	return metrics.Compute(string(s.reference), string(s.typed), s.Elapsed(now), s.samples.Values())
}

// Result builds the submission payload. It is only available once finished.
func (s *Session) Result() (model.ResultPayload, bool) {
	if s.state != Finished {
		return model.ResultPayload{}, false
	}
	elapsed := s.Elapsed(s.finishedAt)
	sum := s.Summary(s.finishedAt)
	actual := metrics.Round2(math.Max(1, elapsed))
	return model.ResultPayload{
		Mode:                  s.cfg.Mode,
		DurationSeconds:       s.cfg.DurationSeconds,
		TextSource:            s.cfg.Source,
		WPM:                   metrics.Round2(sum.NetWPM),
		RawWPM:                metrics.Round2(sum.GrossWPM),
		Accuracy:              metrics.Round2(sum.Accuracy),
		Errors:                sum.Incorrect,
		CorrectChars:          sum.Correct,
		IncorrectChars:        sum.Incorrect,
		TotalChars:            sum.Total,
		Consistency:           metrics.Round2(sum.Consistency),
		ActualDurationSeconds: &actual,
		InputHistory:          s.samples.Values(),
	}, true
}
