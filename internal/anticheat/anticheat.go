// Package anticheat decides whether a submitted result is plausible enough to
// be stored and ranked.
//
// Two layers run in sequence. CheckSchema rejects malformed payloads with an
// error. Validate then applies the plausibility rules and returns a Verdict;
// a failed rule is an expected outcome, not an error.
package anticheat

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/verte-zerg/typeforge/internal/model"
)

// ErrInvalidPayload marks payloads rejected by the schema layer.
var ErrInvalidPayload = errors.New("invalid result payload")

// Rule identifies one plausibility check.
type Rule string

const (
	RuleNone          Rule = ""
	RuleAccuracyFloor Rule = "accuracy_floor"
	RuleWPMCeiling    Rule = "wpm_ceiling"
	RuleCharsDuration Rule = "chars_duration"
	RuleCharTotals    Rule = "char_totals"
	RuleRawBelowNet   Rule = "raw_below_net"
)

// Policy holds the tunable thresholds.
type Policy struct {
	MinAccuracy      float64
	MaxWPM           float64
	CharToleranceAbs float64
	CharToleranceRel float64
	RawNetGap        float64
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinAccuracy:      70,
		MaxWPM:           260,
		CharToleranceAbs: 40,
		CharToleranceRel: 0.4,
		RawNetGap:        35,
	}
}

// Verdict is the outcome of Validate.
type Verdict struct {
	Accepted bool
	Rule     Rule
	Reason   string
}

func accept() Verdict {
	return Verdict{Accepted: true}
}

func reject(rule Rule, reason string) Verdict {
	return Verdict{Rule: rule, Reason: reason}
}

// Validate applies the plausibility rules in order and stops at the first
// failure. The payload is assumed to have passed CheckSchema.
func (p Policy) Validate(r model.ResultPayload) Verdict {
	if r.Accuracy < p.MinAccuracy {
		return reject(RuleAccuracyFloor, fmt.Sprintf("Accuracy below %s%%", num(p.MinAccuracy)))
	}
	if r.WPM > p.MaxWPM {
		return reject(RuleWPMCeiling, fmt.Sprintf("WPM above allowed threshold (%s)", num(p.MaxWPM)))
	}

	configured := float64(r.DurationSeconds)
	actual := configured
	if r.ActualDurationSeconds != nil {
		actual = *r.ActualDurationSeconds
	}
	effective := math.Min(configured, math.Max(1, actual))
	expected := r.WPM * 5 * effective / 60
	tolerance := math.Max(p.CharToleranceAbs, expected*p.CharToleranceRel)
	if math.Abs(expected-float64(r.TotalChars)) > tolerance {
		return reject(RuleCharsDuration, "Duration and character count mismatch")
	}

	if r.CorrectChars+r.IncorrectChars != r.TotalChars {
		return reject(RuleCharTotals, "Character totals do not add up")
	}
	if r.RawWPM+p.RawNetGap < r.WPM {
		return reject(RuleRawBelowNet, "Raw WPM cannot be significantly below final WPM")
	}
	return accept()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CheckSchema verifies field ranges and enumerations.
func CheckSchema(r model.ResultPayload) error {
	if len(r.ID) > 64 {
		return invalid("id must be at most 64 characters")
	}
	if n := len([]rune(r.Mode)); n < 2 || n > 30 {
		return invalid("mode must be 2-30 characters")
	}
	if !model.ValidDuration(r.DurationSeconds) {
		return invalid("durationSeconds must be one of %v", model.Durations)
	}
	if !r.TextSource.Valid() {
		return invalid("textSource must be words or quote")
	}
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"wpm", r.WPM, 0, 500},
		{"rawWpm", r.RawWPM, 0, 600},
		{"accuracy", r.Accuracy, 0, 100},
		{"errors", float64(r.Errors), 0, 9999},
		{"correctChars", float64(r.CorrectChars), 0, 50000},
		{"incorrectChars", float64(r.IncorrectChars), 0, 50000},
		{"totalChars", float64(r.TotalChars), 1, 100000},
		{"consistency", r.Consistency, 0, 100},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || c.v < c.min || c.v > c.max {
			return invalid("%s must be between %s and %s", c.name, num(c.min), num(c.max))
		}
	}
	if d := r.ActualDurationSeconds; d != nil && (math.IsNaN(*d) || *d < 1 || *d > 180) {
		return invalid("actualDurationSeconds must be between 1 and 180")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}
