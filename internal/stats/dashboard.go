package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/typeforge/internal/model"
)

// Dashboard windows over a player's history, newest first.
const (
	HistoryLimit = 60
	BlockSize    = 12
	SparkPoints  = 8
)

// Band grades a metric.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandNeedsWork Band = "needs-work"
)

// Label returns the display label.
func (b Band) Label() string {
	switch b {
	case BandExcellent:
		return "Excellent"
	case BandGood:
		return "Good"
	default:
		return "Needs Work"
	}
}

// WPMBand grades an average speed.
func WPMBand(wpm float64) Band {
	switch {
	case wpm >= 85:
		return BandExcellent
	case wpm >= 60:
		return BandGood
	default:
		return BandNeedsWork
	}
}

// AccuracyBand grades an average accuracy.
func AccuracyBand(accuracy float64) Band {
	switch {
	case accuracy >= 97:
		return BandExcellent
	case accuracy >= 93:
		return BandGood
	default:
		return BandNeedsWork
	}
}

// Level names a skill tier from average speed and accuracy.
func Level(wpm, accuracy float64) string {
	switch {
	case wpm >= 95 && accuracy >= 97:
		return "Elite"
	case wpm >= 80 && accuracy >= 96:
		return "Advanced"
	case wpm >= 60 && accuracy >= 94:
		return "Intermediate"
	default:
		return "Foundation"
	}
}

// Streak counts consecutive UTC days with at least one result, starting from
// the most recent active day.
func Streak(times []time.Time) int {
	if len(times) == 0 {
		return 0
	}
	seen := map[string]struct{}{}
	var days []time.Time
	for _, t := range times {
		day := t.UTC().Truncate(24 * time.Hour)
		key := day.Format(time.DateOnly)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// FormatDelta renders a signed change with one decimal; near-zero is "0".
func FormatDelta(delta float64, suffix string) string {
	if math.Abs(delta) < 0.05 {
		return "0" + suffix
	}
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%s", sign, delta, suffix)
}

// Dashboard summarizes recent performance.
type Dashboard struct {
	Sessions           int      `json:"sessions"`
	HasRecent          bool     `json:"hasRecent"`
	AverageWPM         float64  `json:"averageWpm"`
	AverageAccuracy    float64  `json:"averageAccuracy"`
	AverageErrors      float64  `json:"averageErrors"`
	AverageConsistency float64  `json:"averageConsistency"`
	WPMDelta           float64  `json:"wpmDelta"`
	AccuracyDelta      float64  `json:"accuracyDelta"`
	BestWPM            float64  `json:"bestWpm"`
	BestAccuracy       float64  `json:"bestAccuracy"`
	StreakDays         int      `json:"streakDays"`
	WPMBand            Band     `json:"wpmBand"`
	AccuracyBand       Band     `json:"accuracyBand"`
	Level              string   `json:"level"`
	Bottleneck         string   `json:"primaryBottleneck"`
	CoachingTip        string   `json:"coachingTip"`
	Plan               []string `json:"improvementPlan"`
	// Trend is the recent block's WPM, oldest to newest.
	Trend     []float64 `json:"trend"`
	Sparkline []float64 `json:"sparkline"`
}

// BuildDashboard computes the dashboard from results ordered newest first.
// Only the first HistoryLimit results are considered.
func BuildDashboard(results []model.Result) Dashboard {
	if len(results) > HistoryLimit {
		results = results[:HistoryLimit]
	}
	recent := results[:min(BlockSize, len(results))]
	previous := results[len(recent):min(2*BlockSize, len(results))]

	d := Dashboard{Sessions: len(results), HasRecent: len(recent) > 0}
	d.AverageWPM = Mean(field(recent, func(r model.Result) float64 { return r.WPM }))
	d.AverageAccuracy = Mean(field(recent, func(r model.Result) float64 { return r.Accuracy }))
	d.AverageErrors = Mean(field(recent, func(r model.Result) float64 { return float64(r.Errors) }))
	d.AverageConsistency = Mean(field(recent, func(r model.Result) float64 { return r.Consistency }))

	prevWPM, prevAcc := d.AverageWPM, d.AverageAccuracy
	if len(previous) > 0 {
		prevWPM = Mean(field(previous, func(r model.Result) float64 { return r.WPM }))
		prevAcc = Mean(field(previous, func(r model.Result) float64 { return r.Accuracy }))
	}
	d.WPMDelta = d.AverageWPM - prevWPM
	d.AccuracyDelta = d.AverageAccuracy - prevAcc
	d.BestWPM = Max(field(results, func(r model.Result) float64 { return r.WPM }))
	d.BestAccuracy = Max(field(results, func(r model.Result) float64 { return r.Accuracy }))

	times := make([]time.Time, len(results))
	for i, r := range results {
		times[i] = r.CreatedAt
	}
	d.StreakDays = Streak(times)

	d.Trend = make([]float64, len(recent))
	for i, r := range recent {
		d.Trend[len(recent)-1-i] = round1(r.WPM)
	}
	d.Sparkline = d.Trend[max(0, len(d.Trend)-SparkPoints):]

	d.WPMBand = WPMBand(d.AverageWPM)
	d.AccuracyBand = AccuracyBand(d.AverageAccuracy)
	d.Level = "N/A"
	if d.HasRecent {
		d.Level = Level(d.AverageWPM, d.AverageAccuracy)
	}
	d.Bottleneck = bottleneck(d)
	d.CoachingTip = coachingTip(d)
	d.Plan = improvementPlan(d)
	return d
}

func field(results []model.Result, get func(model.Result) float64) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = get(r)
	}
	return out
}

func bottleneck(d Dashboard) string {
	switch {
	case !d.HasRecent:
		return "N/A"
	case d.AverageAccuracy < 94.5:
		return "Accuracy control"
	case d.AverageConsistency < 84:
		return "Rhythm consistency"
	case d.AverageErrors > 5:
		return "Error frequency"
	default:
		return "Speed ceiling"
	}
}

func coachingTip(d Dashboard) string {
	switch {
	case !d.HasRecent:
		return "No saved sessions yet. Run 5 tests across 30s and 60s to unlock personalized coaching."
	case d.AccuracyBand == BandNeedsWork:
		return "Your accuracy is limiting speed. Slow down for 2-3 sessions and target 96%+ accuracy first."
	case d.WPMBand == BandNeedsWork:
		return "Your speed is below your likely potential. Run 30s bursts with relaxed hands and smooth rhythm."
	default:
		return "You are in a strong zone. Focus on consistency to keep high scores repeatable."
	}
}

func improvementPlan(d Dashboard) []string {
	if !d.HasRecent {
		return []string{
			"Run 3 tests in 30s mode to set your first speed baseline.",
			"Run 2 tests in 60s mode to measure endurance consistency.",
			"Return here to get tailored drills from your own results.",
		}
	}
	plan := make([]string, 0, 3)
	if d.AverageAccuracy < 94.5 {
		plan = append(plan, "Do 4 short runs at 85-90% pace and hold 96%+ accuracy.")
	} else {
		plan = append(plan, "Start with 2 warmup runs focusing on calm keypress timing.")
	}
	if d.AverageConsistency < 84 {
		plan = append(plan, "Use 60s mode and keep cadence stable; avoid sprinting first 20 seconds.")
	} else {
		plan = append(plan, "Run one 120s test daily to build stable endurance.")
	}
	if d.AverageErrors > 5 {
		plan = append(plan, "Drill your most missed keys for 5 minutes before leaderboard attempts.")
	} else {
		plan = append(plan, "Push one max-speed run at the end and compare against your baseline.")
	}
	return plan
}
