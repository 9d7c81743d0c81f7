package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeforge/internal/model"
)

func TestBands(t *testing.T) {
	cases := []struct {
		got, want Band
	}{
		{WPMBand(85), BandExcellent},
		{WPMBand(84.9), BandGood},
		{WPMBand(60), BandGood},
		{WPMBand(59.9), BandNeedsWork},
		{AccuracyBand(97), BandExcellent},
		{AccuracyBand(93), BandGood},
		{AccuracyBand(92.99), BandNeedsWork},
	}
	for i, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("case %d: expected %s, got %s", i, tc.want, tc.got)
		}
	}
	if BandNeedsWork.Label() != "Needs Work" {
		t.Fatalf("unexpected label %q", BandNeedsWork.Label())
	}
}

func TestLevel(t *testing.T) {
	cases := []struct {
		wpm, acc float64
		want     string
	}{
		{95, 97, "Elite"},
		{120, 96.9, "Advanced"},
		{80, 96, "Advanced"},
		{79, 99, "Intermediate"},
		{60, 93.9, "Foundation"},
	}
	for _, tc := range cases {
		if got := Level(tc.wpm, tc.acc); got != tc.want {
			t.Fatalf("Level(%v, %v) = %q, want %q", tc.wpm, tc.acc, got, tc.want)
		}
	}
}

func TestStreak(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 6, d, h, 0, 0, 0, time.UTC) }
	if got := Streak(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	got := Streak([]time.Time{day(10, 23), day(10, 1), day(9, 12), day(8, 0), day(6, 5)})
	if got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := Streak([]time.Time{day(10, 1), day(8, 1)}); got != 1 {
		t.Fatalf("expected gap to stop the streak, got %d", got)
	}
}

func TestFormatDelta(t *testing.T) {
	cases := map[float64]string{
		0.04:  "0",
		-0.04: "0",
		2.26:  "+2.3",
		-1.5:  "-1.5",
	}
	for in, want := range cases {
		if got := FormatDelta(in, ""); got != want {
			t.Fatalf("FormatDelta(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatDelta(1, "%"); got != "+1.0%" {
		t.Fatalf("unexpected suffix rendering %q", got)
	}
}

func results(n int, wpm, acc, consistency float64, errors int) []model.Result {
	out := make([]model.Result, n)
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = model.Result{WPM: wpm, Accuracy: acc, Consistency: consistency, Errors: errors, CreatedAt: at.Add(-time.Duration(i) * time.Hour)}
	}
	return out
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil)
	if d.HasRecent || d.Level != "N/A" || d.Bottleneck != "N/A" {
		t.Fatalf("unexpected empty dashboard: %+v", d)
	}
	if len(d.Plan) != 3 || d.StreakDays != 0 {
		t.Fatalf("unexpected empty dashboard plan/streak: %+v", d)
	}
}

func TestBuildDashboardBottlenecks(t *testing.T) {
	cases := []struct {
		name        string
		in          []model.Result
		bottleneck  string
		tipContains string
	}{
		{"accuracy", results(5, 70, 94, 90, 1), "Accuracy control", "strong zone"},
		{"rhythm", results(5, 70, 96, 80, 1), "Rhythm consistency", "strong zone"},
		{"errors", results(5, 70, 96, 90, 8), "Error frequency", "strong zone"},
		{"speed", results(5, 70, 96, 90, 1), "Speed ceiling", "strong zone"},
		{"slow", results(5, 40, 96, 90, 1), "Speed ceiling", "below your likely potential"},
		{"sloppy", results(5, 70, 90, 90, 1), "Accuracy control", "accuracy is limiting"},
	}
	for _, tc := range cases {
		d := BuildDashboard(tc.in)
		if d.Bottleneck != tc.bottleneck {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.bottleneck, d.Bottleneck)
		}
		if !strings.Contains(d.CoachingTip, tc.tipContains) {
			t.Fatalf("%s: unexpected tip %q", tc.name, d.CoachingTip)
		}
	}
}

func TestBuildDashboardWithoutPreviousBlock(t *testing.T) {
	d := BuildDashboard(results(4, 70, 96, 90, 1))
	if d.WPMDelta != 0 || d.AccuracyDelta != 0 {
		t.Fatalf("expected zero deltas without a previous block, got %v %v", d.WPMDelta, d.AccuracyDelta)
	}
	if len(d.Trend) != 4 || len(d.Sparkline) != 4 {
		t.Fatalf("unexpected trend lengths %d/%d", len(d.Trend), len(d.Sparkline))
	}
	if d.StreakDays != 1 {
		t.Fatalf("expected same-day results to count once, got %d", d.StreakDays)
	}
}

func TestSparklineCapsPoints(t *testing.T) {
	d := BuildDashboard(results(12, 70, 96, 90, 1))
	if len(d.Sparkline) != SparkPoints {
		t.Fatalf("expected %d sparkline points, got %d", SparkPoints, len(d.Sparkline))
	}
}
