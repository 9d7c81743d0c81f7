package metrics

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreCharactersCountsEveryTypedRune(t *testing.T) {
	cases := []struct {
		ref, typed         string
		correct, incorrect int
	}{
		{"the cat sat", "the cat sar", 10, 1},
		{"abc", "", 0, 0},
		{"abc", "abc", 3, 0},
		{"abc", "xyz", 0, 3},
		{"ab", "abcd", 2, 2},
		{"héllo", "hello", 4, 1},
	}
	for _, tc := range cases {
		correct, incorrect := ScoreCharacters(tc.ref, tc.typed)
		if correct != tc.correct || incorrect != tc.incorrect {
			t.Fatalf("ScoreCharacters(%q, %q) = %d/%d, want %d/%d", tc.ref, tc.typed, correct, incorrect, tc.correct, tc.incorrect)
		}
		if got := correct + incorrect; got != len([]rune(tc.typed)) {
			t.Fatalf("correct+incorrect = %d, want %d", got, len([]rune(tc.typed)))
		}
	}
}

func TestAccuracyEmptyInputIsPerfect(t *testing.T) {
	if got := Accuracy(0, 0); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := Accuracy(3, 4); got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}
}

func TestWPMZeroWhenNoTimeElapsed(t *testing.T) {
	if got := GrossWPM(50, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := NetWPM(50, -1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestComputeScenario(t *testing.T) {
	s := Compute("the cat sat", "the cat sar", 6, nil)
	if s.Correct != 10 || s.Incorrect != 1 || s.Total != 11 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if !almostEqual(s.NetWPM, 20) {
		t.Fatalf("expected net 20, got %v", s.NetWPM)
	}
	if !almostEqual(s.GrossWPM, 22) {
		t.Fatalf("expected gross 22, got %v", s.GrossWPM)
	}
	if Round2(s.Accuracy) != 90.91 {
		t.Fatalf("expected accuracy 90.91, got %v", s.Accuracy)
	}
	if s.Consistency != 100 {
		t.Fatalf("expected consistency 100 without samples, got %v", s.Consistency)
	}
}

func TestConsistency(t *testing.T) {
	cases := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 100},
		{"single", []float64{42}, 100},
		{"flat", []float64{50, 50, 50}, 100},
		{"zero mean", []float64{0, 0, 0}, 0},
		// mean 50, stddev 10 -> 80
		{"varied", []float64{40, 60}, 80},
		// cv above 100% floors at zero
		{"floor", []float64{0, 0, 0, 100}, 0},
	}
	for _, tc := range cases {
		if got := Consistency(tc.samples); !almostEqual(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestConsistencyIgnoresOrder(t *testing.T) {
	a := Consistency([]float64{30, 50, 70, 40})
	b := Consistency([]float64{70, 40, 30, 50})
	if !almostEqual(a, b) {
		t.Fatalf("expected order independence, got %v and %v", a, b)
	}
}

func TestSampleWindowDropsOldest(t *testing.T) {
	w := NewSampleWindow(3)
	for i := 1; i <= 5; i++ {
		if err := w.Append(Sample{At: time.Duration(i) * 100 * time.Millisecond, WPM: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	got := w.Values()
	want := []float64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSampleWindowRejectsOutOfOrder(t *testing.T) {
	w := NewSampleWindow(0)
	if err := w.Append(Sample{At: time.Second, WPM: 10}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := w.Append(Sample{At: time.Second, WPM: 12}); err == nil {
		t.Fatalf("expected error for duplicate timestamp")
	}
	if w.Len() != 1 {
		t.Fatalf("expected rejected sample to be dropped, got %d samples", w.Len())
	}
}
