package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeforge/internal/model"
)

type fakeLister struct {
	results []model.Result
	err     error
	calls   int
}

func (f *fakeLister) ListUserResults(_ context.Context, _ model.StatsConfig) ([]model.Result, error) {
	f.calls++
	return f.results, f.err
}

func sampleResults(n int) []model.Result {
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.Result, n)
	for i := range out {
		out[i] = model.Result{
			ID:              string(rune('a' + i)),
			DurationSeconds: 60,
			TextSource:      model.TextSourceWords,
			WPM:             70,
			RawWPM:          75,
			Accuracy:        96,
			Consistency:     90,
			CreatedAt:       at.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func resize(m *Model, w, h int) {
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func TestOverviewShowsCards(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults(3)}, model.StatsConfig{UserID: "u1"})
	resize(m, 100, 40)
	view := m.View()
	for _, want := range []string{"Overview", "History", "Avg WPM", "70.0", "Level", "Bottleneck"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewModel(&fakeLister{}, model.StatsConfig{UserID: "u1"})
	resize(m, 80, 20)
	if !strings.Contains(m.View(), "No saved sessions yet.") {
		t.Fatalf("expected empty overview, got:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "No results found.") {
		t.Fatalf("expected empty history, got:\n%s", m.View())
	}
}

func TestTabSwitchingWraps(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults(2)}, model.StatsConfig{})
	resize(m, 100, 30)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabHistory {
		t.Fatalf("expected left from overview to wrap to history, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Consistency") {
		t.Fatalf("expected history headers, got:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview, got %d", m.activeTab)
	}
}

func TestLoadErrorAndRefresh(t *testing.T) {
	src := &fakeLister{err: errors.New("db down")}
	m := NewModel(src, model.StatsConfig{})
	resize(m, 80, 20)
	if !strings.Contains(m.View(), "db down") {
		t.Fatalf("expected error in footer, got:\n%s", m.View())
	}
	src.err = nil
	src.results = sampleResults(1)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if src.calls != 2 {
		t.Fatalf("expected refresh to reload, got %d calls", src.calls)
	}
	if m.errMsg != "" || len(m.report.Results) != 1 {
		t.Fatalf("unexpected state after refresh: err=%q results=%d", m.errMsg, len(m.report.Results))
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(&fakeLister{}, model.StatsConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 5); got != "ab..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 0); got != "abc" {
		t.Fatalf("expected no truncation, got %q", got)
	}
}
