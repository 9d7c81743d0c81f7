package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/session"
	"github.com/verte-zerg/typeforge/internal/submit"
	"github.com/verte-zerg/typeforge/internal/textsource"
)

type fixedPrompts struct {
	text  string
	calls int
}

func (p *fixedPrompts) Prompt(_ context.Context, source model.TextSource, _ textsource.Options) (textsource.Prompt, error) {
	p.calls++
	return textsource.Prompt{Source: source, Text: p.text}, nil
}

type recordingSubmitter struct {
	payloads []model.ResultPayload
	outcome  submit.Outcome
}

func (s *recordingSubmitter) Submit(_ context.Context, _ *model.Identity, p model.ResultPayload) (submit.Outcome, error) {
	s.payloads = append(s.payloads, p)
	out := s.outcome
	if out.Saved {
		rec := model.ResultFromPayload(p)
		out.Record = &rec
	}
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestModel(text string, sub *recordingSubmitter) (*Model, *clock, *fixedPrompts) {
	c := &clock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	prompts := &fixedPrompts{text: text}
	m := NewModel(Options{
		Session:   session.Config{DurationSeconds: 15, Source: model.TextSourceWords},
		Identity:  &model.Identity{UserID: "u1", Name: "ada"},
		Prompts:   prompts,
		Submitter: sub,
		Now:       c.now,
	})
	return m, c, prompts
}

func typeRunes(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func TestFirstInputStartsTicking(t *testing.T) {
	m, _, _ := newTestModel("ab cd", &recordingSubmitter{})
	if cmd := typeRunes(m, "a"); cmd == nil {
		t.Fatalf("expected tick command after first input")
	}
	if m.session.State() != session.Running {
		t.Fatalf("expected running, got %s", m.session.State())
	}
	if cmd := typeRunes(m, "b"); cmd != nil {
		t.Fatalf("expected no extra tick command while running")
	}
}

func TestCompletingPromptSubmits(t *testing.T) {
	sub := &recordingSubmitter{outcome: submit.Outcome{Accepted: true, Saved: true}}
	m, c, _ := newTestModel("ab cd", sub)
	typeRunes(m, "a")
	c.t = c.t.Add(2 * time.Second)
	typeRunes(m, "b")
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	cmd := typeRunes(m, "cd")
	if cmd == nil {
		t.Fatalf("expected submit command on completion")
	}
	if m.session.State() != session.Finished || m.result == nil {
		t.Fatalf("expected finished session with result")
	}
	m.Update(cmd())
	if len(sub.payloads) != 1 {
		t.Fatalf("expected one submission, got %d", len(sub.payloads))
	}
	p := sub.payloads[0]
	if p.ID == "" || p.TotalChars != 5 || p.CorrectChars != 5 {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if m.status != "Saved." || !m.hasLast || m.lastWPM != p.WPM {
		t.Fatalf("unexpected status %q last=%v", m.status, m.lastWPM)
	}
	if !strings.Contains(m.View(), "Saved.") {
		t.Fatalf("expected result view to show status")
	}
}

func TestBackspaceEditsInput(t *testing.T) {
	m, _, _ := newTestModel("ab", &recordingSubmitter{})
	typeRunes(m, "ax")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.session.Typed() != "a" {
		t.Fatalf("expected backspace to remove last rune, got %q", m.session.Typed())
	}
}

func TestTimeoutFinishes(t *testing.T) {
	sub := &recordingSubmitter{outcome: submit.Outcome{Accepted: true, Message: submit.GuestMessage}}
	m, c, _ := newTestModel("ab cd", sub)
	typeRunes(m, "a")
	c.t = c.t.Add(15 * time.Second)
	_, cmd := m.Update(tickMsg{gen: m.gen, at: c.t})
	if cmd == nil || m.session.State() != session.Finished {
		t.Fatalf("expected timeout to finish and submit")
	}
	m.Update(cmd())
	if m.status != submit.GuestMessage {
		t.Fatalf("expected guest message, got %q", m.status)
	}
}

func TestRejectedOutcomeShowsReason(t *testing.T) {
	sub := &recordingSubmitter{outcome: submit.Outcome{Reason: "Accuracy below 70%"}}
	m, _, _ := newTestModel("ab", sub)
	cmd := typeRunes(m, "ab")
	m.Update(cmd())
	if !strings.Contains(m.status, "Rejected by anti-cheat: Accuracy below 70%") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if m.hasLast {
		t.Fatalf("rejected results must not update the footer")
	}
}

func TestEscRestartsAndDropsStaleMessages(t *testing.T) {
	sub := &recordingSubmitter{outcome: submit.Outcome{Accepted: true, Saved: true}}
	m, c, prompts := newTestModel("ab", sub)
	typeRunes(m, "a")
	staleGen := m.gen

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if prompts.calls != 2 {
		t.Fatalf("expected a new prompt on restart, got %d calls", prompts.calls)
	}
	if m.session.State() != session.Idle || m.session.Typed() != "" {
		t.Fatalf("expected idle session after restart")
	}

	c.t = c.t.Add(time.Minute)
	if _, cmd := m.Update(tickMsg{gen: staleGen, at: c.t}); cmd != nil {
		t.Fatalf("expected stale tick to be ignored")
	}
	m.Update(submittedMsg{gen: staleGen, outcome: submit.Outcome{Accepted: true, Saved: true, Record: &model.Result{WPM: 999}}})
	if m.hasLast {
		t.Fatalf("expected stale submission to be ignored")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _, _ := newTestModel("abcd", &recordingSubmitter{})
	m.hasLast, m.lastWPM, m.lastAcc, m.bestWPM = true, 72.4, 97.8, 80
	typeRunes(m, "ab")
	out := m.renderFooter()
	for _, want := range []string{"Progress 50%", "Last 72.4 WPM", "97.8%", "Best 80.0 WPM", "Esc restart"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestRecentSeedsFooter(t *testing.T) {
	m := NewModel(Options{
		Session: session.Config{DurationSeconds: 30, Source: model.TextSourceWords},
		Recent:  []model.Result{{WPM: 61, Accuracy: 95}, {WPM: 75, Accuracy: 90}},
	})
	if !m.hasLast || m.lastWPM != 61 || m.bestWPM != 75 {
		t.Fatalf("unexpected footer seed: last=%v best=%v", m.lastWPM, m.bestWPM)
	}
	if m.session.Reference() != textsource.FallbackWords {
		t.Fatalf("expected fallback prompt without a prompter")
	}
}
