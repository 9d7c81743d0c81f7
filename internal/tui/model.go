// Package tui provides the Bubble Tea typing test.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/typeforge/internal/metrics"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/session"
	"github.com/verte-zerg/typeforge/internal/submit"
	"github.com/verte-zerg/typeforge/internal/textsource"
)

const maxPromptLines = 3

// Prompter supplies prompts.
type Prompter interface {
	Prompt(ctx context.Context, source model.TextSource, opts textsource.Options) (textsource.Prompt, error)
}

// Submitter validates and stores finished results.
type Submitter interface {
	Submit(ctx context.Context, identity *model.Identity, p model.ResultPayload) (submit.Outcome, error)
}

// Options configures the typing model.
type Options struct {
	Session   session.Config
	Prompt    textsource.Options
	Identity  *model.Identity
	Prompts   Prompter
	Submitter Submitter
	// Recent seeds the footer, newest first.
	Recent []model.Result
	// Now overrides the clock.
	Now func() time.Time
}

type tickMsg struct {
	gen int
	at  time.Time
}

type submittedMsg struct {
	gen     int
	outcome submit.Outcome
	err     error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	opts    Options
	now     func() time.Time
	session *session.Session
	prompt  textsource.Prompt
	// gen invalidates ticks and submissions from earlier sessions.
	gen int

	width  int
	height int

	result  *model.ResultPayload
	status  string
	pending bool

	lastWPM float64
	lastAcc float64
	hasLast bool
	bestWPM float64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	headingStyle     = lipgloss.NewStyle().Bold(true)
	rejectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a typing model and loads the first prompt.
func NewModel(opts Options) *Model {
	m := &Model{opts: opts, now: opts.Now}
	if m.now == nil {
		m.now = time.Now
	}
	if len(opts.Recent) > 0 {
		last := opts.Recent[0]
		m.lastWPM, m.lastAcc, m.hasLast = last.WPM, last.Accuracy, true
		for _, r := range opts.Recent {
			m.bestWPM = max(m.bestWPM, r.WPM)
		}
	}
	m.session = session.New(opts.Session, "")
	m.restart()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case submittedMsg:
		m.handleSubmitted(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.restart()
		return nil
	case tea.KeyEnter:
		if m.session.State() == session.Finished {
			m.restart()
		}
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		typed := []rune(m.session.Typed())
		if len(typed) == 0 {
			return nil
		}
		return m.input(string(typed[:len(typed)-1]))
	case tea.KeySpace:
		return m.input(m.session.Typed() + " ")
	case tea.KeyRunes:
		return m.input(m.session.Typed() + string(msg.Runes))
	default:
		return nil
	}
}

// input forwards the new typed value and schedules follow-up commands.
func (m *Model) input(value string) tea.Cmd {
	wasIdle := m.session.State() == session.Idle
	finished := m.session.Input(value, m.now())
	if finished {
		return m.finish()
	}
	if wasIdle && m.session.State() == session.Running {
		return m.scheduleTick()
	}
	return nil
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.gen || m.session.State() != session.Running {
		return nil
	}
	if m.session.Tick(msg.at) {
		return m.finish()
	}
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(session.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

// finish captures the result and submits it in the background.
func (m *Model) finish() tea.Cmd {
	payload, ok := m.session.Result()
	if !ok {
		return nil
	}
	payload.ID = ulid.Make().String()
	m.result = &payload
	if m.opts.Submitter == nil {
		m.status = "Result not saved: no store configured."
		return nil
	}
	m.pending = true
	m.status = "Saving..."
	gen := m.gen
	sub := m.opts.Submitter
	identity := m.opts.Identity
	return func() tea.Msg {
		outcome, err := sub.Submit(context.Background(), identity, payload)
		return submittedMsg{gen: gen, outcome: outcome, err: err}
	}
}

func (m *Model) handleSubmitted(msg submittedMsg) {
	if msg.gen != m.gen {
		return
	}
	m.pending = false
	switch {
	case msg.err != nil:
		m.status = rejectedStyle.Render("Invalid result: " + msg.err.Error())
	case !msg.outcome.Accepted:
		m.status = rejectedStyle.Render("Rejected by anti-cheat: " + msg.outcome.Reason)
	case msg.outcome.SaveErr != nil:
		logErrf("failed to save result: %v\n", msg.outcome.SaveErr)
		m.status = msg.outcome.Message
	case !msg.outcome.Saved:
		m.status = msg.outcome.Message
	default:
		m.status = "Saved."
		rec := msg.outcome.Record
		m.lastWPM, m.lastAcc, m.hasLast = rec.WPM, rec.Accuracy, true
		m.bestWPM = max(m.bestWPM, rec.WPM)
	}
}

func (m *Model) restart() {
	m.gen++
	m.result = nil
	m.status = ""
	m.pending = false
	m.prompt = m.loadPrompt()
	m.session.Restart(m.prompt.Text)
}

func (m *Model) loadPrompt() textsource.Prompt {
	source := m.opts.Session.Source
	if m.opts.Prompts == nil {
		return textsource.Prompt{Source: source, Text: textsource.FallbackWords}
	}
	p, err := m.opts.Prompts.Prompt(context.Background(), source, m.opts.Prompt)
	if err != nil {
		logErrf("failed to load prompt: %v\n", err)
		return textsource.Prompt{Source: source, Text: textsource.FallbackWords}
	}
	return p
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.result != nil {
		return m.place(m.renderResult(), "Enter/Esc new test · Ctrl+C quit")
	}
	reference := []rune(m.session.Reference())
	if len(reference) == 0 {
		return ""
	}
	typed := []rune(m.session.Typed())
	cursor := -1
	if len(typed) < len(reference) {
		cursor = len(typed)
	}
	cells := styleCells(reference, typed, cursor)
	if m.width == 0 || m.height == 0 {
		return joinCells(cells)
	}
	contentWidth := max(1, int(float64(m.width)*0.70))
	lines, cursorLine := wrapCells(cells, contentWidth, cursor)
	body := strings.Join(visibleLines(lines, cursorLine, maxPromptLines), "\n")
	header := timerStyle.Render(fmt.Sprintf("%d", m.session.Remaining(m.now())))
	if m.prompt.Author != "" {
		body += "\n\n" + footerStyle.Render("- "+m.prompt.Author)
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(header + "\n\n" + body)
	return m.place(content, m.renderFooter())
}

func (m *Model) place(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footerStyle.Render(footer))
	return body + "\n" + footerLine
}

func (m *Model) renderResult() string {
	r := m.result
	lines := []string{
		headingStyle.Render(fmt.Sprintf("%.2f WPM", r.WPM)),
		"",
		fmt.Sprintf("Raw       %.2f", r.RawWPM),
		fmt.Sprintf("Accuracy  %.2f%%", r.Accuracy),
		fmt.Sprintf("Consistency %.2f%%", r.Consistency),
		fmt.Sprintf("Errors    %d", r.Errors),
		fmt.Sprintf("Chars     %d/%d", r.CorrectChars, r.TotalChars),
	}
	if r.ActualDurationSeconds != nil {
		lines = append(lines, fmt.Sprintf("Time      %.1fs of %ds", *r.ActualDurationSeconds, r.DurationSeconds))
	}
	if m.status != "" {
		lines = append(lines, "", m.status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	reference := []rune(m.session.Reference())
	if len(reference) == 0 {
		return ""
	}
	now := m.now()
	progress := len([]rune(m.session.Typed())) * 100 / len(reference)
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.session.State() == session.Running {
		sum := m.session.Summary(now)
		segments = append(segments, fmt.Sprintf("%.0f WPM", metrics.Round2(sum.NetWPM)))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
	}
	if m.bestWPM > 0 {
		segments = append(segments, fmt.Sprintf("Best %.1f WPM", m.bestWPM))
	}
	segments = append(segments, "Esc restart")
	return strings.Join(segments, "  ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
