// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	tipStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

var bandColors = map[stats.Band]lipgloss.Color{
	stats.BandExcellent: lipgloss.Color("#52C41A"),
	stats.BandGood:      lipgloss.Color("#C89A3A"),
	stats.BandNeedsWork: lipgloss.Color("#FF4D4F"),
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src stats.ResultLister
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	history   table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model and loads the first report.
func NewModel(src stats.ResultLister, cfg model.StatsConfig) *Model {
	m := &Model{
		src:      src,
		cfg:      cfg,
		tabs:     []string{"Overview", "History"},
		overview: viewport.New(0, 0),
		history:  buildHistoryTable(nil, 0, 1),
	}
	m.refreshReport()
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
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.history.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.history.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabHistory {
			m.history, cmd = m.history.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.history.SetWidth(m.width)
	m.history.SetHeight(max(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabHistory {
		m.history.Focus()
	} else {
		m.history.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabHistory {
		if len(m.report.Results) == 0 {
			return "No results found."
		}
		return tableMutedStyle.Render(m.history.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render(truncateLine("Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q", m.width))
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return help
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.history.SetRows(historyRows(report.Results))
	m.history.GotoTop()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report.Dashboard, width))
}

func renderOverview(d stats.Dashboard, width int) string {
	if !d.HasRecent {
		return "No saved sessions yet.\n\n" + tipStyle.Render(d.CoachingTip)
	}
	cards := []string{
		metricCard("Avg WPM", fmt.Sprintf("%.1f (%s)", d.AverageWPM, stats.FormatDelta(d.WPMDelta, "")), d.WPMBand),
		metricCard("Avg Accuracy", fmt.Sprintf("%.1f%% (%s)", d.AverageAccuracy, stats.FormatDelta(d.AccuracyDelta, "%")), d.AccuracyBand),
		metricCard("Best WPM", fmt.Sprintf("%.1f", d.BestWPM), ""),
		metricCard("Consistency", fmt.Sprintf("%.1f%%", d.AverageConsistency), ""),
		metricCard("Streak", fmt.Sprintf("%d day(s)", d.StreakDays), ""),
		metricCard("Level", d.Level, ""),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	lines := []string{
		summary,
		"",
		cardTitleStyle.Render("Trend ") + stats.Sparkline(d.Sparkline),
		cardTitleStyle.Render("Bottleneck ") + d.Bottleneck,
		"",
		tipStyle.Render(d.CoachingTip),
	}
	for i, step := range d.Plan {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string, band stats.Band) string {
	title := label
	if band != "" {
		title = label + " " + lipgloss.NewStyle().Foreground(bandColors[band]).Render(band.Label())
	}
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(title), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func historyColumns() []table.Column {
	widths := []int{16, 5, 6, 6, 6, 9, 11, 6}
	cols := make([]table.Column, len(stats.HistoryHeaders))
	for i, title := range stats.HistoryHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func historyRows(results []model.Result) []table.Row {
	cells := stats.HistoryRows(results)
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		rows[i] = table.Row(row)
	}
	return rows
}

func buildHistoryTable(results []model.Result, width, height int) table.Model {
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithRows(historyRows(results)),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(historyTableStyles())
	return t
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
