package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/typeforge/internal/model"
)

// ResultLister loads a player's results, newest first.
type ResultLister interface {
	ListUserResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results   []model.Result
	Dashboard Dashboard
}

// BuildReport loads history for cfg.UserID and computes the dashboard.
func BuildReport(ctx context.Context, src ResultLister, cfg model.StatsConfig) (Report, error) {
	if cfg.Limit <= 0 || cfg.Limit > HistoryLimit {
		cfg.Limit = HistoryLimit
	}
	results, err := src.ListUserResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{Results: results, Dashboard: BuildDashboard(results)}, nil
}

// RenderSummary prints the dashboard cards as text.
func RenderSummary(w io.Writer, d Dashboard) error {
	if !d.HasRecent {
		if _, err := fmt.Fprintln(w, "No saved sessions yet."); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, d.CoachingTip)
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", d.Sessions),
		fmt.Sprintf("Avg WPM: %.1f (%s) %s  %s", d.AverageWPM, FormatDelta(d.WPMDelta, ""), d.WPMBand.Label(), Sparkline(d.Sparkline)),
		fmt.Sprintf("Avg Accuracy: %.1f%% (%s) %s", d.AverageAccuracy, FormatDelta(d.AccuracyDelta, "%"), d.AccuracyBand.Label()),
		fmt.Sprintf("Best WPM: %.1f  Best Accuracy: %.1f%%", d.BestWPM, d.BestAccuracy),
		fmt.Sprintf("Consistency: %.1f%%  Errors: %.1f", d.AverageConsistency, d.AverageErrors),
		fmt.Sprintf("Streak: %d day(s)  Level: %s", d.StreakDays, d.Level),
		fmt.Sprintf("Bottleneck: %s", d.Bottleneck),
		"",
		d.CoachingTip,
	}
	for i, step := range d.Plan {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// HistoryRows formats results as table cells.
func HistoryRows(results []model.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%ds", r.DurationSeconds),
			string(r.TextSource),
			fmt.Sprintf("%.1f", r.WPM),
			fmt.Sprintf("%.1f", r.RawWPM),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			fmt.Sprintf("%.1f%%", r.Consistency),
			strconv.Itoa(r.Errors),
		})
	}
	return rows
}

// HistoryHeaders names the HistoryRows columns.
var HistoryHeaders = []string{"When", "Time", "Source", "WPM", "Raw", "Accuracy", "Consistency", "Errors"}

// RenderHistory prints a results table.
func RenderHistory(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(HistoryHeaders, HistoryRows(results), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints ranked entries. Names are truncated so each line
// fits in width columns when width is positive.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries yet.")
		return err
	}
	headers := []string{"#", "Name", "WPM", "Raw", "Accuracy", "Consistency", "Errors"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Name,
			fmt.Sprintf("%.2f", e.WPM),
			fmt.Sprintf("%.2f", e.RawWPM),
			fmt.Sprintf("%.2f%%", e.Accuracy),
			fmt.Sprintf("%.2f%%", e.Consistency),
			strconv.Itoa(e.Errors),
		})
	}
	if width > 0 {
		// Everything except the name column, plus separators.
		fixed := 0
		for col := range headers {
			if col == 1 {
				continue
			}
			colWidth := len(headers[col])
			for _, row := range rows {
				colWidth = max(colWidth, len(row[col]))
			}
			fixed += colWidth + 1
		}
		for _, row := range rows {
			row[1] = truncateCell(row[1], max(4, width-fixed))
		}
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ExportHeader names the WriteCSV columns.
var ExportHeader = []string{"id", "createdAt", "mode", "durationSeconds", "textSource", "wpm", "rawWpm", "accuracy", "errors", "consistency"}

// WriteCSV writes results as CSV with a header row, in the given order.
func WriteCSV(w io.Writer, results []model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.ID,
			r.CreatedAt.UTC().Format(time.RFC3339Nano),
			r.Mode,
			strconv.Itoa(r.DurationSeconds),
			string(r.TextSource),
			formatFloat(r.WPM),
			formatFloat(r.RawWPM),
			formatFloat(r.Accuracy),
			strconv.Itoa(r.Errors),
			formatFloat(r.Consistency),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
