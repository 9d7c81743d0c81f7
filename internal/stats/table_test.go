package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Name", "WPM", "Errors"}
	rows := [][]string{
		{"ada", "97.50", "12"},
		{"grace hopper", "8.00", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Name           WPM Errors" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "ada          97.50     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "grace hopper  8.00      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "WPM"}, [][]string{{"日本", "60"}, {"ab", "7"}}, map[int]bool{1: true})
	if lines[1] != "日本  60" || lines[2] != "ab     7" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestTruncateCell(t *testing.T) {
	if got := truncateCell("leaderboard", 6); got != "leade…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateCell("short", 10); got != "short" {
		t.Fatalf("expected unchanged value, got %q", got)
	}
}
