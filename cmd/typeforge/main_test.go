package main

import (
	"testing"

	"github.com/verte-zerg/typeforge/internal/config"
	"github.com/verte-zerg/typeforge/internal/model"
)

func TestLocalEmail(t *testing.T) {
	cases := map[string]string{
		"Ada":              "ada@localhost",
		"  Grace  Hopper ": "grace.hopper@localhost",
		"":                 "player@localhost",
	}
	for in, want := range cases {
		if got := localEmail(in); got != want {
			t.Fatalf("localEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPracticeFlagsOverrideOnlyWhenChanged(t *testing.T) {
	cmd := newPracticeCmd()
	if err := cmd.ParseFlags([]string{"--duration", "30", "--source", "Quote"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	p := config.Practice{Name: "file", DurationSeconds: 60, Source: model.TextSourceWords, Words: 50}
	applyPracticeFlags(cmd, &p)
	if p.DurationSeconds != 30 || p.Source != model.TextSourceQuote {
		t.Fatalf("expected changed flags to apply, got %+v", p)
	}
	if p.Name != "file" || p.Words != 50 {
		t.Fatalf("expected unchanged flags to keep settings, got %+v", p)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		if _, err := newLogger(format, false); err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
	}
	if _, err := newLogger("xml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"practice"},
		{"serve"},
		{"stats"},
		{"leaderboard"},
		{"config"},
		{"words", "import"},
		{"words", "seed"},
		{"admin", "flag"},
		{"admin", "flags"},
		{"admin", "premium"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Fatalf("missing command %v: %v", path, err)
		}
	}
}

func TestRandomSecret(t *testing.T) {
	a, err := randomSecret()
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	b, err := randomSecret()
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected secrets %q %q", a, b)
	}
}
