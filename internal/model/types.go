// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMode is the only test mode the client currently produces.
const DefaultMode = "standard"

// DefaultDurationSeconds is the session length used when none is chosen.
const DefaultDurationSeconds = 60

// Durations lists the allowed session lengths in seconds.
var Durations = []int{15, 30, 60, 120}

// ValidDuration reports whether seconds is one of Durations.
func ValidDuration(seconds int) bool {
	for _, d := range Durations {
		if d == seconds {
			return true
		}
	}
	return false
}

// TextSource selects where a prompt comes from.
type TextSource string

const (
	TextSourceWords TextSource = "words"
	TextSourceQuote TextSource = "quote"
)

// Valid reports whether s is a known text source.
func (s TextSource) Valid() bool {
	switch s {
	case TextSourceWords, TextSourceQuote:
		return true
	default:
		return false
	}
}

// ParseTextSource parses a text source name.
func ParseTextSource(v string) (TextSource, error) {
	s := TextSource(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown text source %q (want words or quote)", v)
	}
	return s, nil
}

// Window bounds a leaderboard query in time.
type Window string

const (
	WindowDaily  Window = "daily"
	WindowWeekly Window = "weekly"
	WindowAll    Window = "all"
)

// Valid reports whether w is a known window.
func (w Window) Valid() bool {
	switch w {
	case WindowDaily, WindowWeekly, WindowAll:
		return true
	default:
		return false
	}
}

// ParseWindow parses a leaderboard window name.
func ParseWindow(v string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(v)))
	if !w.Valid() {
		return "", fmt.Errorf("unknown window %q (want daily, weekly or all)", v)
	}
	return w, nil
}

// Scope restricts the identities a leaderboard considers.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeFriends Scope = "friends"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeFriends:
		return true
	default:
		return false
	}
}

// ParseScope parses a leaderboard scope name.
func ParseScope(v string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown scope %q (want global or friends)", v)
	}
	return s, nil
}

// SubscriptionStatus mirrors the billing provider's subscription state.
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = "none"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionNone, SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue, SubscriptionCanceled:
		return true
	default:
		return false
	}
}

// Premium reports whether the status unlocks premium features.
func (s SubscriptionStatus) Premium() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// ParseSubscriptionStatus parses a subscription status name.
func ParseSubscriptionStatus(v string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown subscription status %q", v)
	}
	return s, nil
}

// ResultPayload is the summary a client submits when a session finishes.
type ResultPayload struct {
	// ID is optional and client-assigned so a retried submission stores once.
	ID                    string     `json:"id,omitempty"`
	Mode                  string     `json:"mode"`
	DurationSeconds       int        `json:"durationSeconds"`
	TextSource            TextSource `json:"textSource"`
	WPM                   float64    `json:"wpm"`
	RawWPM                float64    `json:"rawWpm"`
	Accuracy              float64    `json:"accuracy"`
	Errors                int        `json:"errors"`
	CorrectChars          int        `json:"correctChars"`
	IncorrectChars        int        `json:"incorrectChars"`
	TotalChars            int        `json:"totalChars"`
	Consistency           float64    `json:"consistency"`
	ActualDurationSeconds *float64   `json:"actualDurationSeconds,omitempty"`
	InputHistory          []float64  `json:"inputHistory,omitempty"`
}

// Result is a validated, persisted typing result.
type Result struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId,omitempty"`
	DisplayName     string     `json:"displayName,omitempty"`
	Mode            string     `json:"mode"`
	DurationSeconds int        `json:"durationSeconds"`
	TextSource      TextSource `json:"textSource"`
	WPM             float64    `json:"wpm"`
	RawWPM          float64    `json:"rawWpm"`
	Accuracy        float64    `json:"accuracy"`
	Errors          int        `json:"errors"`
	CorrectChars    int        `json:"correctChars"`
	IncorrectChars  int        `json:"incorrectChars"`
	TotalChars      int        `json:"totalChars"`
	Consistency     float64    `json:"consistency"`
	InputHistory    []float64  `json:"inputHistory,omitempty"`
	Flagged         bool       `json:"flagged"`
	CreatedAt       time.Time  `json:"createdAt"`

	// Joined from the owning user for display; not stored on the result row.
	UserName  string `json:"-"`
	UserEmail string `json:"-"`
}

// ResultFromPayload builds a storable result. ActualDurationSeconds is dropped.
func ResultFromPayload(p ResultPayload) Result {
	return Result{
		ID:              p.ID,
		Mode:            p.Mode,
		DurationSeconds: p.DurationSeconds,
		TextSource:      p.TextSource,
		WPM:             p.WPM,
		RawWPM:          p.RawWPM,
		Accuracy:        p.Accuracy,
		Errors:          p.Errors,
		CorrectChars:    p.CorrectChars,
		IncorrectChars:  p.IncorrectChars,
		TotalChars:      p.TotalChars,
		Consistency:     p.Consistency,
		InputHistory:    p.InputHistory,
	}
}

// LeaderboardQuery selects the candidate pool for a leaderboard.
type LeaderboardQuery struct {
	Mode            string
	DurationSeconds int
	TextSource      TextSource
	Window          Window
	Scope           Scope
}

// DefaultLeaderboardQuery returns the query used when no parameters are given.
func DefaultLeaderboardQuery() LeaderboardQuery {
	return LeaderboardQuery{
		Mode:            DefaultMode,
		DurationSeconds: DefaultDurationSeconds,
		TextSource:      TextSourceWords,
		Window:          WindowWeekly,
		Scope:           ScopeGlobal,
	}
}

// PoolFilter narrows the leaderboard candidate pool. Flagged results are
// always excluded.
type PoolFilter struct {
	Mode            string
	DurationSeconds int
	TextSource      TextSource
	// Since is inclusive; zero means no lower bound.
	Since time.Time
	// UserIDs restricts the pool to these owners when RestrictUsers is set.
	UserIDs       []string
	RestrictUsers bool
	Limit         int
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	Name        string    `json:"name"`
	WPM         float64   `json:"wpm"`
	RawWPM      float64   `json:"rawWpm"`
	Accuracy    float64   `json:"accuracy"`
	Consistency float64   `json:"consistency"`
	Errors      int       `json:"errors"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Identity is the authenticated caller of a request, if any.
type Identity struct {
	UserID       string
	Name         string
	Email        string
	Subscription SubscriptionStatus
}

// Premium reports whether the identity has premium features.
func (i *Identity) Premium() bool {
	return i != nil && i.Subscription.Premium()
}

// DisplayName returns the name stored alongside results.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return "Typeforge User"
}

// User is a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Subscription SubscriptionStatus
	CreatedAt    time.Time
}

// Identity converts the user to a request identity.
func (u User) Identity() *Identity {
	return &Identity{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Subscription: u.Subscription,
	}
}

// WordList is a player's custom practice vocabulary. Words holds the list as
// entered; wordlist.ParseText splits it into prompt words.
type WordList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Words     string    `json:"words"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quote is a quotation prompt.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID string
	Limit  int
}
