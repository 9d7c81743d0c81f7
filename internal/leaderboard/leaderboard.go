// Package leaderboard ranks stored results into a best-per-player view.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/typeforge/internal/model"
)

const (
	// MaxEntries caps the ranked output.
	MaxEntries = 100
	// PoolLimit caps the candidate rows read before deduplication.
	PoolLimit = 500
)

const (
	SignInMessage  = "Sign in to view friends leaderboard."
	PremiumMessage = "Friends leaderboard is a premium feature."
)

// Less orders results best first: higher WPM, then higher accuracy, then the
// earlier result.
func Less(a, b model.Result) bool {
	if a.WPM != b.WPM {
		return a.WPM > b.WPM
	}
	if a.Accuracy != b.Accuracy {
		return a.Accuracy > b.Accuracy
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// IdentityKey groups results by player. Results without an owner are keyed
// by display name, falling back to the result id.
func IdentityKey(r model.Result) string {
	if r.UserID != "" {
		return r.UserID
	}
	if r.DisplayName != "" {
		return "guest:" + r.DisplayName
	}
	return "guest:" + r.ID
}

// EntryName picks the name shown for a ranked result.
func EntryName(r model.Result) string {
	switch {
	case r.DisplayName != "":
		return r.DisplayName
	case r.UserName != "":
		return r.UserName
	case r.UserEmail != "":
		return r.UserEmail
	default:
		return "Anonymous"
	}
}

// Rank sorts the pool, keeps the first (best) result per identity and returns
// at most limit entries with 1-based ranks. The input slice is not modified.
func Rank(pool []model.Result, limit int) []model.LeaderboardEntry {
	if limit <= 0 {
		return []model.LeaderboardEntry{}
	}
	sorted := make([]model.Result, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	seen := make(map[string]struct{}, len(sorted))
	entries := make([]model.LeaderboardEntry, 0, min(limit, len(sorted)))
	for _, r := range sorted {
		if len(entries) >= limit {
			break
		}
		key := IdentityKey(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, model.LeaderboardEntry{
			Rank:        len(entries) + 1,
			Name:        EntryName(r),
			WPM:         r.WPM,
			RawWPM:      r.RawWPM,
			Accuracy:    r.Accuracy,
			Consistency: r.Consistency,
			Errors:      r.Errors,
			CreatedAt:   r.CreatedAt,
		})
	}
	return entries
}

// WindowStart returns the inclusive lower bound for w. ok is false for the
// all-time window.
func WindowStart(w model.Window, now time.Time) (start time.Time, ok bool) {
	switch w {
	case model.WindowDaily:
		return now.AddDate(0, 0, -1), true
	case model.WindowWeekly:
		return now.AddDate(0, 0, -7), true
	default:
		return time.Time{}, false
	}
}

// ValidateQuery checks every field of q.
func ValidateQuery(q model.LeaderboardQuery) error {
	if q.Mode == "" || len(q.Mode) > 30 {
		return fmt.Errorf("invalid mode %q", q.Mode)
	}
	if !model.ValidDuration(q.DurationSeconds) {
		return fmt.Errorf("invalid duration %d (want one of %v)", q.DurationSeconds, model.Durations)
	}
	if !q.TextSource.Valid() {
		return fmt.Errorf("invalid text source %q", q.TextSource)
	}
	if !q.Window.Valid() {
		return fmt.Errorf("invalid window %q", q.Window)
	}
	if !q.Scope.Valid() {
		return fmt.Errorf("invalid scope %q", q.Scope)
	}
	return nil
}

// Store reads the candidate pool and the follow graph.
type Store interface {
	LeaderboardPool(ctx context.Context, f model.PoolFilter) ([]model.Result, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// Board is a ranked list. Message explains an intentionally empty list.
type Board struct {
	Entries []model.LeaderboardEntry `json:"entries"`
	Message string                   `json:"message,omitempty"`
}

// Service answers leaderboard queries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a Service reading from store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetClock overrides the clock used for window bounds.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Fetch builds the leaderboard for q as seen by identity (nil for guests).
// A friends query from a guest or a non-premium player yields an empty board
// with a message rather than an error.
func (s *Service) Fetch(ctx context.Context, identity *model.Identity, q model.LeaderboardQuery) (Board, error) {
	if err := ValidateQuery(q); err != nil {
		return Board{}, err
	}
	filter := model.PoolFilter{
		Mode:            q.Mode,
		DurationSeconds: q.DurationSeconds,
		TextSource:      q.TextSource,
		Limit:           PoolLimit,
	}
	if start, ok := WindowStart(q.Window, s.now().UTC()); ok {
		filter.Since = start
	}

	if q.Scope == model.ScopeFriends {
		if identity == nil || identity.UserID == "" {
			return Board{Entries: []model.LeaderboardEntry{}, Message: SignInMessage}, nil
		}
		if !identity.Premium() {
			return Board{Entries: []model.LeaderboardEntry{}, Message: PremiumMessage}, nil
		}
		following, err := s.store.FollowingIDs(ctx, identity.UserID)
		if err != nil {
			return Board{}, fmt.Errorf("load follows: %w", err)
		}
		filter.RestrictUsers = true
		filter.UserIDs = append(following, identity.UserID)
	}

	pool, err := s.store.LeaderboardPool(ctx, filter)
	if err != nil {
		return Board{}, fmt.Errorf("load leaderboard pool: %w", err)
	}
	return Board{Entries: Rank(pool, MaxEntries)}, nil
}
