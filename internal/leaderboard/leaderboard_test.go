package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/typeforge/internal/model"
)

var base = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func result(id, user string, wpm, acc float64, offset time.Duration) model.Result {
	return model.Result{
		ID:        id,
		UserID:    user,
		WPM:       wpm,
		RawWPM:    wpm + 2,
		Accuracy:  acc,
		CreatedAt: base.Add(offset),
	}
}

func TestRankKeepsBestPerIdentity(t *testing.T) {
	pool := []model.Result{
		result("r1", "A", 90, 97, 0),
		result("r2", "A", 95, 96, time.Minute),
		result("r3", "B", 80, 99, 2*time.Minute),
	}
	pool[1].DisplayName = "A"
	pool[2].DisplayName = "B"

	entries := Rank(pool, MaxEntries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[0].Name != "A" || entries[0].WPM != 95 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Rank != 2 || entries[1].Name != "B" || entries[1].WPM != 80 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestRankTieBreaks(t *testing.T) {
	pool := []model.Result{
		result("late", "C", 70, 95, 2*time.Hour),
		result("acc", "B", 70, 98, time.Hour),
		result("early", "A", 70, 95, 0),
	}
	entries := Rank(pool, MaxEntries)
	got := []time.Time{entries[0].CreatedAt, entries[1].CreatedAt, entries[2].CreatedAt}
	want := []time.Time{base.Add(time.Hour), base, base.Add(2 * time.Hour)}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	pool := []model.Result{
		result("r1", "A", 50, 90, 0),
		result("r2", "B", 60, 90, 0),
	}
	Rank(pool, MaxEntries)
	if pool[0].ID != "r1" {
		t.Fatalf("input reordered")
	}
}

func TestRankLimit(t *testing.T) {
	var pool []model.Result
	for i := 0; i < 150; i++ {
		pool = append(pool, result("r", string(rune('a'+i%26))+string(rune('A'+i/26)), float64(200-i), 95, 0))
	}
	entries := Rank(pool, MaxEntries)
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[99].Rank != 100 {
		t.Fatalf("expected last rank 100, got %d", entries[99].Rank)
	}
	if got := Rank(pool, 0); len(got) != 0 {
		t.Fatalf("expected no entries for zero limit")
	}
}

func TestIdentityKey(t *testing.T) {
	cases := []struct {
		r    model.Result
		want string
	}{
		{model.Result{ID: "r1", UserID: "u1", DisplayName: "Ada"}, "u1"},
		{model.Result{ID: "r2", DisplayName: "Ada"}, "guest:Ada"},
		{model.Result{ID: "r3"}, "guest:r3"},
	}
	for _, tc := range cases {
		if got := IdentityKey(tc.r); got != tc.want {
			t.Fatalf("IdentityKey(%+v) = %q, want %q", tc.r, got, tc.want)
		}
	}
}

func TestGuestsWithoutNameRankSeparately(t *testing.T) {
	pool := []model.Result{
		result("g1", "", 60, 95, 0),
		result("g2", "", 55, 95, 0),
	}
	entries := Rank(pool, MaxEntries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Anonymous" {
		t.Fatalf("expected Anonymous, got %q", entries[0].Name)
	}
}

func TestEntryNameFallbacks(t *testing.T) {
	r := model.Result{UserName: "Ada", UserEmail: "ada@example.com"}
	if got := EntryName(r); got != "Ada" {
		t.Fatalf("expected user name, got %q", got)
	}
	r.UserName = ""
	if got := EntryName(r); got != "ada@example.com" {
		t.Fatalf("expected email, got %q", got)
	}
	r.DisplayName = "Lovelace"
	if got := EntryName(r); got != "Lovelace" {
		t.Fatalf("expected display name, got %q", got)
	}
}

func TestWindowStart(t *testing.T) {
	if got, ok := WindowStart(model.WindowDaily, base); !ok || !got.Equal(base.Add(-24*time.Hour)) {
		t.Fatalf("unexpected daily start %v", got)
	}
	if got, ok := WindowStart(model.WindowWeekly, base); !ok || !got.Equal(base.Add(-7*24*time.Hour)) {
		t.Fatalf("unexpected weekly start %v", got)
	}
	if _, ok := WindowStart(model.WindowAll, base); ok {
		t.Fatalf("all-time window must be unbounded")
	}
}

type fakeStore struct {
	pool      []model.Result
	following map[string][]string
	filters   []model.PoolFilter
	err       error
}

func (f *fakeStore) LeaderboardPool(_ context.Context, filter model.PoolFilter) ([]model.Result, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	if !filter.RestrictUsers {
		return f.pool, nil
	}
	allowed := map[string]bool{}
	for _, id := range filter.UserIDs {
		allowed[id] = true
	}
	var out []model.Result
	for _, r := range f.pool {
		if allowed[r.UserID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	return f.following[userID], nil
}

func friendsQuery() model.LeaderboardQuery {
	q := model.DefaultLeaderboardQuery()
	q.Scope = model.ScopeFriends
	return q
}

func TestFetchFriendsAsGuest(t *testing.T) {
	store := &fakeStore{}
	board, err := NewService(store).Fetch(context.Background(), nil, friendsQuery())
	if err != nil {
		t.Fatalf("guest friends query must not fail: %v", err)
	}
	if board.Entries == nil || len(board.Entries) != 0 || board.Message != SignInMessage {
		t.Fatalf("unexpected board: %+v", board)
	}
	if len(store.filters) != 0 {
		t.Fatalf("guest friends query must not hit the store")
	}
}

func TestFetchFriendsRequiresPremium(t *testing.T) {
	id := &model.Identity{UserID: "u1", Subscription: model.SubscriptionCanceled}
	board, err := NewService(&fakeStore{}).Fetch(context.Background(), id, friendsQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Entries) != 0 || board.Message != PremiumMessage {
		t.Fatalf("unexpected board: %+v", board)
	}
}

func TestFetchFriendsIncludesSelfAndFollowing(t *testing.T) {
	store := &fakeStore{
		pool: []model.Result{
			result("r1", "me", 70, 96, 0),
			result("r2", "pal", 80, 96, 0),
			result("r3", "stranger", 120, 99, 0),
		},
		following: map[string][]string{"me": {"pal"}},
	}
	id := &model.Identity{UserID: "me", Subscription: model.SubscriptionTrialing}
	board, err := NewService(store).Fetch(context.Background(), id, friendsQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Entries) != 2 || board.Entries[0].WPM != 80 || board.Entries[1].WPM != 70 {
		t.Fatalf("unexpected entries: %+v", board.Entries)
	}
}

func TestFetchAppliesWindowAndPoolLimit(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	svc.SetClock(func() time.Time { return base })
	q := model.DefaultLeaderboardQuery()
	if _, err := svc.Fetch(context.Background(), nil, q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := store.filters[0]
	if f.Limit != PoolLimit || f.RestrictUsers {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if !f.Since.Equal(base.AddDate(0, 0, -7)) {
		t.Fatalf("expected weekly bound, got %v", f.Since)
	}

	q.Window = model.WindowAll
	if _, err := svc.Fetch(context.Background(), nil, q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.filters[1].Since.IsZero() {
		t.Fatalf("expected no lower bound for all-time, got %v", store.filters[1].Since)
	}
}

func TestFetchRejectsInvalidQuery(t *testing.T) {
	q := model.DefaultLeaderboardQuery()
	q.DurationSeconds = 45
	if _, err := NewService(&fakeStore{}).Fetch(context.Background(), nil, q); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestFetchWrapsStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	_, err := NewService(store).Fetch(context.Background(), nil, model.DefaultLeaderboardQuery())
	if !errors.Is(err, store.err) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
