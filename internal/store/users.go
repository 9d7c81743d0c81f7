package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeforge/internal/model"
)

const userColumns = `id, email, name, password_hash, subscription, created_at`

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var sub, createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &sub, &createdAt); err != nil {
		return model.User{}, err
	}
	u.Subscription = model.SubscriptionStatus(sub)
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = parsed
	return u, nil
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user. A missing id is generated; a duplicate email
// returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Email == "" {
		return model.User{}, errors.New("email is required")
	}
	if u.Subscription == "" {
		u.Subscription = model.SubscriptionNone
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, email, name, password_hash, subscription, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`),
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Subscription), formatTime(u.CreatedAt),
	)
	if err != nil {
		return model.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.User{}, err
	}
	if n == 0 {
		return model.User{}, fmt.Errorf("user %s: %w", u.Email, ErrConflict)
	}
	return s.UserByID(ctx, u.ID)
}

// EnsureUser returns the user with email, creating it with name if missing.
func (s *Store) EnsureUser(ctx context.Context, email, name string) (model.User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	u, err = s.CreateUser(ctx, model.User{Email: email, Name: name})
	if errors.Is(err, ErrConflict) {
		// Lost a race with a concurrent creator.
		return s.UserByEmail(ctx, email)
	}
	return u, err
}

// UserByID loads a user by id.
func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

// UserByEmail loads a user by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	email = NormalizeEmail(email)
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return u, err
}

// SetSubscription updates a user's subscription status.
func (s *Store) SetSubscription(ctx context.Context, email string, status model.SubscriptionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid subscription status %q", status)
	}
	email = NormalizeEmail(email)
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE users SET subscription = ? WHERE email = ?`), string(status), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return nil
}

// Follow records that follower follows following. Repeating it is a no-op.
func (s *Store) Follow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`),
		followerID, followingID, formatTime(time.Now()),
	)
	return err
}

// Unfollow removes a follow if present.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`), followerID, followingID)
	return err
}

// FollowingIDs returns the ids a user follows.
func (s *Store) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT following_id FROM follows WHERE follower_id = ? ORDER BY created_at ASC`), userID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UserSummary is a user with their stored result count.
type UserSummary struct {
	model.User
	Results int
}

// ListUsers returns the newest users first, up to limit (default 200).
func (s *Store) ListUsers(ctx context.Context, limit int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT u.id, u.email, u.name, u.password_hash, u.subscription, u.created_at,
		        (SELECT COUNT(*) FROM results r WHERE r.user_id = u.id)
		 FROM users u
		 ORDER BY u.created_at DESC, u.id DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []UserSummary
	for rows.Next() {
		var sum UserSummary
		var sub, createdAt string
		if err := rows.Scan(&sum.ID, &sum.Email, &sum.Name, &sum.PasswordHash, &sub, &createdAt, &sum.Results); err != nil {
			return nil, err
		}
		sum.Subscription = model.SubscriptionStatus(sub)
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
