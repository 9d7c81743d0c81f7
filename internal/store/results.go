package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/typeforge/internal/model"
)

const resultColumns = `r.id, COALESCE(r.user_id, ''), r.display_name, r.mode, r.duration_seconds, r.text_source,
	r.wpm, r.raw_wpm, r.accuracy, r.errors, r.correct_chars, r.incorrect_chars, r.total_chars,
	r.consistency, r.input_history, r.flagged, r.created_at, COALESCE(u.name, ''), COALESCE(u.email, '')`

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (model.Result, error) {
	var r model.Result
	var source, history, createdAt string
	var flagged int
	if err := row.Scan(&r.ID, &r.UserID, &r.DisplayName, &r.Mode, &r.DurationSeconds, &source,
		&r.WPM, &r.RawWPM, &r.Accuracy, &r.Errors, &r.CorrectChars, &r.IncorrectChars, &r.TotalChars,
		&r.Consistency, &history, &flagged, &createdAt, &r.UserName, &r.UserEmail); err != nil {
		return model.Result{}, err
	}
	r.TextSource = model.TextSource(source)
	r.Flagged = flagged != 0
	if history != "" {
		if err := json.Unmarshal([]byte(history), &r.InputHistory); err != nil {
			return model.Result{}, fmt.Errorf("decode input history for %s: %w", r.ID, err)
		}
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.Result{}, err
	}
	r.CreatedAt = parsed
	return r, nil
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]model.Result, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveResult stores r once. Saving an existing id returns the stored row;
// ErrConflict is returned when that row belongs to someone else and ErrRemoved
// when moderation deleted it.
func (s *Store) SaveResult(ctx context.Context, r model.Result) (model.Result, error) {
	if r.ID == "" {
		r.ID = ulid.Make().String()
	} else {
		removed, err := s.removedByModeration(ctx, r.ID)
		if err != nil {
			return model.Result{}, err
		}
		if removed {
			return model.Result{}, fmt.Errorf("result %s: %w", r.ID, ErrRemoved)
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	history := ""
	if len(r.InputHistory) > 0 {
		data, err := json.Marshal(r.InputHistory)
		if err != nil {
			return model.Result{}, err
		}
		history = string(data)
	}
	flagged := 0
	if r.Flagged {
		flagged = 1
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO results (id, user_id, display_name, mode, duration_seconds, text_source, wpm, raw_wpm, accuracy,
			errors, correct_chars, incorrect_chars, total_chars, consistency, input_history, flagged, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		r.ID,
		nullable(r.UserID),
		r.DisplayName,
		r.Mode,
		r.DurationSeconds,
		string(r.TextSource),
		r.WPM,
		r.RawWPM,
		r.Accuracy,
		r.Errors,
		r.CorrectChars,
		r.IncorrectChars,
		r.TotalChars,
		r.Consistency,
		history,
		flagged,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return model.Result{}, err
	}
	stored, err := s.GetResult(ctx, r.ID)
	if err != nil {
		return model.Result{}, err
	}
	if stored.UserID != r.UserID {
		return model.Result{}, fmt.Errorf("result %s: %w", r.ID, ErrConflict)
	}
	return stored, nil
}

// removedByModeration reports whether id was flagged and its row deleted.
func (s *Store) removedByModeration(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM result_flags f
		 WHERE f.result_id = ? AND NOT EXISTS (SELECT 1 FROM results r WHERE r.id = f.result_id)`), id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetResult loads one result.
func (s *Store) GetResult(ctx context.Context, id string) (model.Result, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+resultColumns+`
		FROM results r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.id = ?`), id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, fmt.Errorf("result %s: %w", id, ErrNotFound)
	}
	return r, err
}

// ListUserResults returns a user's results, newest first.
func (s *Store) ListUserResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error) {
	if cfg.UserID == "" {
		return nil, nil
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 50
	}
	return s.queryResults(ctx, `SELECT `+resultColumns+`
		FROM results r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, cfg.UserID, limit)
}

// ExportUserResults returns every result of a user, oldest first.
func (s *Store) ExportUserResults(ctx context.Context, userID string) ([]model.Result, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+`
		FROM results r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.user_id = ?
		ORDER BY r.created_at ASC, r.id ASC`, userID)
}

// LeaderboardPool returns unflagged candidate results, best first.
func (s *Store) LeaderboardPool(ctx context.Context, f model.PoolFilter) ([]model.Result, error) {
	if f.RestrictUsers && len(f.UserIDs) == 0 {
		return nil, nil
	}
	clauses := []string{"r.flagged = 0", "r.mode = ?", "r.duration_seconds = ?", "r.text_source = ?"}
	args := []any{f.Mode, f.DurationSeconds, string(f.TextSource)}
	if !f.Since.IsZero() {
		clauses = append(clauses, "r.created_at >= ?")
		args = append(args, formatTime(f.Since))
	}
	if f.RestrictUsers {
		clauses = append(clauses, fmt.Sprintf("r.user_id IN (%s)", placeholders(len(f.UserIDs))))
		for _, id := range f.UserIDs {
			args = append(args, id)
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s
		FROM results r LEFT JOIN users u ON u.id = r.user_id
		WHERE %s
		ORDER BY r.wpm DESC, r.accuracy DESC, r.created_at ASC
		LIMIT ?`, resultColumns, strings.Join(clauses, " AND "))
	return s.queryResults(ctx, query, args...)
}

// FlagResult records a moderation flag and either hides or deletes the result,
// in one transaction.
func (s *Store) FlagResult(ctx context.Context, resultID, reason string, remove bool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	if _, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO result_flags (id, result_id, reason, created_at) VALUES (?, ?, ?, ?)`),
		ulid.Make().String(), resultID, reason, formatTime(time.Now()),
	); err != nil {
		return err
	}

	stmt := `UPDATE results SET flagged = 1 WHERE id = ?`
	if remove {
		stmt = `DELETE FROM results WHERE id = ?`
	}
	res, err := tx.ExecContext(ctx, s.rebind(stmt), resultID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("result %s: %w", resultID, ErrNotFound)
		return err
	}
	return tx.Commit()
}

// Flag is a moderation record.
type Flag struct {
	ID        string
	ResultID  string
	Reason    string
	CreatedAt time.Time
}

// ListFlags returns moderation records for a result, oldest first.
func (s *Store) ListFlags(ctx context.Context, resultID string) ([]Flag, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, result_id, reason, created_at FROM result_flags WHERE result_id = ? ORDER BY created_at ASC`), resultID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var flags []Flag
	for rows.Next() {
		var f Flag
		var createdAt string
		if err := rows.Scan(&f.ID, &f.ResultID, &f.Reason, &createdAt); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}
