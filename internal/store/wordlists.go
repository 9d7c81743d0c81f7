package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/typeforge/internal/model"
)

const wordListColumns = `id, user_id, name, words, is_public, created_at`

func scanWordList(row scanner) (model.WordList, error) {
	var (
		l         model.WordList
		public    int
		createdAt string
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Words, &public, &createdAt); err != nil {
		return model.WordList{}, err
	}
	l.IsPublic = public != 0
	t, err := parseTime(createdAt)
	if err != nil {
		return model.WordList{}, err
	}
	l.CreatedAt = t
	return l, nil
}

// CreateWordList stores l under a new id.
func (s *Store) CreateWordList(ctx context.Context, l model.WordList) (model.WordList, error) {
	l.ID = ulid.Make().String()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	public := 0
	if l.IsPublic {
		public = 1
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO word_lists (`+wordListColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		l.ID, l.UserID, l.Name, l.Words, public, formatTime(l.CreatedAt),
	); err != nil {
		return model.WordList{}, err
	}
	return s.WordList(ctx, l.ID)
}

// WordList loads one list by id.
func (s *Store) WordList(ctx context.Context, id string) (model.WordList, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+wordListColumns+` FROM word_lists WHERE id = ?`), id)
	l, err := scanWordList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WordList{}, fmt.Errorf("word list %s: %w", id, ErrNotFound)
	}
	return l, err
}

// ListWordLists returns a user's lists, newest first.
func (s *Store) ListWordLists(ctx context.Context, userID string) ([]model.WordList, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+wordListColumns+` FROM word_lists WHERE user_id = ? ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var lists []model.WordList
	for rows.Next() {
		l, err := scanWordList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}
