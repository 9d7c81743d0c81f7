package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verte-zerg/typeforge/internal/model"
)

// SeedWords inserts words for lang, skipping ones already present. It returns
// the number of new rows.
func (s *Store) SeedWords(ctx context.Context, lang string, words []string) (inserted int, err error) {
	if len(words) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO words (value, lang) VALUES (?, ?) ON CONFLICT (value, lang) DO NOTHING`))
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, w := range words {
		res, err := stmt.ExecContext(ctx, w, lang)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Words returns every stored word for lang.
func (s *Store) Words(ctx context.Context, lang string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT value FROM words WHERE lang = ? ORDER BY value`), lang)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// SeedQuotes inserts quotes, skipping duplicates by content.
func (s *Store) SeedQuotes(ctx context.Context, quotes []model.Quote) (inserted int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()
	for _, q := range quotes {
		res, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO quotes (content, author) VALUES (?, ?) ON CONFLICT (content) DO NOTHING`), q.Content, q.Author)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// RandomQuote returns one stored quote, or ErrNotFound when none exist.
func (s *Store) RandomQuote(ctx context.Context) (model.Quote, error) {
	var q model.Quote
	err := s.db.QueryRowContext(ctx, `SELECT content, author FROM quotes ORDER BY RANDOM() LIMIT 1`).Scan(&q.Content, &q.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quote{}, fmt.Errorf("quote: %w", ErrNotFound)
	}
	return q, err
}
