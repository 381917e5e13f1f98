package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cratedig/internal/domain"
	"cratedig/internal/query"
)

// Store reads and writes indexed items
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertItems inserts or refreshes the given items, keyed by path.
// IDs on the input are ignored; the index assigns them.
func (s *Store) UpsertItems(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO items (path, name, tags) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    name = excluded.name,
    tags = excluded.tags,
    updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.Path, item.Name, strings.Join(item.Tags, " ")); err != nil {
			return fmt.Errorf("upsert item %s: %w", item.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// DeleteByPath removes the items with the given paths
func (s *Store) DeleteByPath(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM items WHERE path = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, path := range paths {
		if _, err := stmt.ExecContext(ctx, path); err != nil {
			return fmt.Errorf("delete item %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// SetTags replaces the tag list of one item
func (s *Store) SetTags(ctx context.Context, id int64, tags []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET tags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.Join(tags, " "), id)
	if err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set tags: no item with id %d", id)
	}
	return nil
}

// Search returns items matching expr ordered by path. A nil expr returns
// the whole library.
func (s *Store) Search(ctx context.Context, expr query.Expr) ([]domain.Item, error) {
	// The where clause carries its values escaped inline; tag terms compile
	// to FTS5 subqueries, path terms to LIKE patterns.
	q := fmt.Sprintf(
		`SELECT id, path, name, tags FROM items WHERE %s ORDER BY path`,
		query.ToWhereClause(expr))

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var tags string
		if err := rows.Scan(&item.ID, &item.Path, &item.Name, &tags); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		item.Tags = strings.Fields(tags)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, nil
}

// Count returns the number of indexed items
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
