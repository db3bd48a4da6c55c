package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps lists in two tables: purchase_lists records list
// existence (an empty list is still a list), purchase_items holds the
// ordered entries. Write replaces a list's rows in one transaction, which
// gives the same "no torn record" guarantee the file backend gets from rename.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an established connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListAll enumerates list keys for a user, default first, rest alphabetic.
func (s *PostgresStore) ListAll(ctx context.Context, userID int64) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT list_key FROM purchase_lists WHERE user_id = $1`, userID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	SortKeys(keys)
	return keys, nil
}

// Read returns the stored items in insertion order; a missing list reads as empty.
func (s *PostgresStore) Read(ctx context.Context, userID int64, key string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item, struck FROM purchase_items
		 WHERE user_id = $1 AND list_key = $2
		 ORDER BY position`, userID, SanitizeKey(key))
	if err != nil {
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Text, &it.Struck); err != nil {
			return nil, &StoreError{Op: "read", Key: key, Err: err}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}
	return items, nil
}

// Write replaces the full item sequence in a single transaction.
func (s *PostgresStore) Write(ctx context.Context, userID int64, key string, items []Item) error {
	k := SanitizeKey(key)
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO purchase_lists (user_id, list_key) VALUES ($1, $2)
		 ON CONFLICT (user_id, list_key) DO NOTHING`, userID, k); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM purchase_items WHERE user_id = $1 AND list_key = $2`, userID, k); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	for pos, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchase_items (user_id, list_key, position, item, struck)
			 VALUES ($1, $2, $3, $4, $5)`, userID, k, pos, it.Text, it.Struck); err != nil {
			return &StoreError{Op: "write", Key: key, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Delete removes the list and its items. The default list is refused with ErrProtected.
func (s *PostgresStore) Delete(ctx context.Context, userID int64, key string) (bool, error) {
	k := SanitizeKey(key)
	if k == DefaultKey {
		return false, ErrProtected
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, &StoreError{Op: "delete", Key: key, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM purchase_items WHERE user_id = $1 AND list_key = $2`, userID, k); err != nil {
		return false, &StoreError{Op: "delete", Key: key, Err: err}
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM purchase_lists WHERE user_id = $1 AND list_key = $2`, userID, k)
	if err != nil {
		return false, &StoreError{Op: "delete", Key: key, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return false, &StoreError{Op: "delete", Key: key, Err: err}
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// Exists reports whether the list has been created.
func (s *PostgresStore) Exists(ctx context.Context, userID int64, key string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one,
		`SELECT 1 FROM purchase_lists WHERE user_id = $1 AND list_key = $2`,
		userID, SanitizeKey(key))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "stat", Key: key, Err: err}
	}
	return true, nil
}

var _ Store = (*PostgresStore)(nil)
