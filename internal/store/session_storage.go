package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetItem returns the value stored under key. ok is false when the key is absent.
func (s *Store) GetItem(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM session_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO session_storage (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

// SetItems writes all pairs in one transaction.
func (s *Store) SetItems(items map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range items {
		if _, err := tx.Exec(
			`INSERT INTO session_storage (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now,
		); err != nil {
			return fmt.Errorf("set item %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// Clear deletes every stored item.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session_storage`); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}

func (s *Store) Items() ([]Item, error) {
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM session_storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var updatedAt string
		if err := rows.Scan(&it.Key, &it.Value, &updatedAt); err != nil {
			return nil, err
		}
		it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		items = append(items, it)
	}
	return items, rows.Err()
}
