package store

import (
	"context"
	"database/sql"
)

// GetFlag returns the stored value for key and whether it was set.
func (s *SQLiteStore) GetFlag(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM flags WHERE key = ?`, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetFlag stores the value for key, replacing any previous value.
func (s *SQLiteStore) SetFlag(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flags(key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
