package store

import (
	"context"
	"fmt"
)

// ListSettings returns every stored setting in key order.
func (s *SQLStore) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.query(ctx, "SELECT key, value, updated_at FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetSetting returns a stored setting.
func (s *SQLStore) GetSetting(ctx context.Context, key string) (Setting, error) {
	if s.db == nil {
		return Setting{}, ErrNotOpen
	}
	row := s.queryRow(ctx, "SELECT key, value, updated_at FROM settings WHERE key = ?", key)
	return getOne(row, "setting", key, func(r rowScanner) (Setting, error) {
		var st Setting
		err := r.Scan(&st.Key, &st.Value, &st.UpdatedAt)
		return st, err
	})
}

// PutSetting inserts or replaces a setting.
func (s *SQLStore) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now())
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting. Removing a missing key is not an error.
func (s *SQLStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.exec(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
