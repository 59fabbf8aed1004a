package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetBlob returns the body stored under ns. The second return is false
// when the namespace has never been written.
func (s *Store) GetBlob(ctx context.Context, ns string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM blobs WHERE ns = ?`, ns).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %q: %w", ns, err)
	}
	return body, true, nil
}

// PutBlob replaces the body stored under ns. The whole namespace is
// written in one upsert; there are no partial writes.
func (s *Store) PutBlob(ctx context.Context, ns string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (ns, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(ns) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, ns, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put blob %q: %w", ns, err)
	}
	return nil
}
