package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSlotFull is returned when a value does not fit in the slot capacity
// or the database reports that it is full.
var ErrSlotFull = errors.New("storage slot full")

// Slots is a named key-value area backed by the kv_slots table.
type Slots struct {
	db       *sql.DB
	maxBytes int
}

// NewSlots wraps db. A maxBytes of zero or less disables the size check.
func NewSlots(db *sql.DB, maxBytes int) *Slots {
	return &Slots{db: db, maxBytes: maxBytes}
}

// Get returns the value stored under key. ok is false when the key is unset.
func (s *Slots) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

// Put replaces the value stored under key.
func (s *Slots) Put(ctx context.Context, key, value string) error {
	if s.maxBytes > 0 && len(key)+len(value) > s.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds capacity of %d", ErrSlotFull, len(key)+len(value), s.maxBytes)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isFull(err) {
			return fmt.Errorf("%w: %v", ErrSlotFull, err)
		}
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an unset key is not an error.
func (s *Slots) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

// isFull matches SQLITE_FULL as reported by the driver's error text.
func isFull(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "sqlite_full")
}
