package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserConfigStore keeps user config in the extension_user_config table.
type PostgresUserConfigStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserConfigStore creates a postgres-backed user config store.
func NewPostgresUserConfigStore(pool *pgxpool.Pool) *PostgresUserConfigStore {
	return &PostgresUserConfigStore{pool: pool}
}

// Get returns the stored value or "" if the key is unset.
func (s *PostgresUserConfigStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT config_value FROM extension_user_config WHERE config_key = $1`,
		key,
	).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read user config %s: %w", key, err)
	}
	return value, nil
}

// Set upserts a config value.
func (s *PostgresUserConfigStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extension_user_config (config_key, config_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (config_key)
		DO UPDATE SET config_value = EXCLUDED.config_value, updated_at = NOW()
	`, key, value)

	if err != nil {
		return fmt.Errorf("failed to write user config %s: %w", key, err)
	}
	return nil
}

// MemoryUserConfigStore is an in-process store for tests and dry runs.
type MemoryUserConfigStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryUserConfigStore creates an empty in-memory store.
func NewMemoryUserConfigStore() *MemoryUserConfigStore {
	return &MemoryUserConfigStore{values: make(map[string]string)}
}

// Get returns the stored value or "".
func (s *MemoryUserConfigStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores a value.
func (s *MemoryUserConfigStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

var (
	_ UserConfigStore = (*PostgresUserConfigStore)(nil)
	_ UserConfigStore = (*MemoryUserConfigStore)(nil)
)
