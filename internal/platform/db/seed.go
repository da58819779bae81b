package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagebook/internal/domain/auth"
	"wagebook/internal/platform/config"
)

// Seed creates the initial admin account when no admin exists yet.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if username == "" || cfg.SeedAdminPassword == "" {
		slog.Warn("seed admin credentials not set, skipping seed")
		return nil
	}

	var existing int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE is_admin ORDER BY id LIMIT 1").Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (username, password_hash, is_admin, permissions, branch_ids)
    VALUES ($1, $2, true, $3, '{}')
    ON CONFLICT (username) DO UPDATE SET is_admin = true
  `, username, hash, auth.AllPermissions)
	return err
}
