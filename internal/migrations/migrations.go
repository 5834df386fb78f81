package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "020240501120000_create_articles_table",
		UpSQL: `
		CREATE TABLE articles(
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		title_key TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		link TEXT NOT NULL,
		image_url TEXT,
		pub_date TIMESTAMPTZ NOT NULL,
		source TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		// "#" означает статью без внешней ссылки, такие ссылки не уникальны
		ID:    "020240501120100_articles_link_unique",
		UpSQL: `CREATE UNIQUE INDEX articles_link_key ON articles(link) WHERE link <> '#';`,
	},
	{
		ID:    "020240501120200_articles_pub_date_index",
		UpSQL: `CREATE INDEX articles_pub_date_idx ON articles(pub_date DESC);`,
	},
	{
		ID: "020240501120300_create_subscribers_table",
		UpSQL: `
		CREATE TABLE subscribers(
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		subscribed BOOLEAN NOT NULL DEFAULT TRUE,
		subscribed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		source TEXT NOT NULL DEFAULT 'website'
		);`,
	},
}

// migrationLockID - ключ advisory-блокировки, чтобы два экземпляра
// сервиса не применяли миграции одновременно.
const migrationLockID = 7_341_202_405

// Apply применяет к базе PostgreSQL все еще не примененные миграции.
// Примененные идентификаторы хранятся в таблице schema_migrations;
// новые миграции выполняются одной транзакцией в порядке ID.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Checking database migrations")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		id TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := tx.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration ids: %w", err)
	}
	applied := make(map[string]bool, len(ids))
	for _, id := range ids {
		applied[id] = true
	}

	pending := pendingMigrations(applied)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	if len(pending) > 0 {
		log.Info("Database migrations applied", slog.Int("count", len(pending)))
	} else {
		log.Info("Database is up to date")
	}
	return nil
}

// pendingMigrations возвращает не примененные миграции, отсортированные по ID.
func pendingMigrations(applied map[string]bool) []Migration {
	pending := make([]Migration, 0, len(allMigrations))
	for _, m := range allMigrations {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})
	return pending
}
