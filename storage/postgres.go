package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goodnews/internal/domain"
)

const insertArticlePG = `
	INSERT INTO articles (title, title_key, content, link, image_url, pub_date, source, category, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT DO NOTHING;
	`

// PostgresStore хранит статьи и подписчиков в PostgreSQL через пул pgx.
type PostgresStore struct {
	pool             *pgxpool.Pool
	log              *slog.Logger
	defaultNewsLimit int
}

func NewPostgresStore(pool *pgxpool.Pool, defaultNewsLimit int, log *slog.Logger) *PostgresStore {
	log = log.With(slog.String("component", "storage"))
	log.Info("Initializing Postgres storage")
	return &PostgresStore{
		pool:             pool,
		log:              log,
		defaultNewsLimit: defaultNewsLimit,
	}
}

func (db *PostgresStore) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveArticles вставляет статьи одной транзакцией через pgx.Batch.
// Конфликт по title_key или link пропускает строку, поэтому повторная
// загрузка той же новости не создает дубликат.
func (db *PostgresStore) SaveArticles(ctx context.Context, articles []domain.Article) (domain.SaveResult, error) {
	const op = "storage.postgres.SaveArticles"
	var res domain.SaveResult
	if len(articles) == 0 {
		return res, nil
	}
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return res, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(context.Background())

	batch := &pgx.Batch{}
	for i := range articles {
		a := &articles[i]
		batch.Queue(insertArticlePG,
			a.Title,
			a.TitleKey(),
			a.Content,
			a.Link,
			a.ImageURL,
			a.PubDate,
			a.Source,
			a.Category,
			a.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range articles {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			log.Error("Failed to execute batch", slog.Any("error", err))
			return domain.SaveResult{}, fmt.Errorf("%s: failed to execute batch: %w", op, err)
		}
		if tag.RowsAffected() > 0 {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}
	if err := br.Close(); err != nil {
		log.Error("Failed to close batch", slog.Any("error", err))
		return domain.SaveResult{}, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return domain.SaveResult{}, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Debug("Articles saved", slog.Int("inserted", res.Inserted), slog.Int("skipped", res.Skipped))
	return res, nil
}

func (db *PostgresStore) GetNews(ctx context.Context, n int) ([]domain.Article, error) {
	const op = "storage.postgres.GetNews"
	limit := n
	if limit <= 0 {
		limit = db.defaultNewsLimit
	}
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT id, title, content, link, image_url, pub_date, source, category, created_at
	FROM articles
	ORDER BY pub_date DESC, id DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	articles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Article, error) {
		var a domain.Article
		err := row.Scan(
			&a.ID,
			&a.Title,
			&a.Content,
			&a.Link,
			&a.ImageURL,
			&a.PubDate,
			&a.Source,
			&a.Category,
			&a.CreatedAt,
		)
		return a, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Successfully retrieved articles", slog.Int("count", len(articles)))
	return articles, nil
}

func (db *PostgresStore) CountArticles(ctx context.Context) (int, error) {
	const op = "storage.postgres.CountArticles"
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// FindSubscriber возвращает подписчика по email или nil, если его нет.
func (db *PostgresStore) FindSubscriber(ctx context.Context, email string) (*domain.Subscriber, error) {
	const op = "storage.postgres.FindSubscriber"
	var s domain.Subscriber
	err := db.pool.QueryRow(ctx, `
	SELECT id, email, subscribed, subscribed_at, source
	FROM subscribers
	WHERE email = $1;
	`, email).Scan(&s.ID, &s.Email, &s.Subscribed, &s.SubscribedAt, &s.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// AddSubscriber сохраняет подписчика. Если email уже занят, возвращает domain.ErrSubscriberExists.
func (db *PostgresStore) AddSubscriber(ctx context.Context, s *domain.Subscriber) error {
	const op = "storage.postgres.AddSubscriber"
	err := db.pool.QueryRow(ctx, `
	INSERT INTO subscribers (email, subscribed, subscribed_at, source)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (email) DO NOTHING
	RETURNING id;
	`, s.Email, s.Subscribed, s.SubscribedAt, s.Source).Scan(&s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSubscriberExists
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (db *PostgresStore) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	const op = "storage.postgres.ListSubscribers"
	rows, err := db.pool.Query(ctx, `
	SELECT id, email, subscribed, subscribed_at, source
	FROM subscribers
	ORDER BY subscribed_at DESC, id DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Subscriber, error) {
		var s domain.Subscriber
		err := row.Scan(&s.ID, &s.Email, &s.Subscribed, &s.SubscribedAt, &s.Source)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	return subs, nil
}
