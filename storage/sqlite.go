package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"goodnews/internal/domain"
)

// MemoryPath открывает SQLite в памяти; удобно для тестов и локального запуска.
const MemoryPath = ":memory:"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		title_key TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		link TEXT NOT NULL,
		image_url TEXT,
		pub_date INTEGER NOT NULL,
		source TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		created_at INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS articles_link_key ON articles(link) WHERE link <> '#'`,
	`CREATE INDEX IF NOT EXISTS articles_pub_date_idx ON articles(pub_date DESC)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		subscribed INTEGER NOT NULL DEFAULT 1,
		subscribed_at INTEGER NOT NULL,
		source TEXT NOT NULL
	)`,
}

// SQLiteStore - реализация Storage поверх SQLite (modernc.org/sqlite, без cgo).
// Время хранится в миллисекундах Unix, чтобы сортировка по дате была корректной.
type SQLiteStore struct {
	db               *sql.DB
	log              *slog.Logger
	defaultNewsLimit int
}

// OpenSQLite открывает (или создает) базу по пути и применяет схему.
func OpenSQLite(ctx context.Context, path string, defaultNewsLimit int, log *slog.Logger) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryPath {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	log = log.With(slog.String("component", "storage"))
	log.Info("Initializing SQLite storage", slog.String("path", path))
	return &SQLiteStore{db: db, log: log, defaultNewsLimit: defaultNewsLimit}, nil
}

func (s *SQLiteStore) Close() {
	s.log.Info("Closing sqlite database")
	s.db.Close()
}

func (s *SQLiteStore) SaveArticles(ctx context.Context, articles []domain.Article) (domain.SaveResult, error) {
	const op = "storage.sqlite.SaveArticles"
	var res domain.SaveResult
	if len(articles) == 0 {
		return res, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO articles (title, title_key, content, link, image_url, pub_date, source, category, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT DO NOTHING`)
	if err != nil {
		return res, fmt.Errorf("%s: failed to prepare insert: %w", op, err)
	}
	defer stmt.Close()
	for i := range articles {
		a := &articles[i]
		r, err := stmt.ExecContext(ctx,
			a.Title,
			a.TitleKey(),
			a.Content,
			a.Link,
			nullString(a.ImageURL),
			toMillis(a.PubDate),
			a.Source,
			a.Category,
			toMillis(a.CreatedAt),
		)
		if err != nil {
			s.log.Error("Failed to insert article", slog.String("op", op), slog.Any("error", err))
			return domain.SaveResult{}, fmt.Errorf("%s: failed to insert article: %w", op, err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return res, nil
}

func (s *SQLiteStore) GetNews(ctx context.Context, n int) ([]domain.Article, error) {
	const op = "storage.sqlite.GetNews"
	limit := n
	if limit <= 0 {
		limit = s.defaultNewsLimit
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, content, link, image_url, pub_date, source, category, created_at
	FROM articles
	ORDER BY pub_date DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	var articles []domain.Article
	for rows.Next() {
		var (
			a                  domain.Article
			image              sql.NullString
			pubDate, createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Link, &image, &pubDate, &a.Source, &a.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		if image.Valid {
			a.ImageURL = &image.String
		}
		a.PubDate = fromMillis(pubDate)
		a.CreatedAt = fromMillis(createdAt)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return articles, nil
}

func (s *SQLiteStore) CountArticles(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.sqlite.CountArticles: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) FindSubscriber(ctx context.Context, email string) (*domain.Subscriber, error) {
	const op = "storage.sqlite.FindSubscriber"
	var (
		sub domain.Subscriber
		at  int64
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, email, subscribed, subscribed_at, source
	FROM subscribers WHERE email = ?`, email).Scan(&sub.ID, &sub.Email, &sub.Subscribed, &at, &sub.Source)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.SubscribedAt = fromMillis(at)
	return &sub, nil
}

func (s *SQLiteStore) AddSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	const op = "storage.sqlite.AddSubscriber"
	r, err := s.db.ExecContext(ctx, `
	INSERT INTO subscribers (email, subscribed, subscribed_at, source)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (email) DO NOTHING`, sub.Email, sub.Subscribed, toMillis(sub.SubscribedAt), sub.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return domain.ErrSubscriberExists
	}
	if id, err := r.LastInsertId(); err == nil {
		sub.ID = id
	}
	return nil
}

func (s *SQLiteStore) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	const op = "storage.sqlite.ListSubscribers"
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, email, subscribed, subscribed_at, source
	FROM subscribers ORDER BY subscribed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var subs []domain.Subscriber
	for rows.Next() {
		var (
			sub domain.Subscriber
			at  int64
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Subscribed, &at, &sub.Source); err != nil {
			return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		sub.SubscribedAt = fromMillis(at)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
