package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/domain"
	"goodnews/internal/logger"
	"goodnews/internal/migrations"
)

// backends возвращает все доступные реализации Storage.
// PostgreSQL проверяется, только если задан GOODNEWS_TEST_PG_DSN.
func backends(t *testing.T) map[string]Storage {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	out := map[string]Storage{}

	lite, err := OpenSQLite(ctx, MemoryPath, 10, log)
	require.NoError(t, err)
	t.Cleanup(lite.Close)
	out["sqlite"] = lite

	if dsn := os.Getenv("GOODNEWS_TEST_PG_DSN"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, migrations.Apply(ctx, log, pool))
		_, err = pool.Exec(ctx, "TRUNCATE articles, subscribers RESTART IDENTITY")
		require.NoError(t, err)
		pg := NewPostgresStore(pool, 10, log)
		t.Cleanup(pg.Close)
		out["postgres"] = pg
	}
	return out
}

func article(title, link string, pub time.Time) domain.Article {
	return domain.Article{
		Title:     title,
		Content:   "content of " + title,
		Link:      link,
		PubDate:   pub,
		Source:    "example.com",
		Category:  domain.DefaultCategory,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStorage_SaveArticles_Dedup(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			a := article("Community Garden Brings Neighbors Together", "https://example.com/garden", now)

			res, err := s.SaveArticles(ctx, []domain.Article{a})
			require.NoError(t, err)
			assert.Equal(t, domain.SaveResult{Inserted: 1}, res)

			res, err = s.SaveArticles(ctx, []domain.Article{a})
			require.NoError(t, err)
			assert.Equal(t, domain.SaveResult{Skipped: 1}, res)

			n, err := s.CountArticles(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestStorage_SaveArticles_TitleOrLinkCollision(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()

			res, err := s.SaveArticles(ctx, []domain.Article{
				article("Puppies Rescued", "https://example.com/puppies", now),
				article("  puppies   RESCUED ", "https://example.com/other", now),
				article("Different Title", "https://example.com/puppies", now),
				article("Offline Story One", domain.NoLink, now),
				article("Offline Story Two", domain.NoLink, now),
			})
			require.NoError(t, err)
			assert.Equal(t, domain.SaveResult{Inserted: 3, Skipped: 2}, res)
		})
	}
}

func TestStorage_GetNews_RecentFirst(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			var batch []domain.Article
			for i := 0; i < 5; i++ {
				batch = append(batch, article(fmt.Sprintf("Story %d", i), fmt.Sprintf("https://example.com/%d", i), base.Add(time.Duration(i)*time.Hour)))
			}
			img := "https://example.com/4.jpg"
			batch[4].ImageURL = &img
			_, err := s.SaveArticles(ctx, batch)
			require.NoError(t, err)

			news, err := s.GetNews(ctx, 3)
			require.NoError(t, err)
			require.Len(t, news, 3)
			assert.Equal(t, "Story 4", news[0].Title)
			assert.Equal(t, "Story 3", news[1].Title)
			assert.Equal(t, "Story 2", news[2].Title)
			require.NotNil(t, news[0].ImageURL)
			assert.Equal(t, img, *news[0].ImageURL)
			assert.Nil(t, news[1].ImageURL)
			assert.True(t, news[0].PubDate.Equal(base.Add(4*time.Hour)))

			all, err := s.GetNews(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 5)
		})
	}
}

func TestStorage_Subscribers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := s.FindSubscriber(ctx, "nobody@example.com")
			require.NoError(t, err)
			assert.Nil(t, missing)

			sub := &domain.Subscriber{
				Email:        "reader@example.com",
				Subscribed:   true,
				SubscribedAt: time.Now().UTC().Truncate(time.Millisecond),
				Source:       "website",
			}
			require.NoError(t, s.AddSubscriber(ctx, sub))
			assert.NotZero(t, sub.ID)

			dup := *sub
			assert.ErrorIs(t, s.AddSubscriber(ctx, &dup), domain.ErrSubscriberExists)

			found, err := s.FindSubscriber(ctx, "reader@example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.True(t, found.Subscribed)
			assert.Equal(t, "website", found.Source)
			assert.True(t, found.SubscribedAt.Equal(sub.SubscribedAt))

			list, err := s.ListSubscribers(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}
