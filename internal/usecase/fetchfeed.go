package usecase

import (
	"context"
	"io"

	"goodnews/internal/domain"
)

// FeedFetcher определяет интерфейс для загрузки данных RSS-лент из внешних источников.
// Возвращает io.ReadCloser, который должен быть закрыт после использования.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser определяет интерфейс для разбора ленты в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error)
}

// ArticleStorage - та часть хранилища, которая нужна циклу загрузки.
type ArticleStorage interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (domain.SaveResult, error)
	CountArticles(ctx context.Context) (int, error)
}
