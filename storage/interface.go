package storage

import (
	"context"

	"goodnews/internal/domain"
)

// Storage определяет общий интерфейс хранилища статей и подписчиков.
// Реализации обязаны гарантировать, что статья с тем же нормализованным
// заголовком или той же ссылкой (кроме "#") не будет сохранена дважды.
type Storage interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (domain.SaveResult, error)
	GetNews(ctx context.Context, n int) ([]domain.Article, error)
	CountArticles(ctx context.Context) (int, error)

	FindSubscriber(ctx context.Context, email string) (*domain.Subscriber, error)
	AddSubscriber(ctx context.Context, s *domain.Subscriber) error
	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)

	Close()
}

var (
	_ Storage = (*PostgresStore)(nil)
	_ Storage = (*SQLiteStore)(nil)
)
