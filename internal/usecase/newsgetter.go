package usecase

import (
	"context"

	"goodnews/internal/content"
	"goodnews/internal/domain"
)

// NewsStorage определяет интерфейс для получения новостей из хранилища.
type NewsStorage interface {
	GetNews(ctx context.Context, n int) ([]domain.Article, error)
}

// NewsGetterUseCase реализует путь чтения: последние статьи по дате публикации.
// Статьям без картинки подставляется заглушка из пула.
type NewsGetterUseCase struct {
	storage      NewsStorage
	placeholders []string
}

func NewNewsGetterUseCase(s NewsStorage, placeholders []string) *NewsGetterUseCase {
	return &NewsGetterUseCase{storage: s, placeholders: placeholders}
}

// GetNews возвращает не более limit последних статей; limit <= 0 означает лимит хранилища по умолчанию.
func (us *NewsGetterUseCase) GetNews(ctx context.Context, limit int) ([]domain.Article, error) {
	articles, err := us.storage.GetNews(ctx, limit)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	for i := range articles {
		articles[i].DisplayImageURL = content.DisplayImage(articles[i].Title, articles[i].ImageURL, us.placeholders)
	}
	return articles, nil
}
