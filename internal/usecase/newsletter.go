package usecase

import (
	"context"
	"fmt"

	"goodnews/internal/domain"
)

// QuoteSource отдает цитату дня; реализация сама обрабатывает недоступность API.
type QuoteSource interface {
	Quote(ctx context.Context) domain.Quote
}

// NewsletterContent - содержимое письма рассылки.
type NewsletterContent struct {
	Articles []domain.Article `json:"articles"`
	Quote    domain.Quote     `json:"quote"`
}

// NewsletterUseCase собирает содержимое рассылки: свежие статьи и цитату.
type NewsletterUseCase struct {
	news   *NewsGetterUseCase
	quotes QuoteSource
	limit  int
}

func NewNewsletterUseCase(news *NewsGetterUseCase, quotes QuoteSource, limit int) *NewsletterUseCase {
	return &NewsletterUseCase{news: news, quotes: quotes, limit: limit}
}

func (uc *NewsletterUseCase) Content(ctx context.Context) (*NewsletterContent, error) {
	articles, err := uc.news.GetNews(ctx, uc.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load newsletter articles: %w", err)
	}
	return &NewsletterContent{
		Articles: articles,
		Quote:    uc.quotes.Quote(ctx),
	}, nil
}
