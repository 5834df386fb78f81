package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"goodnews/internal/content"
	"goodnews/internal/domain"
)

// FeedSource - одна лента из реестра источников.
type FeedSource struct {
	Name string
	URL  string
}

// IngestionConfig задает реестр лент и параметры цикла загрузки.
// Передается при создании, чтобы в тестах можно было подставить свои ленты.
type IngestionConfig struct {
	Feeds            []FeedSource
	Keywords         []string
	FeedTimeout      time.Duration
	Concurrency      int
	MaxItemsPerFeed  int
	ContentMaxLength int
}

// IngestionUseCase реализует цикл загрузки позитивных новостей:
// параллельная загрузка лент, фильтрация, очистка текста, поиск картинок
// и сохранение без дубликатов.
type IngestionUseCase struct {
	fetcher    FeedFetcher
	parser     FeedParser
	storage    ArticleStorage
	classifier *content.Classifier
	cfg        IngestionConfig
	log        *slog.Logger
	now        func() time.Time

	// циклы выполняются строго по одному: воркер и ручной запуск не пересекаются
	mu sync.Mutex
}

// NewIngestionUseCase создает UseCase загрузки лент.
// Нулевые параметры конфигурации заменяются значениями по умолчанию.
func NewIngestionUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	storage ArticleStorage,
	cfg IngestionConfig,
	log *slog.Logger,
) *IngestionUseCase {
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 10 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = max(len(cfg.Feeds), 1)
	}
	if cfg.ContentMaxLength <= 0 {
		cfg.ContentMaxLength = content.DefaultMaxLength
	}
	return &IngestionUseCase{
		fetcher:    fetcher,
		parser:     parser,
		storage:    storage,
		classifier: content.NewClassifier(cfg.Keywords),
		cfg:        cfg,
		log:        log.With(slog.String("component", "ingest")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Feeds возвращает реестр лент, с которым работает UseCase.
func (uc *IngestionUseCase) Feeds() []FeedSource { return uc.cfg.Feeds }

// Run выполняет один цикл загрузки. Сбой отдельной ленты не прерывает цикл
// и попадает в отчет. Если хранилище недоступно, возвращается *StoreError
// с отчетом о загруженных, но не сохраненных статьях.
func (uc *IngestionUseCase) Run(ctx context.Context) (*IngestReport, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := time.Now()
	uc.log.Info("Ingestion cycle started", slog.Int("feeds_to_process", len(uc.cfg.Feeds)))

	report := &IngestReport{}
	var articles []domain.Article
	for _, outcome := range uc.fetchAll(ctx) {
		if outcome.Err != nil {
			report.FeedsFailed++
			report.Failures = append(report.Failures, FeedFailure{
				Name:   outcome.Name,
				URL:    outcome.URL,
				Reason: outcome.Err.Error(),
			})
			continue
		}
		report.FeedsSucceeded++
		articles = append(articles, uc.buildArticles(outcome)...)
	}
	report.TotalFetched = len(articles)
	for i := range articles {
		if articles[i].HasImage() {
			report.ArticlesWithImages++
		}
	}

	res, err := uc.storage.SaveArticles(ctx, articles)
	if err != nil {
		report.ExecutionTime = time.Since(start)
		uc.log.Error("Articles fetched but not saved",
			slog.Int("total_fetched", report.TotalFetched),
			slog.Any("error", err),
		)
		return report, &StoreError{Report: report, Err: err}
	}
	report.Saved = true
	report.NewArticles = res.Inserted
	report.Skipped = res.Skipped

	// статьи уже сохранены, поэтому сбой подсчета не делает цикл неудачным
	if total, err := uc.storage.CountArticles(ctx); err != nil {
		report.TotalInDatabase = -1
		uc.log.Warn("Failed to count stored articles", slog.Any("error", err))
	} else {
		report.TotalInDatabase = total
	}
	report.ExecutionTime = time.Since(start)

	uc.log.Info("Ingestion cycle completed",
		slog.Int("successful", report.FeedsSucceeded),
		slog.Int("errors", report.FeedsFailed),
		slog.Int("total_fetched", report.TotalFetched),
		slog.Int("new_articles", report.NewArticles),
		slog.Int("skipped", report.Skipped),
		slog.String("image_success_rate", report.ImageSuccessRate()),
		slog.Duration("duration", report.ExecutionTime),
	)
	return report, nil
}

// fetchAll загружает все ленты параллельно (не более Concurrency одновременно).
// Порядок результатов совпадает с порядком лент в реестре.
func (uc *IngestionUseCase) fetchAll(ctx context.Context) []domain.FetchOutcome {
	outcomes := make([]domain.FetchOutcome, len(uc.cfg.Feeds))
	var g errgroup.Group
	g.SetLimit(uc.cfg.Concurrency)
	for i, src := range uc.cfg.Feeds {
		g.Go(func() error {
			feedCtx, cancel := context.WithTimeout(ctx, uc.cfg.FeedTimeout)
			defer cancel()
			items, err := uc.fetchFeed(feedCtx, src)
			outcomes[i] = domain.FetchOutcome{Name: src.Name, URL: src.URL, Items: items, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// fetchFeed загружает и разбирает одну ленту. Ошибка оборачивается в *domain.FetchError.
func (uc *IngestionUseCase) fetchFeed(ctx context.Context, src FeedSource) ([]domain.RawItem, error) {
	start := time.Now()
	log := uc.log.With(
		slog.String("feed", src.Name),
		slog.String("url", src.URL),
	)
	reader, err := uc.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		log.Error("Feed fetch failed", slog.String("stage", "fetch"), slog.Any("error", err))
		return nil, &domain.FetchError{URL: src.URL, Stage: "fetch", Err: err}
	}
	defer reader.Close()

	feed, err := uc.parser.Parse(ctx, reader)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		log.Error("Feed parsing failed", slog.String("stage", "parse"), slog.Any("error", err))
		return nil, &domain.FetchError{URL: src.URL, Stage: "parse", Err: err}
	}
	items := feed.Items
	if uc.cfg.MaxItemsPerFeed > 0 && len(items) > uc.cfg.MaxItemsPerFeed {
		items = items[:uc.cfg.MaxItemsPerFeed]
	}
	log.Info("Feed fetched",
		slog.Int("items_found", len(feed.Items)),
		slog.Int("items_used", len(items)),
		slog.Duration("duration", time.Since(start)),
	)
	return items, nil
}

// buildArticles превращает позитивные элементы ленты в статьи.
func (uc *IngestionUseCase) buildArticles(outcome domain.FetchOutcome) []domain.Article {
	source := SourceFromURL(outcome.URL)
	now := uc.now()
	articles := make([]domain.Article, 0, len(outcome.Items))
	for i := range outcome.Items {
		item := &outcome.Items[i]
		if item.Title == "" {
			continue
		}
		if !uc.classifier.IsPositive(item.Title, item.Description) {
			continue
		}
		text := item.Description
		if strings.TrimSpace(text) == "" {
			text = item.Content
		}
		a := domain.Article{
			Title:     item.Title,
			Content:   content.CleanText(text, uc.cfg.ContentMaxLength),
			Link:      item.Link,
			PubDate:   item.Published,
			Source:    source,
			Category:  domain.DefaultCategory,
			CreatedAt: now,
		}
		if a.Link == "" {
			a.Link = domain.NoLink
		}
		if a.PubDate.IsZero() {
			a.PubDate = now
		}
		if img := content.ResolveImage(item); img != "" {
			a.ImageURL = &img
		}
		articles = append(articles, a)
	}
	return articles
}

// SourceFromURL возвращает домен ленты без префикса www.
func SourceFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
