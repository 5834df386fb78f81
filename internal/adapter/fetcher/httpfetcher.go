package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const userAgent = "GoodNewsBot/1.0 (+https://newscanbegood.com)"

// maxFeedSize ограничивает объем читаемого тела ленты.
const maxFeedSize = 10 << 20

// HTTPFetcher загружает RSS-ленты по HTTP.
// Таймаут на отдельную ленту задается контекстом вызывающей стороны.
type HTTPFetcher struct {
	client *http.Client
	log    *slog.Logger
}

// NewHTTPFetcher создает HTTPFetcher. Если client равен nil, используется http.DefaultClient.
func NewHTTPFetcher(client *http.Client, log *slog.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client: client,
		log:    log,
	}
}

// Fetch выполняет GET-запрос ленты и возвращает тело ответа,
// которое вызывающая сторона обязана закрыть. Любой статус, кроме 200, считается ошибкой.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("component", "fetcher"), slog.String("url", url))
	log.Debug("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	log.Debug("Successfully fetched URL")
	return limitedBody{Reader: io.LimitReader(resp.Body, maxFeedSize), Closer: resp.Body}, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
