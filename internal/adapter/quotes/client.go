package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"goodnews/internal/domain"
)

var fallbackQuotes = []domain.Quote{
	{Text: "Keep your face always toward the sunshine, and shadows will fall behind you.", Author: "Walt Whitman"},
	{Text: "No act of kindness, no matter how small, is ever wasted.", Author: "Aesop"},
	{Text: "We rise by lifting others.", Author: "Robert Ingersoll"},
	{Text: "Hope is being able to see that there is light despite all of the darkness.", Author: "Desmond Tutu"},
	{Text: "The best way to find yourself is to lose yourself in the service of others.", Author: "Mahatma Gandhi"},
	{Text: "Alone we can do so little; together we can do so much.", Author: "Helen Keller"},
}

// zenQuote - формат ответа ZenQuotes: [{"q": "...", "a": "..."}].
type zenQuote struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Client получает цитату дня из внешнего API.
// При любой ошибке API возвращается цитата из статического пула.
type Client struct {
	client *http.Client
	apiURL string
	log    *slog.Logger
	pick   func(n int) int
}

func NewClient(apiURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		log:    log.With(slog.String("component", "quotes")),
		pick:   rand.IntN,
	}
}

// Quote возвращает цитату; ошибка API не выходит наружу.
func (c *Client) Quote(ctx context.Context) domain.Quote {
	q, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("Quote API unavailable, using fallback", slog.Any("error", err))
		return Fallback(c.pick)
	}
	return q
}

func (c *Client) fetch(ctx context.Context) (domain.Quote, error) {
	if c.apiURL == "" {
		return domain.Quote{}, fmt.Errorf("quote api url is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to create quote request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var payload []zenQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(payload) == 0 || strings.TrimSpace(payload[0].Q) == "" {
		return domain.Quote{}, fmt.Errorf("empty quote response")
	}
	return domain.Quote{
		Text:   strings.TrimSpace(payload[0].Q),
		Author: strings.TrimSpace(payload[0].A),
	}, nil
}

// Fallback выбирает цитату из статического пула.
func Fallback(pick func(n int) int) domain.Quote {
	return fallbackQuotes[pick(len(fallbackQuotes))]
}
