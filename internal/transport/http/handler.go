package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"goodnews/internal/domain"
	"goodnews/internal/usecase"
)

const (
	maxNewsLimit     = 100
	maxSubscribeBody = 4 << 10

	defaultFetchTimeout = 50 * time.Second
)

type newsGetter interface {
	GetNews(ctx context.Context, limit int) ([]domain.Article, error)
}

type newsletterBuilder interface {
	Content(ctx context.Context) (*usecase.NewsletterContent, error)
}

type subscriptions interface {
	Subscribe(ctx context.Context, email, source string) (*domain.Subscriber, error)
	List(ctx context.Context) ([]domain.Subscriber, error)
}

type ingestor interface {
	Run(ctx context.Context) (*usecase.IngestReport, error)
}

// Handler содержит обработчики JSON API.
type Handler struct {
	log          *slog.Logger
	newsGetter   newsGetter
	newsletter   newsletterBuilder
	subs         subscriptions
	ingestor     ingestor
	defaultLimit int
	fetchTimeout time.Duration
}

func NewHandler(
	log *slog.Logger,
	getter newsGetter,
	newsletter newsletterBuilder,
	subs subscriptions,
	ing ingestor,
	defaultLimit int,
	fetchTimeout time.Duration,
) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Handler{
		log:          log.With(slog.String("component", "http")),
		newsGetter:   getter,
		newsletter:   newsletter,
		subs:         subs,
		ingestor:     ing,
		defaultLimit: defaultLimit,
		fetchTimeout: fetchTimeout,
	}
}

func (h *Handler) requestLogger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
}

// getNews - хендлер для эндпоинта GET /api/news
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getNews"
	log := h.requestLogger(r, op)

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = min(limit, maxNewsLimit)
	}

	news, err := h.newsGetter.GetNews(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get news", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, news)
}

// getNewsletter - хендлер для GET /api/newsletter: свежие статьи и цитата дня.
func (h *Handler) getNewsletter(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getNewsletter"
	content, err := h.newsletter.Content(r.Context())
	if err != nil {
		h.requestLogger(r, op).Error("Failed to build newsletter", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, content)
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type subscribeResponse struct {
	Message    string             `json:"message"`
	Subscriber *domain.Subscriber `json:"subscriber"`
}

// subscribe - хендлер для POST /api/subscribe
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/subscribe"
	log := h.requestLogger(r, op)

	var req subscribeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubscribeBody))
	if err := dec.Decode(&req); err != nil {
		log.Warn("invalid subscribe body", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.subs.Subscribe(r.Context(), req.Email, req.Source)
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		respondWithError(w, http.StatusBadRequest, "Please provide a valid email address")
	case errors.Is(err, domain.ErrSubscriberExists):
		respondWithError(w, http.StatusConflict, "Email already subscribed")
	case err != nil:
		log.Error("Failed to subscribe", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		respondWithJSON(w, http.StatusCreated, subscribeResponse{
			Message:    "Successfully subscribed to the newsletter",
			Subscriber: sub,
		})
	}
}

// listSubscribers - хендлер для GET /api/admin/subscribers
func (h *Handler) listSubscribers(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/listSubscribers"
	subs, err := h.subs.List(r.Context())
	if err != nil {
		h.requestLogger(r, op).Error("Failed to list subscribers", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"count":       len(subs),
		"subscribers": subs,
	})
}

type fetchStats struct {
	TotalFetched       int    `json:"totalFetched"`
	NewArticles        int    `json:"newArticles"`
	TotalInDatabase    int    `json:"totalInDatabase"`
	ArticlesWithImages int    `json:"articlesWithImages"`
	ImageSuccessRate   string `json:"imageSuccessRate"`
}

type fetchResponse struct {
	Message       string                `json:"message"`
	Stats         fetchStats            `json:"stats"`
	ExecutionTime string                `json:"executionTime"`
	FailedFeeds   []usecase.FeedFailure `json:"failedFeeds,omitempty"`
	Error         string                `json:"error,omitempty"`
}

func newFetchResponse(r *usecase.IngestReport) fetchResponse {
	return fetchResponse{
		Message: r.Message(),
		Stats: fetchStats{
			TotalFetched:       r.TotalFetched,
			NewArticles:        r.NewArticles,
			TotalInDatabase:    r.TotalInDatabase,
			ArticlesWithImages: r.ArticlesWithImages,
			ImageSuccessRate:   r.ImageSuccessRate(),
		},
		ExecutionTime: fmt.Sprintf("%dms", r.ExecutionTime.Milliseconds()),
		FailedFeeds:   r.Failures,
	}
}

// fetchNews - хендлер для POST /api/admin/fetch-news: синхронный цикл загрузки.
// Цикл ограничен fetchTimeout, который должен быть меньше WriteTimeout сервера,
// иначе сводка не успеет дойти до клиента.
func (h *Handler) fetchNews(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/fetchNews"
	log := h.requestLogger(r, op)

	ctx, cancel := context.WithTimeout(r.Context(), h.fetchTimeout)
	defer cancel()
	report, err := h.ingestor.Run(ctx)
	if err != nil {
		var storeErr *usecase.StoreError
		if errors.As(err, &storeErr) {
			log.Error("Fetched articles not saved", slog.Any("error", storeErr.Err))
			resp := newFetchResponse(storeErr.Report)
			resp.Error = "Articles fetched but not saved: " + storeErr.Err.Error()
			respondWithJSON(w, http.StatusInternalServerError, resp)
			return
		}
		log.Error("Ingestion failed", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, newFetchResponse(report))
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
