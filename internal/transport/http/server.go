package http

import (
	"log/slog"
	"net/http"
)

// NewServer создает и настраивает HTTP-роутер с эндпоинтами API и middleware.
// subscribeRate ограничивает POST /api/subscribe (запросов в секунду с одного IP);
// 0 отключает ограничение.
func NewServer(log *slog.Logger, h *Handler, subscribeRate float64) http.Handler {
	var subscribe http.Handler = http.HandlerFunc(h.subscribe)
	if subscribeRate > 0 {
		subscribe = newIPRateLimiter(subscribeRate).middleware(subscribe)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.healthCheck)
	mux.HandleFunc("GET /api/news", h.getNews)
	mux.HandleFunc("GET /api/newsletter", h.getNewsletter)
	mux.Handle("POST /api/subscribe", subscribe)
	mux.HandleFunc("POST /api/admin/fetch-news", h.fetchNews)
	mux.HandleFunc("GET /api/admin/subscribers", h.listSubscribers)

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
