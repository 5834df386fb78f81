package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDMiddleware присваивает запросу идентификатор: берет X-Request-ID
// клиента или генерирует UUID, кладет его в контекст и в заголовок ответа.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.New().String()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

func getRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder запоминает код ответа для лога.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware создает middleware для логирования информации о HTTP-запросах.
// Логирует метод, путь, IP-адрес, user-agent, код ответа и время выполнения запроса.
func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := log.With(
				slog.String("component", "http"),
				slog.String("request_id", getRequestID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			)
			entry.Debug("request started")
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry.Info("request completed",
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// corsMiddleware создает middleware для обработки CORS (Cross-Origin Resource Sharing).
// Разрешает запросы с любого origin и обрабатывает preflight OPTIONS запросы.
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ipRateLimiter ограничивает частоту запросов с одного IP.
// Записи, не обновлявшиеся дольше idleTTL, удаляются при очередном обращении.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

type ipLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perSecond float64) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(perSecond),
		burst:    max(1, int(perSecond)),
		idleTTL:  10 * time.Minute,
	}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.idleTTL {
		for key, l := range rl.limiters {
			if now.Sub(l.lastSeen) > rl.idleTTL {
				delete(rl.limiters, key)
			}
		}
		rl.lastSweep = now
	}
	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{lim: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now
	return l.lim.AllowN(now, 1)
}

// middleware отвечает 429, если клиент превысил лимит.
func (rl *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP возвращает адрес TCP-соединения. X-Forwarded-For не учитывается:
// клиент может подставить в него что угодно.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
