package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"goodnews/internal/config"
)

// New создает и настраивает логгер приложения на основе конфигурации.
// Обычные сообщения пишутся в cfg.File (или stdout), ошибки - в cfg.ErrorFile (или stderr).
// Возвращает ошибку при проблемах с открытием файлов логов.
func New(cfg config.LoggerConfig) (*slog.Logger, error) {
	logWriter, err := openWriter(cfg.File, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}
	errorWriter, err := openWriter(cfg.ErrorFile, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file %s: %w", cfg.ErrorFile, err)
	}
	handler := NewLevelDispatcherHandler(logWriter, errorWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(cfg.Level),
	})
	return slog.New(handler), nil
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openWriter(path string, fallback io.Writer) (io.Writer, error) {
	if path == "" {
		return fallback, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// ParseLevel преобразует строковое представление уровня логирования в slog.Level.
// Неизвестные значения трактуются как info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelDispatcherHandler реализует slog.Handler с маршрутизацией сообщений по уровням.
// Сообщения уровня ERROR и выше направляются в errorHandler, остальные - в defaultHandler.
type LevelDispatcherHandler struct {
	defaultHandler slog.Handler
	errorHandler   slog.Handler
}

// NewLevelDispatcherHandler создает обработчик логов с маршрутизацией по уровням.
func NewLevelDispatcherHandler(defaultOut, errorOut io.Writer, opts *slog.HandlerOptions) *LevelDispatcherHandler {
	return &LevelDispatcherHandler{
		defaultHandler: NewReadableHandler(defaultOut, opts),
		errorHandler:   NewReadableHandler(errorOut, opts),
	}
}

func (h *LevelDispatcherHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

func (h *LevelDispatcherHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.defaultHandler.Handle(ctx, r)
}

func (h *LevelDispatcherHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
		errorHandler:   h.errorHandler.WithAttrs(attrs),
	}
}

func (h *LevelDispatcherHandler) WithGroup(name string) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithGroup(name),
		errorHandler:   h.errorHandler.WithGroup(name),
	}
}

// ReadableHandler реализует slog.Handler с удобочитаемым форматированием:
//
//	[15:04:05.000] INFO [component] (op) <file.go:42>: message | key=value, ...
//
// Атрибуты, добавленные через With, сохраняются и выводятся перед атрибутами записи.
type ReadableHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	attrs  []slog.Attr
	prefix string
}

// NewReadableHandler создает новый обработчик с читаемым форматированием.
// Если opts равен nil, используются настройки по умолчанию.
func NewReadableHandler(w io.Writer, opts *slog.HandlerOptions) *ReadableHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ReadableHandler{mu: &sync.Mutex{}, w: w, opts: opts}
}

func (h *ReadableHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle форматирует и записывает запись лога.
// Атрибуты component и op выносятся в префикс строки.
func (h *ReadableHandler) Handle(_ context.Context, r slog.Record) error {
	var component, operation string
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "component":
			component = a.Value.String()
		case "op":
			operation = a.Value.String()
		default:
			attrs = append(attrs, a)
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		return collect(a)
	})

	var line strings.Builder
	fmt.Fprintf(&line, "[%s] %s", r.Time.Format("15:04:05.000"), formatLevel(r.Level))
	if component != "" {
		fmt.Fprintf(&line, " [%s]", component)
	}
	if operation != "" {
		fmt.Fprintf(&line, " (%s)", operation)
	}
	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			fmt.Fprintf(&line, " <%s:%d>", filepath.Base(frame.File), frame.Line)
		}
	}
	line.WriteString(": ")
	line.WriteString(r.Message)
	if len(attrs) > 0 {
		parts := make([]string, 0, len(attrs))
		for _, attr := range attrs {
			parts = append(parts, formatAttr(attr))
		}
		line.WriteString(" | ")
		line.WriteString(strings.Join(parts, ", "))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func (h *ReadableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *ReadableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// formatAttr форматирует атрибут с учетом его ключа: ошибки в кавычках,
// длинные URL сокращаются до домена, длительности округляются до миллисекунд.
func formatAttr(attr slog.Attr) string {
	switch attr.Key {
	case "error":
		return fmt.Sprintf("error=%q", attr.Value.String())
	case "url":
		return fmt.Sprintf("url=%s", shortenURL(attr.Value.String()))
	case "duration":
		if attr.Value.Kind() == slog.KindDuration {
			return fmt.Sprintf("duration=%s", attr.Value.Duration().Round(time.Millisecond))
		}
	}
	return fmt.Sprintf("%s=%s", attr.Key, attr.Value.String())
}

// shortenURL обрезает URL длиннее 50 символов до схемы и домена.
func shortenURL(url string) string {
	if len(url) > 50 {
		parts := strings.Split(url, "/")
		if len(parts) >= 3 {
			return fmt.Sprintf("%s//%s/...", parts[0], parts[2])
		}
	}
	return url
}
