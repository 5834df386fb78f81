package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"goodnews/internal/adapter/fetcher"
	"goodnews/internal/adapter/parser"
	"goodnews/internal/adapter/quotes"
	"goodnews/internal/config"
	"goodnews/internal/logger"
	"goodnews/internal/migrations"
	server "goodnews/internal/transport/http"
	"goodnews/internal/usecase"
	"goodnews/internal/worker"
	"goodnews/storage"
)

// cycleTimeout ограничивает один фоновый цикл загрузки целиком.
const cycleTimeout = 10 * time.Minute

// App представляет основное приложение News Can Be Good.
// Координирует работу HTTP-сервера, воркера загрузки лент, хранилища
// и системы логирования. Обеспечивает graceful startup и shutdown.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	server    *http.Server
	worker    *worker.Worker
	store     storage.Storage
	ingestion *usecase.IngestionUseCase
	stopChan  chan os.Signal
	wg        sync.WaitGroup
}

// New создает и инициализирует приложение: логгер, хранилище (с миграциями),
// use case'ы, воркер и HTTP-сервер.
// Возвращает ошибку в случае сбоя любой из инициализационных процедур.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	interval, err := cfg.App.Interval()
	if err != nil {
		return nil, fmt.Errorf("bad init app: %w", err)
	}

	store, err := OpenStorage(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
	feedFetcher := fetcher.NewHTTPFetcher(httpClient, appLogger)
	feedParser := parser.NewFeedParser(appLogger)

	ingestion := usecase.NewIngestionUseCase(feedFetcher, feedParser, store, IngestionConfig(cfg), appLogger)
	newsGetter := usecase.NewNewsGetterUseCase(store, cfg.Placeholders)
	quoteClient := quotes.NewClient(cfg.Quotes.APIURL, config.Duration(cfg.Quotes.Timeout, 5*time.Second), appLogger)
	newsletter := usecase.NewNewsletterUseCase(newsGetter, quoteClient, cfg.App.NewsletterArticleLimit)
	subscriptions := usecase.NewSubscriptionUseCase(store, appLogger)

	writeTimeout := config.Duration(cfg.Server.WriteTimeout, 60*time.Second)
	handler := server.NewHandler(appLogger, newsGetter, newsletter, subscriptions, ingestion,
		cfg.App.DefaultNewsLimit, adminFetchTimeout(writeTimeout))
	router := server.NewServer(appLogger, handler, cfg.Server.SubscribeRate)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      writeTimeout,
	}
	return &App{
		config:    cfg,
		logger:    appLogger,
		server:    srv,
		worker:    worker.New(ingestion, interval, cycleTimeout, appLogger),
		store:     store,
		ingestion: ingestion,
		stopChan:  make(chan os.Signal, 1),
	}, nil
}

// adminFetchTimeout оставляет запас до WriteTimeout, чтобы сводка
// ручного цикла успела записаться в ответ.
func adminFetchTimeout(writeTimeout time.Duration) time.Duration {
	margin := max(writeTimeout/10, time.Second)
	return max(writeTimeout-margin, writeTimeout/2)
}

// IngestionConfig переносит настройки загрузки из конфигурации в use case.
func IngestionConfig(cfg *config.Config) usecase.IngestionConfig {
	feeds := make([]usecase.FeedSource, 0, len(cfg.App.FeedURLs))
	for _, f := range cfg.App.FeedURLs {
		feeds = append(feeds, usecase.FeedSource{Name: f.Name, URL: f.URL})
	}
	return usecase.IngestionConfig{
		Feeds:            feeds,
		Keywords:         cfg.App.PositiveKeywords,
		FeedTimeout:      cfg.App.Timeout(),
		Concurrency:      cfg.App.FetchConcurrency,
		MaxItemsPerFeed:  cfg.App.MaxItemsPerFeed,
		ContentMaxLength: cfg.App.ContentMaxLength,
	}
}

// OpenStorage открывает хранилище, выбранное в database.driver.
// Для PostgreSQL перед возвратом применяются миграции.
func OpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := storage.OpenSQLite(ctx, cfg.Database.Path, cfg.App.DefaultNewsLimit, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		pool, err := connectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := migrations.Apply(ctx, log, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return storage.NewPostgresStore(pool, cfg.App.DefaultNewsLimit, log), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Migrate применяет миграции схемы без запуска приложения.
// Для SQLite схема создается при открытии базы.
func Migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		store, err := OpenStorage(ctx, cfg, log)
		if err != nil {
			return err
		}
		store.Close()
		return nil
	}
	pool, err := connectPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	return migrations.Apply(ctx, log, pool)
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// FetchOnce выполняет один цикл загрузки; хранилище остается открытым.
// Используется командой fetch для запуска из внешнего планировщика.
func (a *App) FetchOnce(ctx context.Context) (*usecase.IngestReport, error) {
	return a.ingestion.Run(ctx)
}

// Logger возвращает логгер приложения.
func (a *App) Logger() *slog.Logger { return a.logger }

// Close освобождает ресурсы, не связанные с сервером.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// Run запускает воркер и HTTP-сервер и блокируется до сигнала завершения
// или отмены ctx. Возвращает ошибку в случае неудачи при запуске сервера.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting News Can Be Good",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.ingestion.Feeds())),
		slog.String("processing_interval", a.worker.GetInterval().String()),
		slog.String("database", a.config.Database.Driver),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.Close()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	a.worker.Start()

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serveErr <- err
		}
	}()

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	var runErr error
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case <-ctx.Done():
		a.logger.Info("Context cancelled, initiating shutdown", slog.String("component", "app"))
	case runErr = <-serveErr:
	}
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown выполняет graceful shutdown приложения.
// Останавливает воркер, завершает HTTP-сервер (таймаут 10 секунд),
// закрывает хранилище и ожидает завершения всех горутин.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var err error
	if err = a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	a.Close()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return err
}
