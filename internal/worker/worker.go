package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"goodnews/internal/usecase"
)

// Ingestor определяет интерфейс одного цикла загрузки лент.
// Используется для внедрения зависимости в воркер.
type Ingestor interface {
	Run(ctx context.Context) (*usecase.IngestReport, error)
}

// Worker реализует фонового воркера для периодического запуска цикла загрузки.
// Первый цикл выполняется сразу после старта, далее по тикеру.
type Worker struct {
	ingestor Ingestor
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// New создает нового воркера. Нулевой interval означает, что воркер отключен:
// Start ничего не запускает, а загрузка идет только через админский эндпоинт.
// timeout ограничивает один цикл; 0 - без ограничения.
func New(ingestor Ingestor, interval, timeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		ingestor: ingestor,
		interval: interval,
		timeout:  timeout,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Enabled сообщает, запускается ли периодическая загрузка.
func (w *Worker) Enabled() bool { return w.interval > 0 }

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start() {
	if !w.Enabled() {
		w.log.Info("Worker disabled, processing interval is 0")
		return
	}
	if w.done != nil {
		return
	}
	var ctx context.Context
	ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop отменяет контекст и ждет завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil
}

// run выполняет основной цикл работы воркера.
func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("Ingestion worker started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.runCycle(ctx)
	for {
		select {
		case <-ticker.C:
			w.runCycle(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	report, err := w.ingestor.Run(ctx)
	if err != nil {
		var storeErr *usecase.StoreError
		if errors.As(err, &storeErr) {
			w.log.Error("Ingestion cycle not saved",
				slog.Int("total_fetched", storeErr.Report.TotalFetched),
				slog.Any("error", storeErr.Err),
			)
			return
		}
		w.log.Error("Ingestion cycle failed", slog.Any("error", err))
		return
	}
	if report.FeedsFailed > 0 {
		w.log.Warn("Some feeds failed",
			slog.Int("errors", report.FeedsFailed),
			slog.Int("successful", report.FeedsSucceeded),
		)
	}
}

// GetInterval возвращает интервал запуска цикла загрузки.
func (w *Worker) GetInterval() time.Duration { return w.interval }
