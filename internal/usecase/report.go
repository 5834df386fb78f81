package usecase

import (
	"fmt"
	"time"
)

// FeedFailure описывает ленту, которая не загрузилась в текущем цикле.
type FeedFailure struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// IngestReport - итог одного цикла загрузки лент.
type IngestReport struct {
	TotalFetched int
	NewArticles  int
	Skipped      int
	// TotalInDatabase равен -1, если статьи сохранены, но подсчитать их не удалось.
	TotalInDatabase    int
	ArticlesWithImages int
	FeedsSucceeded     int
	FeedsFailed        int
	Failures           []FeedFailure
	ExecutionTime      time.Duration
	Saved              bool
}

// ImageSuccessRate возвращает долю статей с картинкой в виде "42.5%".
func (r *IngestReport) ImageSuccessRate() string {
	if r.TotalFetched == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(r.ArticlesWithImages)*100/float64(r.TotalFetched))
}

// Message - человекочитаемая сводка для админки.
func (r *IngestReport) Message() string {
	if !r.Saved {
		return fmt.Sprintf("Fetched %d positive articles but could not save them", r.TotalFetched)
	}
	return fmt.Sprintf("Fetched %d positive articles from %d feeds, %d new", r.TotalFetched, r.FeedsSucceeded, r.NewArticles)
}

// StoreError возвращается, когда статьи загружены, но хранилище их не приняло.
// Report содержит все, что удалось собрать до сбоя.
type StoreError struct {
	Report *IngestReport
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("fetched %d articles but not saved: %v", e.Report.TotalFetched, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
