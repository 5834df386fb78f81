package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/domain"
)

type stubNews struct {
	articles []domain.Article
	err      error
	gotLimit int
}

func (s *stubNews) GetNews(_ context.Context, n int) ([]domain.Article, error) {
	s.gotLimit = n
	return s.articles, s.err
}

func TestNewsGetter_FillsDisplayImage(t *testing.T) {
	img := "https://cdn.example.org/garden.jpg"
	pool := []string{"p0", "p1", "p2", "p3"}
	st := &stubNews{articles: []domain.Article{
		{Title: "with image", ImageURL: &img, PubDate: time.Now()},
		{Title: "ab"},
	}}
	uc := NewNewsGetterUseCase(st, pool)

	news, err := uc.GetNews(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, 5, st.gotLimit)
	assert.Equal(t, img, news[0].DisplayImageURL)
	assert.Equal(t, "p1", news[1].DisplayImageURL)
	assert.Nil(t, news[1].ImageURL)
}

func TestNewsGetter_EmptyIsNotNil(t *testing.T) {
	news, err := NewNewsGetterUseCase(&stubNews{}, nil).GetNews(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, news)
	assert.Empty(t, news)
}

func TestNewsGetter_StorageError(t *testing.T) {
	_, err := NewNewsGetterUseCase(&stubNews{err: errors.New("db down")}, nil).GetNews(context.Background(), 3)
	assert.EqualError(t, err, "db down")
}
