package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/domain"
)

type staticQuote domain.Quote

func (q staticQuote) Quote(context.Context) domain.Quote { return domain.Quote(q) }

func TestNewsletter_Content(t *testing.T) {
	st := &stubNews{articles: []domain.Article{{Title: "a"}, {Title: "b"}}}
	quote := staticQuote{Text: "Keep going.", Author: "Someone"}
	uc := NewNewsletterUseCase(NewNewsGetterUseCase(st, []string{"p"}), quote, 5)

	c, err := uc.Content(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, st.gotLimit)
	assert.Len(t, c.Articles, 2)
	assert.Equal(t, "p", c.Articles[0].DisplayImageURL)
	assert.Equal(t, domain.Quote(quote), c.Quote)
}

func TestNewsletter_StorageError(t *testing.T) {
	st := &stubNews{err: errors.New("db down")}
	uc := NewNewsletterUseCase(NewNewsGetterUseCase(st, nil), staticQuote{}, 5)

	c, err := uc.Content(context.Background())
	assert.Nil(t, c)
	assert.ErrorContains(t, err, "failed to load newsletter articles")
}
