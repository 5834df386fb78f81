package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/domain"
	"goodnews/internal/logger"
)

func TestSubscription_Subscribe(t *testing.T) {
	ctx := context.Background()
	uc := NewSubscriptionUseCase(newSQLite(t), logger.Discard())

	sub, err := uc.Subscribe(ctx, "  Reader@Example.com ", "")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.Equal(t, domain.DefaultSubscriberSource, sub.Source)
	assert.True(t, sub.Subscribed)
	assert.NotZero(t, sub.ID)

	_, err = uc.Subscribe(ctx, "reader@example.com", "footer")
	assert.ErrorIs(t, err, domain.ErrSubscriberExists)

	other, err := uc.Subscribe(ctx, "friend@example.com", "footer")
	require.NoError(t, err)
	assert.Equal(t, "footer", other.Source)

	subs, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
}

func TestSubscription_ListEmpty(t *testing.T) {
	subs, err := NewSubscriptionUseCase(newSQLite(t), logger.Discard()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a@b.co", want: "a@b.co"},
		{in: " USER@Mail.Example.org", want: "user@mail.example.org"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "no-at-sign", wantErr: true},
		{in: "user@localhost", wantErr: true},
		{in: "Name <user@example.com>", wantErr: true},
		{in: "two@@example.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
