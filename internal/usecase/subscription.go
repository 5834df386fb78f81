package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"goodnews/internal/domain"
)

// SubscriberStorage - операции хранилища, нужные для подписки на рассылку.
type SubscriberStorage interface {
	FindSubscriber(ctx context.Context, email string) (*domain.Subscriber, error)
	AddSubscriber(ctx context.Context, s *domain.Subscriber) error
	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

// SubscriptionUseCase реализует подписку на рассылку и выдачу списка подписчиков.
type SubscriptionUseCase struct {
	storage SubscriberStorage
	log     *slog.Logger
	now     func() time.Time
}

func NewSubscriptionUseCase(s SubscriberStorage, log *slog.Logger) *SubscriptionUseCase {
	return &SubscriptionUseCase{
		storage: s,
		log:     log.With(slog.String("component", "subscription")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe проверяет email и сохраняет нового подписчика.
// Возвращает domain.ErrInvalidEmail для некорректного адреса
// и domain.ErrSubscriberExists, если адрес уже подписан.
func (uc *SubscriptionUseCase) Subscribe(ctx context.Context, email, source string) (*domain.Subscriber, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := uc.storage.FindSubscriber(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscriber: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrSubscriberExists
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = domain.DefaultSubscriberSource
	}
	sub := &domain.Subscriber{
		Email:        email,
		Subscribed:   true,
		SubscribedAt: uc.now(),
		Source:       source,
	}
	// между проверкой и вставкой может успеть другой запрос; уникальный индекс ловит и это
	if err := uc.storage.AddSubscriber(ctx, sub); err != nil {
		return nil, err
	}
	uc.log.Info("New subscriber", slog.String("source", source))
	return sub, nil
}

func (uc *SubscriptionUseCase) List(ctx context.Context) ([]domain.Subscriber, error) {
	subs, err := uc.storage.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	if subs == nil {
		subs = []domain.Subscriber{}
	}
	return subs, nil
}

// NormalizeEmail приводит адрес к нижнему регистру и проверяет его формат.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
