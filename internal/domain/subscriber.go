package domain

import "time"

// DefaultSubscriberSource используется, если форма подписки не передала источник.
const DefaultSubscriberSource = "website"

// Subscriber представляет подписчика рассылки.
type Subscriber struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Subscribed   bool      `json:"subscribed"`
	SubscribedAt time.Time `json:"subscribedAt"`
	Source       string    `json:"source"`
}

// Quote - цитата дня для рассылки.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}
