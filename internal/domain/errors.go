package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEmail возвращается, если email подписчика пуст или некорректен.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrSubscriberExists возвращается при повторной подписке того же email.
	ErrSubscriberExists = errors.New("subscriber already exists")
)

// FetchError описывает сбой загрузки одной ленты: сеть, таймаут или разбор XML.
type FetchError struct {
	URL   string
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
