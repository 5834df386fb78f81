package domain

import (
	"strings"
	"time"
)

// NoLink - значение Link у статьи без внешней ссылки.
const NoLink = "#"

// DefaultCategory присваивается всем статьям, загруженным из лент.
const DefaultCategory = "general"

// Article представляет сохраненную позитивную новость.
// Заголовок и ссылка служат ключами дедупликации.
type Article struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Link            string    `json:"link"`
	ImageURL        *string   `json:"imageUrl"`
	DisplayImageURL string    `json:"displayImageUrl,omitempty"`
	PubDate         time.Time `json:"pubDate"`
	Source          string    `json:"source"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HasImage сообщает, удалось ли найти для статьи реальную картинку.
func (a *Article) HasImage() bool {
	return a.ImageURL != nil && *a.ImageURL != ""
}

// TitleKey возвращает нормализованный заголовок, по которому ищутся дубликаты.
func (a *Article) TitleKey() string {
	return TitleKey(a.Title)
}

// TitleKey приводит заголовок к нижнему регистру и схлопывает пробелы.
func TitleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// SaveResult содержит количество вставленных и пропущенных как дубликаты статей.
type SaveResult struct {
	Inserted int
	Skipped  int
}
