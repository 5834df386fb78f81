package content

import "strings"

// Classifier решает, является ли новость позитивной, по вхождению ключевых слов.
// Это простая проверка подстроки: без стемминга и без списка исключений,
// поэтому "rescued from a disaster" тоже считается позитивной новостью.
type Classifier struct {
	keywords []string
}

// NewClassifier создает классификатор с заданным списком ключевых слов.
// Слова приводятся к нижнему регистру, пустые отбрасываются.
func NewClassifier(keywords []string) *Classifier {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Classifier{keywords: kw}
}

// IsPositive возвращает true, если заголовок или описание содержат хотя бы одно ключевое слово.
func (c *Classifier) IsPositive(title, description string) bool {
	return c.Match(strings.ToLower(title + " " + description))
}

// Match проверяет уже приведенный к нижнему регистру текст.
func (c *Classifier) Match(text string) bool {
	for _, k := range c.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Keywords возвращает копию списка ключевых слов.
func (c *Classifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}
