package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength - длина описания статьи по умолчанию.
const DefaultMaxLength = 300

const ellipsis = "..."

var (
	tagPattern           = regexp.MustCompile(`<[^>]*>`)
	numericEntityPattern = regexp.MustCompile(`&#[xX]?[0-9a-fA-F]+;`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
)

// CleanText превращает HTML-описание в обычный текст: удаляет теги, декодирует
// основные сущности, убирает числовые, схлопывает пробелы и обрезает до maxLen
// символов с многоточием. Повторный вызов на результате ничего не меняет.
func CleanText(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	// декодированный "&lt;b&gt;" становится тегом, поэтому чистим до неподвижной точки.
	// Каждый проход, который что-то меняет, укорачивает строку.
	for {
		next := cleanOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return truncate(s, maxLen)
}

func cleanOnce(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = numericEntityPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + ellipsis
}
