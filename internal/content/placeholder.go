package content

// Placeholder детерминированно выбирает стоковую картинку из пула по хэшу заголовка.
// Используется только для статей, у которых не нашлось собственной картинки.
func Placeholder(title string, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	var h int32
	for _, r := range title {
		h = h*31 + int32(r)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return pool[n%int64(len(pool))]
}

// DisplayImage возвращает собственную картинку статьи или заглушку.
func DisplayImage(title string, imageURL *string, pool []string) string {
	if imageURL != nil && *imageURL != "" {
		return *imageURL
	}
	return Placeholder(title, pool)
}
