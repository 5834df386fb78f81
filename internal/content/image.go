package content

import (
	"net/url"
	"regexp"
	"strings"

	"goodnews/internal/domain"
)

var (
	imageExtPattern = regexp.MustCompile(`\.(jpe?g|png|gif|webp|svg)$`)

	// ленты непоследовательны в кавычках вокруг src, поэтому пробуем все варианты
	inlineImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*"([^"]+)"`),
		regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*'([^']+)'`),
		regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*([^\s"'>]+)`),
	}

	imageHints   = []string{"image", "photo", "wp-content/uploads", "cdn", "media"}
	deniedImages = []string{"gravatar", "avatar", "profile", "icon", "button", "logo", "badge"}

	customImageFields = []string{"featuredImage", "thumbnail"}
)

// ResolveImage ищет картинку статьи в элементе ленты и возвращает ее URL
// или пустую строку. Источники перебираются по порядку, побеждает первый
// URL, прошедший ValidateImageURL:
//
//  1. enclosure с MIME-типом image/*;
//  2. media:content с medium="image" или типом image/*;
//  3. media:thumbnail;
//  4. <img src> внутри content:encoded, затем description;
//  5. пользовательские поля featuredImage и thumbnail.
func ResolveImage(item *domain.RawItem) string {
	if item == nil {
		return ""
	}
	if e := item.Enclosure; e != nil && isImageType(e.Type) {
		if ValidateImageURL(e.URL) {
			return e.URL
		}
	}
	if m := item.MediaContent; m != nil && (strings.EqualFold(m.Medium, "image") || isImageType(m.Type)) {
		if ValidateImageURL(m.URL) {
			return m.URL
		}
	}
	if m := item.MediaThumbnail; m != nil && ValidateImageURL(m.URL) {
		return m.URL
	}
	for _, html := range []string{item.Content, item.Description} {
		if src := InlineImage(html); src != "" {
			return src
		}
	}
	for _, field := range customImageFields {
		if v := strings.TrimSpace(item.Custom[field]); ValidateImageURL(v) {
			return v
		}
	}
	return ""
}

// InlineImage возвращает первый подходящий src из тегов <img> во фрагменте HTML.
func InlineImage(html string) string {
	if html == "" {
		return ""
	}
	for _, re := range inlineImagePatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			src := normalizeSrc(m[1])
			if ValidateImageURL(src) {
				return src
			}
		}
	}
	return ""
}

// ValidateImageURL проверяет, что строка - абсолютный http(s) URL, похожий на
// картинку статьи: расширение изображения или характерный фрагмент пути/хоста,
// и при этом не аватар, логотип, иконка или значок.
func ValidateImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	lower := strings.ToLower(raw)
	for _, bad := range deniedImages {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	if imageExtPattern.MatchString(strings.ToLower(u.Path)) {
		return true
	}
	for _, hint := range imageHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func isImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

func normalizeSrc(src string) string {
	src = strings.TrimSpace(strings.ReplaceAll(src, "&amp;", "&"))
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	return src
}
