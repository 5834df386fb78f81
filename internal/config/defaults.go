package config

// DefaultPositiveKeywords возвращает список слов, по которым новость считается позитивной.
// Список намеренно широкий: "amazing" или "milestone" встречаются и в плохих новостях.
func DefaultPositiveKeywords() []string {
	return []string{
		"breakthrough", "success", "achievement", "celebrate", "celebration",
		"inspiring", "heartwarming", "kindness", "rescued", "rescue",
		"saved", "hope", "hopeful", "triumph", "victory", "recovery",
		"cure", "innovation", "volunteer", "donation", "donate", "charity",
		"community", "together", "helping", "help", "generous", "milestone",
		"record", "amazing", "wonderful", "joy", "happy", "smile",
		"good news", "uplifting", "positive", "reunited", "award",
		"restored", "thriving", "solution", "progress", "wins", "hero",
	}
}

// DefaultPlaceholders возвращает пул стоковых картинок для статей без изображения.
func DefaultPlaceholders() []string {
	return []string{
		"https://images.unsplash.com/photo-1469474968028-56623f02e42e?w=800",
		"https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?w=800",
		"https://images.unsplash.com/photo-1506744038136-46273834b3fb?w=800",
		"https://images.unsplash.com/photo-1488521787991-ed7bbaae773c?w=800",
		"https://images.unsplash.com/photo-1529156069898-49953e39b3ac?w=800",
		"https://images.unsplash.com/photo-1511632765486-a01980e01a18?w=800",
		"https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?w=800",
		"https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800",
	}
}
