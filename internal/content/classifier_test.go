package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_IsPositive(t *testing.T) {
	c := NewClassifier([]string{"Kindness", "rescued", "volunteer", " "})

	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"keyword in title", "Random Acts of KINDNESS", "", true},
		{"keyword in description", "Local story", "Dozens volunteer at the shelter", true},
		{"substring match", "Volunteers plant trees", "", true},
		{"no keyword", "Stock market closes flat", "Analysts shrug", false},
		{"accepted false positive", "Hikers rescued from a disaster that killed dozens", "", true},
		{"empty text", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsPositive(tt.title, tt.description))
		})
	}
}

func TestClassifier_KeywordFlipsResult(t *testing.T) {
	keywords := []string{"breakthrough", "kindness", "rescued", "hope", "triumph"}
	c := NewClassifier(keywords)
	base := "quarterly earnings were reported on tuesday"
	assert.False(t, c.Match(base))

	for _, kw := range keywords {
		assert.True(t, c.IsPositive(base, kw), kw)
		assert.True(t, c.IsPositive(kw+" "+base, ""), kw)
	}
}

func TestClassifier_Keywords(t *testing.T) {
	c := NewClassifier([]string{" Hope ", ""})
	assert.Equal(t, []string{"hope"}, c.Keywords())
}
