package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Neighbors build a garden", "Neighbors build a garden"},
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "Fish&nbsp;&amp;&nbsp;chips &quot;rock&quot; &lt;3", `Fish & chips "rock" <3`},
		{"numeric entities dropped", "caf&#233; &#x2019;open", "caf open"},
		{"escaped markup", "&lt;em&gt;wow&lt;/em&gt; ok", "wow ok"},
		{"whitespace", "  a \n\t b  ", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in, DefaultMaxLength))
		})
	}
}

func TestCleanText_Truncates(t *testing.T) {
	long := strings.Repeat("good news ", 60)
	out := CleanText(long, 300)

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, 303, utf8.RuneCountInString(out))

	exact := strings.Repeat("x", 300)
	assert.Equal(t, exact, CleanText(exact, 300))
}

func TestCleanText_CountsRunes(t *testing.T) {
	in := strings.Repeat("ü", 301)
	out := CleanText(in, 300)
	assert.Equal(t, 303, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"<div><p>Volunteers &amp; friends</p><img src='x.png'></div>",
		"&amp;lt;b&amp;gt;double escaped&amp;lt;/b&amp;gt;",
		strings.Repeat("<span>hope &nbsp; </span>", 80),
		"already clean text",
		"a < b and c > d",
	}
	for _, in := range inputs {
		once := CleanText(in, 300)
		assert.Equal(t, once, CleanText(once, 300), in)
		assert.LessOrEqual(t, utf8.RuneCountInString(once), 303)
	}
}

func TestCleanText_OnlyBasicEntitiesDecoded(t *testing.T) {
	out := CleanText("It&#39;s a &apos;win&apos; &#8217;today", 300)
	assert.Equal(t, "Its a &apos;win&apos; today", out)
}
