package parser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/logger"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:media="http://search.yahoo.com/mrss/"
	xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
	<title>Test Feed</title>
	<link>https://example.com</link>
	<description>Test Description</description>
	<item>
		<title>Community Garden Brings Neighbors Together</title>
		<link>https://example.com/garden</link>
		<description>&lt;p&gt;Every volunteer brought a shovel.&lt;/p&gt;</description>
		<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
		<enclosure url="https://example.com/a.jpg" type="image/jpeg" length="1024"/>
	</item>
	<item>
		<title>Rescued Puppies Find Homes</title>
		<link>https://example.com/puppies</link>
		<description>Short text</description>
		<content:encoded><![CDATA[<p><img src="https://example.com/puppies.png"></p>]]></content:encoded>
		<pubDate>Tue, 03 Jan 2006 12:00:00 GMT</pubDate>
		<media:content url="https://example.com/m1.jpg" medium="image"/>
		<media:content url="https://example.com/m2.jpg" medium="image"/>
		<media:thumbnail url="https://example.com/t1.jpg"/>
	</item>
	<item>
		<title>Grouped Media</title>
		<link>https://example.com/group</link>
		<media:group>
			<media:content url="https://example.com/g.jpg" type="image/jpeg"/>
		</media:group>
	</item>
</channel>
</rss>`

func TestFeedParser_Parse_RSS(t *testing.T) {
	p := NewFeedParser(logger.Discard())

	feed, err := p.Parse(context.Background(), strings.NewReader(rssFixture))
	require.NoError(t, err)
	require.NotNil(t, feed)

	assert.Equal(t, "Test Feed", feed.Title)
	assert.Equal(t, "https://example.com", feed.Link)
	require.Len(t, feed.Items, 3)

	first := feed.Items[0]
	assert.Equal(t, "Community Garden Brings Neighbors Together", first.Title)
	assert.Equal(t, "https://example.com/garden", first.Link)
	assert.Contains(t, first.Description, "volunteer")
	assert.WithinDuration(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), first.Published, time.Second)
	require.NotNil(t, first.Enclosure)
	assert.Equal(t, "https://example.com/a.jpg", first.Enclosure.URL)
	assert.Equal(t, "image/jpeg", first.Enclosure.Type)
	assert.Nil(t, first.MediaContent)

	second := feed.Items[1]
	assert.Contains(t, second.Content, `<img src="https://example.com/puppies.png">`)
	require.NotNil(t, second.MediaContent)
	assert.Equal(t, "https://example.com/m1.jpg", second.MediaContent.URL)
	assert.Equal(t, "image", second.MediaContent.Medium)
	require.NotNil(t, second.MediaThumbnail)
	assert.Equal(t, "https://example.com/t1.jpg", second.MediaThumbnail.URL)

	third := feed.Items[2]
	assert.True(t, third.Published.IsZero())
	require.NotNil(t, third.MediaContent)
	assert.Equal(t, "https://example.com/g.jpg", third.MediaContent.URL)
	assert.Equal(t, "image/jpeg", third.MediaContent.Type)
}

func TestFeedParser_Parse_Atom(t *testing.T) {
	p := NewFeedParser(logger.Discard())
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Feed</title>
	<link href="https://atom.example.com/"/>
	<updated>2024-05-01T10:00:00Z</updated>
	<entry>
		<title>Scientists Celebrate Breakthrough</title>
		<link href="https://atom.example.com/breakthrough"/>
		<id>urn:uuid:1</id>
		<updated>2024-05-01T10:00:00Z</updated>
		<summary>A hopeful result.</summary>
	</entry>
</feed>`

	feed, err := p.Parse(context.Background(), strings.NewReader(atom))
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Scientists Celebrate Breakthrough", feed.Items[0].Title)
	assert.Equal(t, "https://atom.example.com/breakthrough", feed.Items[0].Link)
	assert.Equal(t, "A hopeful result.", feed.Items[0].Description)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), feed.Items[0].Published)
}

func TestFeedParser_Parse_NotAFeed(t *testing.T) {
	p := NewFeedParser(logger.Discard())

	feed, err := p.Parse(context.Background(), strings.NewReader("this is not a feed"))

	assert.Error(t, err)
	assert.Nil(t, feed)
	assert.Contains(t, err.Error(), "failed to parse feed")
}

func TestFeedParser_Parse_ContextCancelled(t *testing.T) {
	p := NewFeedParser(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed, err := p.Parse(ctx, strings.NewReader(rssFixture))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, feed)
}

func TestFeedParser_Parse_EmptyFeed(t *testing.T) {
	p := NewFeedParser(logger.Discard())
	xmlData := `<rss version="2.0"><channel>
		<title>Empty Feed</title>
		<link>https://example.com</link>
		<description>Empty Description</description>
	</channel></rss>`

	feed, err := p.Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	assert.Equal(t, "Empty Feed", feed.Title)
	assert.Empty(t, feed.Items)
}
