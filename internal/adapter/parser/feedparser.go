package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"goodnews/internal/domain"
)

// FeedParser разбирает RSS и Atom через gofeed и приводит элементы к domain.RawItem.
// Поля media:content и media:thumbnail в разных диалектах бывают одиночными
// или списками; здесь они всегда сводятся к первому элементу.
type FeedParser struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewFeedParser(log *slog.Logger) *FeedParser {
	return &FeedParser{
		parser: gofeed.NewParser(),
		log:    log,
	}
}

// Parse реализует метод интерфейса usecase.FeedParser.
func (p *FeedParser) Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := p.parser.Parse(reader)
	if err != nil {
		p.log.Error("Error parsing feed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	feed := domain.Feed{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Items:       make([]domain.RawItem, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		feed.Items = append(feed.Items, toRawItem(it))
	}
	p.log.Debug("Feed parsed",
		slog.String("feed_type", parsed.FeedType),
		slog.Int("items_found", len(feed.Items)),
	)
	return &feed, nil
}

func toRawItem(it *gofeed.Item) domain.RawItem {
	item := domain.RawItem{
		Title:       strings.TrimSpace(it.Title),
		Description: it.Description,
		Content:     it.Content,
		Link:        strings.TrimSpace(it.Link),
		GUID:        it.GUID,
		Published:   publishedAt(it),
		Enclosure:   pickEnclosure(it.Enclosures),
	}
	if media, ok := it.Extensions["media"]; ok {
		item.MediaContent = firstMedia(media, "content")
		item.MediaThumbnail = firstMedia(media, "thumbnail")
	}
	if len(it.Custom) > 0 {
		item.Custom = make(map[string]string, len(it.Custom))
		for k, v := range it.Custom {
			item.Custom[k] = v
		}
	}
	if it.Image != nil && it.Image.URL != "" {
		if item.Custom == nil {
			item.Custom = map[string]string{}
		}
		if _, ok := item.Custom["thumbnail"]; !ok {
			item.Custom["thumbnail"] = it.Image.URL
		}
	}
	return item
}

func publishedAt(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

// pickEnclosure возвращает первое вложение-картинку, а если таких нет - первое вложение.
func pickEnclosure(encs []*gofeed.Enclosure) *domain.Enclosure {
	var first *gofeed.Enclosure
	for _, e := range encs {
		if e == nil || e.URL == "" {
			continue
		}
		if first == nil {
			first = e
		}
		if strings.HasPrefix(strings.ToLower(e.Type), "image/") {
			return &domain.Enclosure{URL: e.URL, Type: e.Type}
		}
	}
	if first == nil {
		return nil
	}
	return &domain.Enclosure{URL: first.URL, Type: first.Type}
}

// firstMedia ищет media:<name> сначала на уровне элемента, затем внутри media:group.
func firstMedia(media map[string][]ext.Extension, name string) *domain.Media {
	if m := mediaFrom(media[name]); m != nil {
		return m
	}
	for _, group := range media["group"] {
		if m := mediaFrom(group.Children[name]); m != nil {
			return m
		}
	}
	return nil
}

func mediaFrom(list []ext.Extension) *domain.Media {
	for _, e := range list {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			return &domain.Media{
				URL:    u,
				Type:   e.Attrs["type"],
				Medium: e.Attrs["medium"],
			}
		}
	}
	return nil
}
