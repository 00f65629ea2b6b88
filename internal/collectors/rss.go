package collectors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dronewatch/dronewatch/internal/models"
)

// RSSCollector parses an RSS/Atom feed URL. Most of the Registry's police
// and aviation-authority sources publish a feed, making this the primary
// collector kind.
type RSSCollector struct {
	client *http.Client
	parser *gofeed.Parser
}

func NewRSSCollector(client *http.Client) *RSSCollector {
	parser := gofeed.NewParser()
	parser.Client = client
	return &RSSCollector{client: client, parser: parser}
}

func (c *RSSCollector) Collect(ctx context.Context, source models.Source) ([]models.RawReport, error) {
	if source.FeedURL == "" {
		return nil, fmt.Errorf("source %s has no feed_url", source.Key)
	}

	feed, err := c.parser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source.FeedURL, err)
	}

	reports := make([]models.RawReport, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		reports = append(reports, models.RawReport{
			SourceKey:    source.Key,
			SourceURL:    item.Link,
			PublishedAt:  published,
			RawTitle:     item.Title,
			RawBody:      item.Description,
			Language:     source.Language,
			LocationHint: item.Title + " " + item.Description,
			SourceTitle:  item.Title,
		})
	}
	return reports, nil
}
