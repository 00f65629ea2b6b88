package collectors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dronewatch/dronewatch/internal/models"
)

// HTMLCollector scrapes a publisher's plain HTML listing page — for
// sources that publish neither a feed nor render their listing via
// client-side JavaScript. The list and title selectors are CSS selectors
// scoped to one source, since every publisher's markup differs, and the
// link is the href of the first anchor in each list item; KeywordHints on the Source narrows which list items even get
// parsed, cutting wasted work on sites that mix drone reports with
// unrelated news.
type HTMLCollector struct {
	client         *http.Client
	listSelector   string
	titleSelector  string
	linkAttr       string
}

func NewHTMLCollector(client *http.Client, listSelector, titleSelector string) *HTMLCollector {
	return &HTMLCollector{client: client, listSelector: listSelector, titleSelector: titleSelector, linkAttr: "href"}
}

func (c *HTMLCollector) Collect(ctx context.Context, source models.Source) ([]models.RawReport, error) {
	if source.HomepageURL == "" {
		return nil, fmt.Errorf("source %s has no homepage_url", source.Key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.HomepageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source.HomepageURL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", source.HomepageURL, err)
	}

	var reports []models.RawReport
	doc.Find(c.listSelector).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(c.titleSelector).First().Text())
		if title == "" {
			return
		}
		if !matchesAnyHint(title, source.KeywordHints) {
			return
		}
		link, _ := item.Find("a").First().Attr(c.linkAttr)
		if link == "" {
			link = source.HomepageURL
		}

		reports = append(reports, models.RawReport{
			SourceKey:    source.Key,
			SourceURL:    link,
			PublishedAt:  time.Now().UTC(),
			RawTitle:     title,
			Language:     source.Language,
			LocationHint: title,
			SourceTitle:  title,
		})
	})

	return reports, nil
}

func matchesAnyHint(text string, hints []string) bool {
	if len(hints) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, h := range hints {
		if strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}
