package collectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/dronewatch/dronewatch/internal/models"
)

// HeadlessCollector renders a publisher's page with a headless Chrome
// instance before scraping it — for the sources in the Registry (social
// mirrors, JS-heavy news sites) whose listing never appears in the raw
// HTML response, the same problem cookie-scanner solves for analytics
// cookies that only fire after client-side scripts run.
type HeadlessCollector struct {
	listSelector  string
	titleSelector string
	navTimeout    time.Duration
}

func NewHeadlessCollector(listSelector, titleSelector string) *HeadlessCollector {
	return &HeadlessCollector{listSelector: listSelector, titleSelector: titleSelector, navTimeout: 30 * time.Second}
}

func (c *HeadlessCollector) Collect(ctx context.Context, source models.Source) ([]models.RawReport, error) {
	if source.HomepageURL == "" {
		return nil, fmt.Errorf("source %s has no homepage_url", source.Key)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	chromeCtx, cancel = context.WithTimeout(chromeCtx, c.navTimeout)
	defer cancel()

	var rendered string
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(source.HomepageURL),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp render %s: %w", source.HomepageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
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
		link, _ := item.Find("a").First().Attr("href")
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
