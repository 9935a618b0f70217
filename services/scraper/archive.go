package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"scpbot-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// safety limit on archive pagination
const maxArchivePages = 50

// ArchiveDates walks the /digital-library archive listing and maps
// article urls to their listed publication dates. The archive shows
// dates as M/D/YY; they come back normalized to 2006-01-02 so that
// string ordering matches chronological ordering.
func (c *Client) ArchiveDates(ctx context.Context, delay time.Duration) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "ArchiveDates")
	defer span.End()

	dates := map[string]string{}
	pageRef := "/digital-library"

	for page := 0; page < maxArchivePages && pageRef != ""; page++ {
		slog.DebugContext(ctx, "scraping archive page", "page", page+1, "ref", pageRef)

		res, err := c.Http.R().
			SetContext(ctx).
			Get(pageRef)
		if err != nil {
			span.RecordError(err)
			return dates, fmt.Errorf("fetch archive page %d: %w", page+1, err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			span.RecordError(err)
			return dates, fmt.Errorf("parse archive page %d: %w", page+1, err)
		}

		doc.Find("article.blog-basic-grid--container").Each(func(_ int, article *goquery.Selection) {
			href, ok := article.Find("h1.blog-title a").First().Attr("href")
			if !ok {
				return
			}
			articleUrl := c.BaseUrl.String() + href

			dateText := htmlutil.CleanText(article.Find("time.blog-date").First().Text())
			if dateText == "" {
				return
			}
			parsed, err := time.Parse("1/2/06", dateText)
			if err != nil {
				// keep the raw text rather than dropping the entry
				slog.WarnContext(ctx, "could not parse archive date", "date", dateText, "url", articleUrl)
				dates[articleUrl] = dateText
				return
			}
			dates[articleUrl] = parsed.Format("2006-01-02")
		})

		next, ok := doc.Find("div.older a").First().Attr("href")
		if !ok {
			break
		}
		pageRef = next
		time.Sleep(delay)
	}

	span.SetAttributes(attribute.Int("dates", len(dates)))
	return dates, nil
}
