package scraper

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"scpbot-backend/services/library/db"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/scraper")

type Service struct {
	client *Client
	db     *sql.DB
	qry    *db.Queries

	// Delay is the pause between page requests. The library is a small
	// third-party site so scraping stays deliberately slow.
	Delay time.Duration
	// Retries is how many times a page fetch is attempted.
	Retries int
	// RetryWait is the pause before a retry.
	RetryWait time.Duration
}

func NewService(client *Client, database *sql.DB) *Service {
	return &Service{
		client:    client,
		db:        database,
		qry:       db.New(database),
		Delay:     1500 * time.Millisecond,
		Retries:   3,
		RetryWait: 2 * time.Second,
	}
}

// RunStats summarizes a scrape run.
type RunStats struct {
	UrlsFound      int
	ArticlesFound  int
	PagesScraped   int
	Successful     int
	Errors         int
	DatesExtracted int
	Duration       time.Duration
}

// Diff is the result of comparing the sitemap against stored state.
type Diff struct {
	New     []SitemapEntry
	Updated []SitemapEntry
}

func (d Diff) Entries() []SitemapEntry {
	return append(append([]SitemapEntry{}, d.New...), d.Updated...)
}

func (s *Service) scrapePage(ctx context.Context, entry SitemapEntry, archiveDates map[string]string) (PageData, error) {
	ctx, span := tracer.Start(ctx, "scrapePage")
	defer span.End()
	span.SetAttributes(attribute.String("url", entry.Url))

	var lastErr error
	for attempt := 0; attempt < s.Retries; attempt++ {
		res, err := s.client.Http.R().
			SetContext(ctx).
			Get(entry.Url)
		if err == nil && res.IsError() {
			err = fmt.Errorf("fetch %s: status %d", entry.Url, res.StatusCode())
		}
		if err != nil {
			lastErr = err
			slog.WarnContext(ctx, "page fetch failed", "url", entry.Url, "attempt", attempt+1, "err", err)
			if attempt < s.Retries-1 {
				time.Sleep(s.RetryWait)
			}
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse html")
			return PageData{}, err
		}
		return ExtractMetadata(doc, entry, archiveDates), nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return PageData{}, lastErr
}

func (s *Service) store(ctx context.Context, data PageData) error {
	success := int64(0)
	if data.Success {
		success = 1
	}
	return s.qry.UpsertArticle(ctx, db.UpsertArticleParams{
		Url:           data.Url,
		Title:         data.Title,
		Categories:    data.Categories,
		Author:        data.Author,
		PublishedDate: data.PublishedDate,
		Tags:          data.TagsJSON(),
		Description:   data.Description,
		LastModified:  data.LastModified,
		ScrapedAt:     time.Now().Unix(),
		ScrapeSuccess: success,
	})
}

func (s *Service) scrapeAll(ctx context.Context, entries []SitemapEntry, archiveDates map[string]string, stats *RunStats) error {
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		slog.InfoContext(ctx, "scraping article", "n", i+1, "total", len(entries), "url", entry.Url)

		data, err := s.scrapePage(ctx, entry, archiveDates)
		if err != nil {
			stats.Errors++
			continue
		}

		err = s.store(ctx, data)
		if err != nil {
			slog.ErrorContext(ctx, "failed to store article", "url", entry.Url, "err", err)
			stats.Errors++
			continue
		}
		stats.PagesScraped++
		if data.Success {
			stats.Successful++
		}

		time.Sleep(s.Delay)
	}
	return nil
}

// Full rebuilds the whole mirror: sitemap discovery, article
// filtering, archive date extraction, then a page-by-page scrape.
func (s *Service) Full(ctx context.Context) (RunStats, error) {
	ctx, span := tracer.Start(ctx, "Full")
	defer span.End()

	start := time.Now()
	var stats RunStats

	entries, err := s.client.FetchSitemap(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	stats.UrlsFound = len(entries)

	articles := FilterArticles(entries)
	stats.ArticlesFound = len(articles)
	if len(articles) == 0 {
		return stats, fmt.Errorf("no article urls found in sitemap (%d urls total)", len(entries))
	}

	archiveDates, err := s.client.ArchiveDates(ctx, s.Delay)
	if err != nil {
		// per-page dates still work without the archive map
		slog.WarnContext(ctx, "archive date extraction incomplete", "dates", len(archiveDates), "err", err)
	}
	stats.DatesExtracted = len(archiveDates)

	err = s.scrapeAll(ctx, articles, archiveDates, &stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	stats.Duration = time.Since(start)
	err = s.qry.InsertScrapeRun(ctx, db.InsertScrapeRunParams{
		RunDate:         time.Now().Unix(),
		UrlsFound:       int64(stats.UrlsFound),
		ArticlesFound:   int64(stats.ArticlesFound),
		PagesScraped:    int64(stats.PagesScraped),
		Errors:          int64(stats.Errors),
		DurationMinutes: stats.Duration.Minutes(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to log scrape run", "err", err)
	}

	slog.InfoContext(ctx, "full scrape complete",
		"urls", stats.UrlsFound,
		"articles", stats.ArticlesFound,
		"scraped", stats.PagesScraped,
		"errors", stats.Errors,
		"minutes", stats.Duration.Minutes(),
	)
	return stats, nil
}

// Check diffs the sitemap against stored state without fetching any
// article pages: unknown urls are new, known urls whose lastmod moved
// need a rescrape.
func (s *Service) Check(ctx context.Context) (Diff, error) {
	ctx, span := tracer.Start(ctx, "Check")
	defer span.End()

	entries, err := s.client.FetchSitemap(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Diff{}, err
	}
	articles := FilterArticles(entries)

	state, err := s.qry.ListSyncState(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Diff{}, err
	}
	stored := make(map[string]string, len(state))
	for _, row := range state {
		stored[row.Url] = row.LastModified
	}

	var diff Diff
	for _, entry := range articles {
		lastmod, known := stored[entry.Url]
		if !known {
			diff.New = append(diff.New, entry)
			continue
		}
		if entry.LastMod != "" && entry.LastMod != lastmod {
			diff.Updated = append(diff.Updated, entry)
		}
	}

	span.SetAttributes(
		attribute.Int("new", len(diff.New)),
		attribute.Int("updated", len(diff.Updated)),
	)
	slog.InfoContext(ctx, "update check complete", "new", len(diff.New), "updated", len(diff.Updated))
	return diff, nil
}

// Update scrapes only the articles Check flags as new or changed.
func (s *Service) Update(ctx context.Context) (RunStats, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()

	start := time.Now()
	var stats RunStats

	diff, err := s.Check(ctx)
	if err != nil {
		return stats, err
	}
	entries := diff.Entries()
	if len(entries) == 0 {
		slog.InfoContext(ctx, "library is up to date")
		return stats, nil
	}
	stats.ArticlesFound = len(entries)

	archiveDates, err := s.client.ArchiveDates(ctx, s.Delay)
	if err != nil {
		slog.WarnContext(ctx, "archive date extraction incomplete", "dates", len(archiveDates), "err", err)
	}
	stats.DatesExtracted = len(archiveDates)

	err = s.scrapeAll(ctx, entries, archiveDates, &stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	stats.Duration = time.Since(start)

	total, err := s.qry.CountArticles(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count articles", "err", err)
	}
	err = s.qry.InsertUpdateRun(ctx, db.InsertUpdateRunParams{
		UpdateDate:        time.Now().Unix(),
		ArticlesChecked:   total,
		ArticlesUpdated:   int64(len(entries)),
		SuccessfulUpdates: int64(stats.Successful),
		DurationMinutes:   stats.Duration.Minutes(),
		UpdateType:        "incremental",
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to log update run", "err", err)
	}

	slog.InfoContext(ctx, "incremental update complete",
		"updated", len(entries),
		"successful", stats.Successful,
		"errors", stats.Errors,
		"minutes", stats.Duration.Minutes(),
	)
	return stats, nil
}
