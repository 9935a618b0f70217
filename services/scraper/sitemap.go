package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SitemapEntry is a single <url> element: the page address plus the
// optional last modification date the site advertises for it.
type SitemapEntry struct {
	Url     string
	LastMod string
}

type sitemapUrl struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

type sitemapDoc struct {
	XMLName  xml.Name
	Urls     []sitemapUrl `xml:"url"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// FetchSitemap discovers every url the site advertises. Both
// /sitemap.xml and /sitemap.index.xml are tried since Squarespace has
// served either over time; index files are followed one level deep.
func (c *Client) FetchSitemap(ctx context.Context) ([]SitemapEntry, error) {
	ctx, span := tracer.Start(ctx, "FetchSitemap")
	defer span.End()

	var entries []SitemapEntry
	seen := map[string]bool{}
	var lastErr error

	for _, path := range []string{"/sitemap.xml", "/sitemap.index.xml"} {
		found, err := c.fetchSitemapDoc(ctx, path)
		if err != nil {
			span.RecordError(err)
			lastErr = err
			continue
		}
		for _, entry := range found {
			if seen[entry.Url] {
				continue
			}
			seen[entry.Url] = true
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 && lastErr != nil {
		span.SetStatus(codes.Error, lastErr.Error())
		return nil, fmt.Errorf("fetch sitemap: %w", lastErr)
	}
	span.SetAttributes(attribute.Int("urls", len(entries)))
	return entries, nil
}

func (c *Client) fetchSitemapDoc(ctx context.Context, ref string) ([]SitemapEntry, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(ref)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", ref, res.StatusCode())
	}

	var doc sitemapDoc
	err = xml.Unmarshal(res.Body(), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref, err)
	}

	if doc.XMLName.Local == "sitemapindex" {
		var entries []SitemapEntry
		for _, sub := range doc.Sitemaps {
			subEntries, err := c.fetchSitemapDoc(ctx, sub.Loc)
			if err != nil {
				return nil, err
			}
			entries = append(entries, subEntries...)
		}
		return entries, nil
	}

	entries := make([]SitemapEntry, 0, len(doc.Urls))
	for _, u := range doc.Urls {
		if u.Loc == "" {
			continue
		}
		entries = append(entries, SitemapEntry{
			Url:     strings.TrimSpace(u.Loc),
			LastMod: strings.TrimSpace(u.LastMod),
		})
	}
	return entries, nil
}

// IsArticleURL reports whether a sitemap url points at an actual
// library article rather than the index, a category/tag listing or a
// query-string filter view.
func IsArticleURL(u string) bool {
	if !strings.Contains(u, "/digital-library") {
		return false
	}
	if strings.HasSuffix(u, "/digital-library") || strings.HasSuffix(u, "/digital-library/") {
		return false
	}
	if strings.Contains(u, "/digital-library/category/") {
		return false
	}
	if strings.Contains(u, "/digital-library/tag/") {
		return false
	}
	if strings.Contains(u, "?author=") || strings.Contains(u, "&author=") {
		return false
	}
	if strings.Contains(u, "/digital-library?") {
		return false
	}
	return strings.Contains(u, "/digital-library/") &&
		!strings.Contains(u, "category/") &&
		!strings.Contains(u, "tag/") &&
		!strings.Contains(u, "?")
}

// FilterArticles keeps the entries IsArticleURL accepts.
func FilterArticles(entries []SitemapEntry) []SitemapEntry {
	var articles []SitemapEntry
	for _, entry := range entries {
		if IsArticleURL(entry.Url) {
			articles = append(articles, entry)
		}
	}
	return articles
}
