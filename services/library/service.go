package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"scpbot-backend/services/library/db"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/library")

// MaxOptions is the hard cap Discord places on select menu options.
const MaxOptions = 25

// topTagCount leaves room for the "All Tags" entry in a select menu.
const topTagCount = 24

// Article is a library_content row with its tags decoded.
type Article struct {
	Url           string
	Title         string
	Categories    string
	Author        string
	PublishedDate string
	Tags          []string
	Description   string
}

type SearchOptions struct {
	// Category matches any row whose category list contains it.
	Category string
	// Author matches exactly.
	Author string
	// Tag matches against the JSON-encoded tag array.
	Tag string
	// Query is free text matched against title, categories, author,
	// tags and description.
	Query string
	Limit int64
}

type BrowseOptions struct {
	Categories []string
	Authors    []string
	Tags       []string
}

type Stats struct {
	TotalArticles   int64
	WithDescription int64
	WithDate        int64
	TotalCategories int64
	TotalAuthors    int64
	TotalTags       int64
	LastUpdate      time.Time
}

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

func decodeTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	err := json.Unmarshal([]byte(raw), &tags)
	if err != nil {
		return nil
	}
	return tags
}

// Search runs a filtered query over the library. The WHERE clause is
// assembled dynamically; sqlc cannot express optional filters so this
// one goes through database/sql directly.
func (s Service) Search(ctx context.Context, opts SearchOptions) ([]Article, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("category", opts.Category),
		attribute.String("author", opts.Author),
		attribute.String("tag", opts.Tag),
		attribute.String("query", opts.Query),
	)

	query := strings.Builder{}
	query.WriteString(`
		SELECT url, title, categories, author, published_date, tags, description
		FROM library_content
		WHERE scrape_success = 1
	`)
	var params []any

	if opts.Category != "" {
		query.WriteString(" AND categories LIKE ?")
		params = append(params, "%"+opts.Category+"%")
	}
	if opts.Author != "" {
		query.WriteString(" AND author = ?")
		params = append(params, opts.Author)
	}
	if opts.Tag != "" {
		// tags are stored as a JSON array so an exact element match
		// is a quoted substring match
		query.WriteString(" AND tags LIKE ?")
		params = append(params, `%"`+opts.Tag+`"%`)
	}
	if opts.Query != "" {
		query.WriteString(" AND (title LIKE ? OR categories LIKE ? OR author LIKE ? OR tags LIKE ? OR description LIKE ?)")
		freetext := "%" + opts.Query + "%"
		params = append(params, freetext, freetext, freetext, freetext, freetext)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	query.WriteString(" ORDER BY published_date DESC, scraped_at DESC LIMIT ?")
	params = append(params, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), params...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		var rawTags string
		err := rows.Scan(&a.Url, &a.Title, &a.Categories, &a.Author, &a.PublishedDate, &rawTags, &a.Description)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		a.Tags = decodeTags(rawTags)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("results", len(articles)))
	return articles, nil
}

// Categories returns every distinct category. Rows store a
// comma-joined list so they are split and set-unioned here.
// Get looks up a single stored article by its url.
func (s Service) Get(ctx context.Context, url string) (Article, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	row, err := s.qry.GetArticleByUrl(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Article{}, err
	}
	return Article{
		Url:           row.Url,
		Title:         row.Title,
		Categories:    row.Categories,
		Author:        row.Author,
		PublishedDate: row.PublishedDate,
		Tags:          decodeTags(row.Tags),
		Description:   row.Description,
	}, nil
}

func (s Service) Categories(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Categories")
	defer span.End()

	rows, err := s.qry.ListCategoryRows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	set := map[string]bool{}
	for _, row := range rows {
		for _, category := range strings.Split(row, ",") {
			category = strings.TrimSpace(category)
			if category != "" {
				set[category] = true
			}
		}
	}

	categories := make([]string, 0, len(set))
	for category := range set {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s Service) Authors(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Authors")
	defer span.End()

	authors, err := s.qry.ListAuthors(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return authors, nil
}

// Tags returns the most used tags, at most topTagCount of them, sorted
// alphabetically for display.
func (s Service) Tags(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Tags")
	defer span.End()

	rows, err := s.qry.ListTagRows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	counts := map[string]int{}
	for _, row := range rows {
		for _, tag := range decodeTags(row) {
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > topTagCount {
		tags = tags[:topTagCount]
	}
	sort.Strings(tags)
	return tags, nil
}

// Options collects the select menu option sets, each capped at
// MaxOptions entries.
func (s Service) Options(ctx context.Context) (BrowseOptions, error) {
	ctx, span := tracer.Start(ctx, "Options")
	defer span.End()

	categories, err := s.Categories(ctx)
	if err != nil {
		return BrowseOptions{}, err
	}
	authors, err := s.Authors(ctx)
	if err != nil {
		return BrowseOptions{}, err
	}
	tags, err := s.Tags(ctx)
	if err != nil {
		return BrowseOptions{}, err
	}

	clamp := func(values []string) []string {
		if len(values) > MaxOptions {
			return values[:MaxOptions]
		}
		return values
	}
	return BrowseOptions{
		Categories: clamp(categories),
		Authors:    clamp(authors),
		Tags:       clamp(tags),
	}, nil
}

func (s Service) Stats(ctx context.Context) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Stats")
	defer span.End()

	total, err := s.qry.CountArticles(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, err
	}
	withDescription, err := s.qry.CountArticlesWithDescription(ctx)
	if err != nil {
		return Stats{}, err
	}
	withDate, err := s.qry.CountArticlesWithDate(ctx)
	if err != nil {
		return Stats{}, err
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return Stats{}, err
	}
	authors, err := s.Authors(ctx)
	if err != nil {
		return Stats{}, err
	}
	tags, err := s.Tags(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalArticles:   total,
		WithDescription: withDescription,
		WithDate:        withDate,
		TotalCategories: int64(len(categories)),
		TotalAuthors:    int64(len(authors)),
		TotalTags:       int64(len(tags)),
	}

	last, err := s.qry.LastScrapedAt(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, err
	}
	if last.Valid {
		stats.LastUpdate = time.Unix(last.Int64, 0)
	}
	return stats, nil
}

// Validate reports whether the database holds at least one
// successfully scraped article.
func (s Service) Validate(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "Validate")
	defer span.End()

	count, err := s.qry.CountArticles(ctx)
	if err != nil {
		span.RecordError(err)
		return false
	}
	return count > 0
}

// SuggestTitles returns the n stored titles closest to query by edit
// distance, for "did you mean" hints on empty search results.
func (s Service) SuggestTitles(ctx context.Context, query string, n int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "SuggestTitles")
	defer span.End()

	titles, err := s.qry.ListTitles(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	query = strings.ToLower(query)
	distance := make(map[string]int, len(titles))
	for _, title := range titles {
		distance[title] = matchr.Levenshtein(query, strings.ToLower(title))
	}
	sort.Slice(titles, func(i, j int) bool {
		return distance[titles[i]] < distance[titles[j]]
	})
	if len(titles) > n {
		titles = titles[:n]
	}
	return titles, nil
}
