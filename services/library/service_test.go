package library

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"scpbot-backend/lib/testutil"
	"scpbot-backend/services/library/db"

	"github.com/stretchr/testify/require"
)

func seedArticle(t *testing.T, qry *db.Queries, params db.UpsertArticleParams) {
	if params.ScrapedAt == 0 {
		params.ScrapedAt = time.Now().Unix()
	}
	if params.ScrapeSuccess == 0 {
		params.ScrapeSuccess = 1
	}
	if params.Tags == "" {
		params.Tags = "[]"
	}
	err := qry.UpsertArticle(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
}

func TestService(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/library",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)
	qry := db.New(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	seedArticle(t, qry, db.UpsertArticleParams{
		Url:           "https://example.org/digital-library/morning-meditation",
		Title:         "Morning Meditation Practice",
		Categories:    "Meditation, Practice",
		Author:        "Ana Torres",
		PublishedDate: "2024-03-01",
		Tags:          `["mindfulness", "breathing"]`,
		Description:   "A practical guide to starting the day with stillness.",
	})
	seedArticle(t, qry, db.UpsertArticleParams{
		Url:           "https://example.org/digital-library/community-healing",
		Title:         "Healing in Community",
		Categories:    "Community",
		Author:        "Ben Okafor",
		PublishedDate: "2024-05-12",
		Tags:          `["healing", "mindfulness"]`,
		Description:   "How shared ritual supports recovery.",
	})
	seedArticle(t, qry, db.UpsertArticleParams{
		Url:           "https://example.org/digital-library/untitled-draft",
		Title:         "Sacred Space at Home",
		Categories:    "Uncategorized",
		Author:        "Unknown",
		PublishedDate: "Unknown",
	})

	{
		results, err := service.Search(ctx, SearchOptions{Query: "meditation"})
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, results, 1)
		require.Equal(t, "Morning Meditation Practice", results[0].Title)
		require.Equal(t, []string{"mindfulness", "breathing"}, results[0].Tags)
	}
	{
		results, err := service.Search(ctx, SearchOptions{Category: "Community"})
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, results, 1)
		require.Equal(t, "Healing in Community", results[0].Title)
	}
	{
		results, err := service.Search(ctx, SearchOptions{Author: "Ana Torres"})
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, results, 1)
	}
	{
		results, err := service.Search(ctx, SearchOptions{Tag: "mindfulness"})
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, results, 2)
		// newest published first
		require.Equal(t, "Healing in Community", results[0].Title)
	}
	{
		results, err := service.Search(ctx, SearchOptions{Limit: 1})
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, results, 1)
	}
	{
		results, err := service.Search(ctx, SearchOptions{Query: "no such thing anywhere"})
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, results)
	}

	{
		categories, err := service.Categories(ctx)
		if err != nil {
			t.Fatal(err)
		}
		// "Uncategorized" is a storage default, not a browsable category
		require.Equal(t, []string{"Community", "Meditation", "Practice"}, categories)
	}
	{
		authors, err := service.Authors(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Contains(t, authors, "Ana Torres")
		require.Contains(t, authors, "Ben Okafor")
	}
	{
		tags, err := service.Tags(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []string{"breathing", "healing", "mindfulness"}, tags)
	}
	{
		options, err := service.Options(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.NotEmpty(t, options.Categories)
		require.LessOrEqual(t, len(options.Categories), MaxOptions)
		require.LessOrEqual(t, len(options.Authors), MaxOptions)
		require.LessOrEqual(t, len(options.Tags), MaxOptions)
	}

	{
		stats, err := service.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.EqualValues(t, 3, stats.TotalArticles)
		require.EqualValues(t, 2, stats.WithDescription)
		require.EqualValues(t, 2, stats.WithDate)
		require.EqualValues(t, 3, stats.TotalCategories)
		require.EqualValues(t, 3, stats.TotalTags)
		require.False(t, stats.LastUpdate.IsZero())
	}

	{
		article, err := service.Get(ctx, "https://example.org/digital-library/morning-meditation")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "Morning Meditation Practice", article.Title)
		require.Equal(t, []string{"mindfulness", "breathing"}, article.Tags)

		_, err = service.Get(ctx, "https://example.org/digital-library/missing")
		require.Error(t, err)
	}

	{
		require.True(t, service.Validate(ctx))
	}

	{
		suggestions, err := service.SuggestTitles(ctx, "Morning Meditaton Practise", 2)
		if err != nil {
			t.Fatal(err)
		}
		require.NotEmpty(t, suggestions)
		require.Equal(t, "Morning Meditation Practice", suggestions[0])
	}
}

func TestOptionsClamped(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/library",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)
	qry := db.New(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	rndm := rand.New(rand.NewSource(0))
	hasTags := testutil.RandomSwitch(1, 1)
	for i := 0; i < 60; i++ {
		params := db.UpsertArticleParams{
			Url:        fmt.Sprintf("https://example.org/digital-library/%s", testutil.RandomString(rndm, 12)),
			Title:      testutil.RandomString(rndm, 20),
			Categories: testutil.RandomString(rndm, 8),
			Author:     testutil.RandomString(rndm, 10),
		}
		if hasTags(rndm) == 1 {
			params.Tags = fmt.Sprintf(`["%s"]`, testutil.RandomString(rndm, 6))
		}
		seedArticle(t, qry, params)
	}

	options, err := service.Options(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, options.Categories, MaxOptions)
	require.Len(t, options.Authors, MaxOptions)
	require.LessOrEqual(t, len(options.Tags), MaxOptions)
}

func TestSearchUpsertOverwrites(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/library",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)
	qry := db.New(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	seedArticle(t, qry, db.UpsertArticleParams{
		Url:    "https://example.org/digital-library/revised",
		Title:  "First Title",
		Author: "Someone",
	})
	seedArticle(t, qry, db.UpsertArticleParams{
		Url:    "https://example.org/digital-library/revised",
		Title:  "Revised Title",
		Author: "Someone",
	})

	results, err := service.Search(ctx, SearchOptions{Query: "revised"})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, results, 1)
	require.Equal(t, "Revised Title", results[0].Title)
}
