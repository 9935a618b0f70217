package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"scpbot-backend/lib/testutil"
	"scpbot-backend/services/library"
	"scpbot-backend/services/library/db"

	"github.com/stretchr/testify/require"
)

// testSite is a fake Squarespace site: a sitemap, a paginated archive
// and a couple of article pages. LastMod values are mutable so tests
// can simulate edits between runs.
type testSite struct {
	mu      sync.Mutex
	lastMod map[string]string
}

func (s *testSite) setLastMod(path, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMod[path] = value
}

func (s *testSite) sitemap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := "http://" + r.Host
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for path, lastMod := range s.lastMod {
		fmt.Fprintf(w, "<url><loc>%s%s</loc><lastmod>%s</lastmod></url>", base, path, lastMod)
	}
	fmt.Fprintf(w, "<url><loc>%s/digital-library/category/meditation</loc></url>", base)
	fmt.Fprintf(w, "<url><loc>%s/about</loc></url>", base)
	fmt.Fprint(w, `</urlset>`)
}

func (s *testSite) archive(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("offset") == "" {
		fmt.Fprint(w, `<html><body>
		<article class="blog-basic-grid--container">
			<h1 class="blog-title"><a href="/digital-library/one">One</a></h1>
			<time class="blog-date">3/1/24</time>
		</article>
		<div class="older"><a href="/digital-library?offset=2">Older</a></div>
		</body></html>`)
		return
	}
	fmt.Fprint(w, `<html><body>
	<article class="blog-basic-grid--container">
		<h1 class="blog-title"><a href="/digital-library/two">Two</a></h1>
		<time class="blog-date">5/12/24</time>
	</article>
	</body></html>`)
}

func articlePage(title, author string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
		<h1 class="entry-title">%s</h1>
		<div data-content-field="categories"><a class="blog-item-category">Meditation</a></div>
		<div data-content-field="author"><a>%s</a></div>
		<time data-content-field="published-on" datetime="2024-01-01">January 1, 2024</time>
		<div data-content-field="tags"><a class="blog-item-tag">mindfulness</a></div>
		<div class="sqs-html-content">
			<p>This paragraph is certainly long enough to serve as the description of the article in question.</p>
		</div>
		</body></html>`, title, author)
	}
}

func setupScrapeTest(t *testing.T) (*Service, *testSite, *db.Queries) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/scraper",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	site := &testSite{lastMod: map[string]string{
		"/digital-library/one": "2024-03-02",
		"/digital-library/two": "2024-05-13",
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", site.sitemap)
	mux.HandleFunc("/digital-library", site.archive)
	mux.HandleFunc("/digital-library/one", articlePage("Article One", "Ana Torres"))
	mux.HandleFunc("/digital-library/two", articlePage("Article Two", "Ben Okafor"))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	service := NewService(client, setup.DB)
	service.Delay = 0
	service.RetryWait = 0

	return service, site, db.New(setup.DB)
}

func TestFullScrape(t *testing.T) {
	service, _, qry := setupScrapeTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	stats, err := service.Full(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2, stats.ArticlesFound)
	require.Equal(t, 2, stats.PagesScraped)
	require.Equal(t, 2, stats.Successful)
	require.Equal(t, 0, stats.Errors)
	require.Equal(t, 2, stats.DatesExtracted)

	count, err := qry.CountArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.EqualValues(t, 2, count)

	// the archive listing date wins over the page's published-on field
	lib := library.NewService(service.db)
	results, err := lib.Search(ctx, library.SearchOptions{Query: "Article One"})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, results, 1)
	require.Equal(t, "2024-03-01", results[0].PublishedDate)
	require.Equal(t, "Ana Torres", results[0].Author)
	require.Equal(t, []string{"mindfulness"}, results[0].Tags)

	runs, err := qry.ListScrapeRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 1)
}

func TestCheckAndUpdate(t *testing.T) {
	service, site, qry := setupScrapeTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := service.Full(ctx)
	if err != nil {
		t.Fatal(err)
	}

	{
		diff, err := service.Check(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, diff.New)
		require.Empty(t, diff.Updated)
	}

	site.setLastMod("/digital-library/one", "2024-06-01")
	site.setLastMod("/digital-library/three", "2024-06-02")

	{
		diff, err := service.Check(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, diff.Updated, 1)
		require.Len(t, diff.New, 1)
	}

	// /digital-library/three 404s, so the update logs one error and
	// still succeeds for the changed article
	stats, err := service.Update(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, stats.PagesScraped)
	require.Equal(t, 1, stats.Successful)
	require.Equal(t, 1, stats.Errors)

	runs, err := qry.ListUpdateRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 1)

	{
		diff, err := service.Check(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, diff.Updated)
	}
}
