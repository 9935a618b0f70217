package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const articleHtml = `
<html><body>
<h1 class="entry-title">  The Practice of Stillness  </h1>
<div data-content-field="categories">
	<a class="blog-item-category">Meditation</a>
	<a class="blog-item-category">Practice</a>
</div>
<div data-content-field="author"><a>Ana Torres</a></div>
<time data-content-field="published-on" datetime="2024-03-01">March 1, 2024</time>
<div data-content-field="tags">
	<a class="blog-item-tag">mindfulness</a>
	<a class="blog-item-tag">breathing</a>
</div>
<div class="sqs-html-content">
	<p>Short.</p>
	<p>Order your copy today from our store and support the community with your purchase.</p>
	<p>Stillness is not the absence of movement but the presence of attention, a capacity anyone can grow with daily practice.</p>
</div>
</body></html>`

func parseDoc(t *testing.T, raw string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractMetadata(t *testing.T) {
	entry := SitemapEntry{
		Url:     "https://example.org/digital-library/stillness",
		LastMod: "2024-03-02T10:00:00Z",
	}
	got := ExtractMetadata(parseDoc(t, articleHtml), entry, nil)

	want := PageData{
		Url:           entry.Url,
		Title:         "The Practice of Stillness",
		Categories:    "Meditation, Practice",
		Author:        "Ana Torres",
		PublishedDate: "2024-03-01",
		Tags:          []string{"mindfulness", "breathing"},
		Description:   "Stillness is not the absence of movement but the presence of attention, a capacity anyone can grow with daily practice.",
		LastModified:  entry.LastMod,
		Success:       true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMetadataArchiveDateWins(t *testing.T) {
	entry := SitemapEntry{Url: "https://example.org/digital-library/stillness"}
	archiveDates := map[string]string{entry.Url: "2024-02-14"}

	got := ExtractMetadata(parseDoc(t, articleHtml), entry, archiveDates)
	require.Equal(t, "2024-02-14", got.PublishedDate)
}

func TestExtractMetadataMissingFields(t *testing.T) {
	raw := `<html><body><div class="sqs-html-content"><p>Too short.</p></div></body></html>`
	got := ExtractMetadata(parseDoc(t, raw), SitemapEntry{Url: "https://example.org/digital-library/x"}, nil)

	require.False(t, got.Success)
	require.Equal(t, "No title found", got.Title)
	require.Equal(t, "Uncategorized", got.Categories)
	require.Equal(t, "Unknown", got.Author)
	require.Equal(t, "Unknown", got.PublishedDate)
	require.Empty(t, got.Tags)
	require.Empty(t, got.Description)
	require.Equal(t, "[]", got.TagsJSON())
}

func TestExtractDescriptionBlockquoteFallback(t *testing.T) {
	raw := `<html><body>
	<h1 class="entry-title">Quoted</h1>
	<div class="sqs-html-content"><p>Buy now and order your copy today, this paragraph is long enough but promotional.</p></div>
	<blockquote>What we attend to, we become.</blockquote>
	</body></html>`

	got := ExtractMetadata(parseDoc(t, raw), SitemapEntry{Url: "https://example.org/digital-library/q"}, nil)
	require.Equal(t, "What we attend to, we become.", got.Description)
}

func TestExtractDescriptionClipped(t *testing.T) {
	long := strings.Repeat("attention ", 60)
	raw := `<html><body><h1 class="entry-title">Long</h1>
	<div class="sqs-html-content"><p>` + long + `</p></div></body></html>`

	got := ExtractMetadata(parseDoc(t, raw), SitemapEntry{Url: "https://example.org/digital-library/l"}, nil)
	require.True(t, strings.HasSuffix(got.Description, "..."))
	require.Len(t, got.Description, descriptionLimit+3)
}
