package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsArticleURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.org/digital-library/sacred-mornings", true},
		{"https://example.org/digital-library/some-article-title", true},
		{"https://example.org/digital-library", false},
		{"https://example.org/digital-library/", false},
		{"https://example.org/digital-library/category/meditation", false},
		{"https://example.org/digital-library/tag/healing", false},
		{"https://example.org/digital-library/all-about-category/x", false},
		{"https://example.org/digital-library/my-favorite-tag/y", false},
		{"https://example.org/digital-library?offset=10", false},
		{"https://example.org/digital-library/article?author=123", false},
		{"https://example.org/about", false},
		{"https://example.org/", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, IsArticleURL(c.url), c.url)
	}
}

func TestFilterArticles(t *testing.T) {
	entries := []SitemapEntry{
		{Url: "https://example.org/digital-library/one", LastMod: "2024-01-01"},
		{Url: "https://example.org/digital-library/category/x"},
		{Url: "https://example.org/digital-library/two", LastMod: "2024-02-01"},
		{Url: "https://example.org/contact"},
	}
	articles := FilterArticles(entries)
	require.Len(t, articles, 2)
	require.Equal(t, "https://example.org/digital-library/one", articles[0].Url)
	require.Equal(t, "https://example.org/digital-library/two", articles[1].Url)
}
