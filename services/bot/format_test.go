package bot

import (
	"strings"
	"testing"

	"scpbot-backend/services/library"

	"github.com/stretchr/testify/require"
)

func TestFormatArticle(t *testing.T) {
	line := formatArticle(library.Article{
		Url:        "https://example.org/digital-library/stillness",
		Title:      "The Practice of Stillness",
		Categories: "Meditation, Practice",
		Author:     "Ana Torres",
		Tags:       []string{"mindfulness", "breathing"},
	})

	require.Contains(t, line, "[The Practice of Stillness](https://example.org/digital-library/stillness)")
	// only the first category is shown
	require.Contains(t, line, "📂 Meditation •")
	require.Contains(t, line, "✍️ Ana Torres")
	require.Contains(t, line, "🏷️ mindfulness, breathing")
}

func TestFormatArticleFallbacks(t *testing.T) {
	line := formatArticle(library.Article{
		Url:        "https://example.org/digital-library/x",
		Title:      strings.Repeat("long title ", 20),
		Categories: "Uncategorized",
		Author:     "Unknown",
	})

	require.Contains(t, line, "📂 General")
	require.Contains(t, line, "🏷️ No tags")
	require.Contains(t, line, "...")
}

func TestFormatStats(t *testing.T) {
	out := formatStats(library.Stats{
		TotalArticles:   120,
		TotalCategories: 8,
		TotalAuthors:    15,
		TotalTags:       42,
	})
	require.Contains(t, out, "120 articles")
	require.Contains(t, out, "8 categories")
	require.Contains(t, out, "15 authors")
	require.Contains(t, out, "42 tags")
}

func TestEmbedFooter(t *testing.T) {
	embed := newEmbed("Title", "Body", colorPrimary)
	require.Equal(t, embedFooter, embed.Footer.Text)
	require.Equal(t, colorPrimary, embed.Color)
}
