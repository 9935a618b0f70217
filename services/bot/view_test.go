package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"scpbot-backend/lib/testutil"
	"scpbot-backend/services/library"
	"scpbot-backend/services/library/db"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func testArticles(n int) []library.Article {
	articles := make([]library.Article, n)
	for i := range articles {
		articles[i] = library.Article{
			Url:        fmt.Sprintf("https://example.org/digital-library/a%d", i),
			Title:      fmt.Sprintf("Article %d", i),
			Categories: "Meditation",
			Author:     "Ana Torres",
		}
	}
	return articles
}

func TestViewPagination(t *testing.T) {
	view := &libraryView{results: testArticles(12), searched: true}

	require.Equal(t, 3, view.pageCount())
	require.Len(t, view.pageSlice(), resultsPerPage)

	view.page = 2
	require.Len(t, view.pageSlice(), 2)

	view.page = 5
	require.Empty(t, view.pageSlice())

	empty := &libraryView{}
	require.Equal(t, 1, empty.pageCount())
}

func TestViewEmbed(t *testing.T) {
	view := &libraryView{stats: library.Stats{TotalArticles: 3}}
	require.Contains(t, view.embed().Description, "3 articles")

	view.searched = true
	view.category = "Meditation"
	view.query = "stillness"
	view.results = testArticles(7)

	embed := view.embed()
	require.Contains(t, embed.Description, "📂 Meditation")
	require.Contains(t, embed.Description, `🔍 "stillness"`)
	require.Contains(t, embed.Title, "7 found")
	require.Contains(t, embed.Footer.Text, "Page 1/2")
}

func TestViewEmbedNoResults(t *testing.T) {
	view := &libraryView{searched: true}
	embed := view.embed()
	require.Contains(t, embed.Title, "0 found")
	require.Equal(t, colorWarning, embed.Color)
	require.NotContains(t, embed.Description, "Did you mean")

	view.suggestions = []string{"Morning Meditation Practice", "Healing in Community"}
	embed = view.embed()
	require.Contains(t, embed.Description, "Did you mean")
	require.Contains(t, embed.Description, "• Morning Meditation Practice")
}

func TestViewRefreshSuggestions(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/bot",
		DbSchema: db.Schema,
	})
	defer cleanup()
	lib := library.NewService(setup.DB)
	qry := db.New(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := qry.UpsertArticle(ctx, db.UpsertArticleParams{
		Url:           "https://example.org/digital-library/morning-meditation",
		Title:         "Morning Meditation Practice",
		Tags:          "[]",
		ScrapedAt:     time.Now().Unix(),
		ScrapeSuccess: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	view := &libraryView{query: "morning meditaton practise"}
	if err := view.refresh(ctx, lib); err != nil {
		t.Fatal(err)
	}
	require.Empty(t, view.results)
	require.Equal(t, []string{"Morning Meditation Practice"}, view.suggestions)

	view.query = "meditation"
	if err := view.refresh(ctx, lib); err != nil {
		t.Fatal(err)
	}
	require.Len(t, view.results, 1)
	require.Empty(t, view.suggestions)
}

func TestSelectRowDefaults(t *testing.T) {
	row := selectRow(customCategorySelect, "📂 Filter by category", "All Categories",
		[]string{"Meditation", "Community"}, "Community")

	menu := row.Components[0].(discordgo.SelectMenu)
	require.Equal(t, customCategorySelect, menu.CustomID)
	require.Len(t, menu.Options, 3)
	require.Equal(t, "All Categories", menu.Options[0].Label)
	require.Equal(t, valueAll, menu.Options[0].Value)
	require.False(t, menu.Options[0].Default)
	require.True(t, menu.Options[2].Default)
}

func TestViewComponents(t *testing.T) {
	view := &libraryView{
		options: library.BrowseOptions{
			Categories: []string{"Meditation"},
			Authors:    []string{"Ana Torres"},
			Tags:       []string{"mindfulness"},
		},
		results:  testArticles(12),
		searched: true,
	}

	components := view.components()
	require.Len(t, components, 4)

	buttons := components[3].(discordgo.ActionsRow)
	search := buttons.Components[0].(discordgo.Button)
	require.Equal(t, "🔍", search.Emoji.Name)
	prev := buttons.Components[2].(discordgo.Button)
	next := buttons.Components[3].(discordgo.Button)
	require.True(t, prev.Disabled)
	require.False(t, next.Disabled)

	view.page = 2
	components = view.components()
	buttons = components[3].(discordgo.ActionsRow)
	prev = buttons.Components[2].(discordgo.Button)
	next = buttons.Components[3].(discordgo.Button)
	require.False(t, prev.Disabled)
	require.True(t, next.Disabled)
}

func TestViewRegistryExpiry(t *testing.T) {
	registry := newViewRegistry()

	fresh := &libraryView{lastActive: time.Now()}
	stale := &libraryView{lastActive: time.Now().Add(-time.Hour)}
	registry.add("fresh", fresh)
	registry.add("stale", stale)

	expired := registry.expired(defaultViewTimeout)
	require.Len(t, expired, 1)
	require.Contains(t, expired, "stale")

	_, ok := registry.get("stale")
	require.False(t, ok)
	_, ok = registry.get("fresh")
	require.True(t, ok)
}
