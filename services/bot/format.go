package bot

import (
	"fmt"
	"strings"

	"scpbot-backend/lib/textutil"
	"scpbot-backend/services/library"

	"github.com/bwmarrin/discordgo"
)

// embed palette, matching the Discord brand colors the community is
// used to
const (
	colorPrimary = 0x5865F2
	colorSuccess = 0x57F287
	colorWarning = 0xFEE75C
	colorError   = 0xED4245
)

const embedFooter = "Sacred Community Project Digital Library"

func newEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: embedFooter,
		},
	}
}

func errorEmbed(title, description string) *discordgo.MessageEmbed {
	return newEmbed(title, description, colorError)
}

// formatArticle renders one search hit: linked title, first category
// and author on one line, tags on the next.
func formatArticle(article library.Article) string {
	title := textutil.Truncate(article.Title, 100)

	category := article.Categories
	if category == "Uncategorized" {
		category = "General"
	}
	if idx := strings.Index(category, ","); idx >= 0 {
		category = category[:idx]
	}

	tags := "No tags"
	if len(article.Tags) > 0 {
		tags = strings.Join(article.Tags, ", ")
	}

	return fmt.Sprintf(
		"**[%s](%s)**\n📂 %s • ✍️ %s\n🏷️ %s\n",
		title,
		article.Url,
		textutil.Truncate(category, 40),
		textutil.Truncate(article.Author, 30),
		tags,
	)
}

func formatStats(stats library.Stats) string {
	return fmt.Sprintf(
		"📄 %d articles\n📂 %d categories\n✍️ %d authors\n🏷️ %d tags",
		stats.TotalArticles,
		stats.TotalCategories,
		stats.TotalAuthors,
		stats.TotalTags,
	)
}

func welcomeEmbed(stats library.Stats) *discordgo.MessageEmbed {
	return newEmbed(
		"📚 Sacred Community Project Digital Library",
		fmt.Sprintf(
			"Welcome! Use the dropdowns below to browse.\n\n📊 **Library Stats:**\n%s\n\n"+
				"*Use the Search button for keyword search and Reset to clear all filters. "+
				"This interface expires after 10 minutes of inactivity.*",
			formatStats(stats),
		),
		colorPrimary,
	)
}
