package scraper

import (
	"encoding/json"
	"strings"

	"scpbot-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PageData is the metadata pulled out of a single article page,
// destined for one library_content row.
type PageData struct {
	Url           string
	Title         string
	Categories    string
	Author        string
	PublishedDate string
	Tags          []string
	Description   string
	LastModified  string
	Success       bool
}

func (d PageData) TagsJSON() string {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, _ := json.Marshal(tags)
	return string(encoded)
}

const descriptionLimit = 300
const minParagraphLen = 50

// promotional paragraphs (store links, purchase pitches) make useless
// descriptions
var promotionalWords = []string{"order", "buy", "purchase", "copy today"}

func isPromotional(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range promotionalWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func clip(text string) string {
	if len(text) > descriptionLimit {
		return text[:descriptionLimit] + "..."
	}
	return text
}

// extractDescription takes the first substantial paragraph of the
// article body, falling back to a blockquote when the body is all
// filler.
func extractDescription(doc *goquery.Document) string {
	var description string
	doc.Find("div.sqs-html-content p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := htmlutil.CleanText(sel.Text())
		if len(text) <= minParagraphLen || isPromotional(text) {
			return true
		}
		description = clip(text)
		return false
	})
	if description != "" {
		return description
	}

	blockquote := doc.Find("blockquote").First()
	if blockquote.Length() > 0 {
		text := htmlutil.CleanText(blockquote.Text())
		if text != "" {
			return clip(text)
		}
	}
	return ""
}

// ExtractMetadata reads the article metadata out of a parsed page.
// archiveDates maps urls to dates scraped from the archive listing,
// which are more reliable than the per-page published-on field.
func ExtractMetadata(doc *goquery.Document, entry SitemapEntry, archiveDates map[string]string) PageData {
	data := PageData{
		Url:          entry.Url,
		LastModified: entry.LastMod,
		Success:      true,
	}

	data.Title = htmlutil.CleanText(doc.Find("h1.entry-title").First().Text())
	if data.Title == "" {
		data.Title = "No title found"
		data.Success = false
	}

	var categories []string
	doc.Find("div[data-content-field=categories] a.blog-item-category").Each(func(_ int, sel *goquery.Selection) {
		if category := htmlutil.CleanText(sel.Text()); category != "" {
			categories = append(categories, category)
		}
	})
	if len(categories) > 0 {
		data.Categories = strings.Join(categories, ", ")
	} else {
		data.Categories = "Uncategorized"
	}

	author := htmlutil.CleanText(doc.Find("div[data-content-field=author] a").First().Text())
	if author == "" {
		author = "Unknown"
	}
	data.Author = author

	dateElem := doc.Find("time[data-content-field=published-on]").First()
	date := dateElem.AttrOr("datetime", "")
	if date == "" {
		date = htmlutil.CleanText(dateElem.Text())
	}
	if date == "" {
		date = "Unknown"
	}
	if archiveDate, ok := archiveDates[entry.Url]; ok {
		date = archiveDate
	}
	data.PublishedDate = date

	doc.Find("div[data-content-field=tags] a.blog-item-tag").Each(func(_ int, sel *goquery.Selection) {
		if tag := htmlutil.CleanText(sel.Text()); tag != "" {
			data.Tags = append(data.Tags, tag)
		}
	})

	data.Description = extractDescription(doc)

	return data
}
