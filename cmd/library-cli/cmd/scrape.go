package cmd

import (
	"fmt"
	"os"
	"time"

	"scpbot-backend/services/scraper"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fullCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(checkCmd)
}

func printRunStats(stats scraper.RunStats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRows([]table.Row{
		{"Urls found", stats.UrlsFound},
		{"Articles found", stats.ArticlesFound},
		{"Pages scraped", stats.PagesScraped},
		{"Successful", stats.Successful},
		{"Errors", stats.Errors},
		{"Archive dates", stats.DatesExtracted},
		{"Duration", stats.Duration.Round(time.Second)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Scrapes every article on the site and rebuilds the database.",
	Run: func(cmd *cobra.Command, args []string) {
		database := openDatabase()
		defer database.Close()

		stats, err := openScraper(database).Full(cmd.Context())
		if err != nil {
			fatal(err)
		}
		printRunStats(stats)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Scrapes only articles that are new or changed since the last run.",
	Run: func(cmd *cobra.Command, args []string) {
		database := openDatabase()
		defer database.Close()

		stats, err := openScraper(database).Update(cmd.Context())
		if err != nil {
			fatal(err)
		}
		printRunStats(stats)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Lists articles that would be scraped by an update, without scraping.",
	Run: func(cmd *cobra.Command, args []string) {
		database := openDatabase()
		defer database.Close()

		diff, err := openScraper(database).Check(cmd.Context())
		if err != nil {
			fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Status", "Url", "Last Modified"})
		for _, entry := range diff.New {
			t.AppendRow(table.Row{"new", entry.Url, entry.LastMod})
		}
		for _, entry := range diff.Updated {
			t.AppendRow(table.Row{"updated", entry.Url, entry.LastMod})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Printf("%d new, %d updated\n", len(diff.New), len(diff.Updated))
	},
}
