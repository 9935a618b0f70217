package cmd

import (
	"fmt"
	"os"
	"strings"

	"scpbot-backend/services/library"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().String("dir", "backups", "Directory to write the backup into.")
	backupCmd.Flags().Int("keep", 7, "Number of backups to retain.")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the library database.",
	Run: func(cmd *cobra.Command, args []string) {
		database := openDatabase()
		defer database.Close()

		stats, err := library.NewService(database).Stats(cmd.Context())
		if err != nil {
			fatal(err)
		}

		lastUpdate := "never"
		if !stats.LastUpdate.IsZero() {
			lastUpdate = stats.LastUpdate.UTC().Format("2006-01-02 15:04:05 UTC")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Articles", stats.TotalArticles},
			{"With description", stats.WithDescription},
			{"With date", stats.WithDate},
			{"Categories", stats.TotalCategories},
			{"Authors", stats.TotalAuthors},
			{"Tags", stats.TotalTags},
			{"Last update", lastUpdate},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Prints the stored row for one article.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database := openDatabase()
		defer database.Close()

		article, err := library.NewService(database).Get(cmd.Context(), args[0])
		if err != nil {
			fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Url", article.Url},
			{"Title", article.Title},
			{"Categories", article.Categories},
			{"Author", article.Author},
			{"Published", article.PublishedDate},
			{"Tags", strings.Join(article.Tags, ", ")},
			{"Description", article.Description},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Writes a compacted backup of the library database.",
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		keep, _ := cmd.Flags().GetInt("keep")

		database := openDatabase()
		defer database.Close()

		path, err := library.NewService(database).Backup(cmd.Context(), dir, keep)
		if err != nil {
			fatal(err)
		}
		fmt.Println(path)
	},
}
