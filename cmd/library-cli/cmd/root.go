package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"scpbot-backend/lib/configutil"
	"scpbot-backend/lib/sqliteutil"
	"scpbot-backend/lib/telemetry"
	"scpbot-backend/services/library/db"
	"scpbot-backend/services/scraper"

	"github.com/spf13/cobra"
)

var (
	databasePath string
	baseUrl      string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "library-cli",
	Short: "library-cli manages the Sacred Community Project digital library database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&databasePath, "database", "data/library_content.db",
		"Path to the library sqlite database.")
	rootCmd.PersistentFlags().StringVar(
		&baseUrl, "base-url",
		configutil.EnvOverride("RSS_BASE_URL", "https://www.sacredcommunityproject.org"),
		"Base url of the site to scrape.")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Enable verbose logging.")
}

func openDatabase() *sql.DB {
	database, err := sqliteutil.OpenDB(db.Schema, databasePath)
	if err != nil {
		fatal(err)
	}
	return database
}

func openScraper(database *sql.DB) *scraper.Service {
	client, err := scraper.NewClient(scraper.ClientOptions{BaseUrl: baseUrl})
	if err != nil {
		fatal(err)
	}
	return scraper.NewService(client, database)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
