package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"time"

	"scpbot-backend/lib/configutil"
	"scpbot-backend/lib/serviceutil"
	"scpbot-backend/lib/sqliteutil"
	"scpbot-backend/services/bot"
	"scpbot-backend/services/library"
	"scpbot-backend/services/library/db"
	"scpbot-backend/services/scraper"

	"github.com/robfig/cron/v3"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialScrape := flag.Bool("scrape", false, "Trigger a full scrape immediately on run.")
	flag.Parse()

	if configutil.EnvOverride("DEBUG_MODE", "") == "true" {
		*verbose = true
	}

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := ReadServerConfig()
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	database, err := sqliteutil.OpenDB(db.Schema, cfg.Library.Database)
	if err != nil {
		serviceutil.Fatal("open library database", err)
	}
	libraryService := library.NewService(database)

	client, err := scraper.NewClient(scraper.ClientOptions{
		BaseUrl: cfg.Scraper.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("create scraper client", err)
	}
	scraperService := scraper.NewService(client, database)

	if *initialScrape {
		slog.Info("scraping library on start")
		go func() {
			scrapeCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			_, err := scraperService.Full(scrapeCtx)
			if err != nil {
				slog.ErrorContext(ctx, "initial scrape failed", "err", err)
			}
		}()
	}

	startSchedules(ctx, cfg, libraryService, scraperService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/statz", func(w http.ResponseWriter, r *http.Request) {
		stats, err := libraryService.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})
	go serviceutil.StartHttpServer(cfg.Port, mux)

	botService, err := bot.NewService(bot.Config{
		Token:      cfg.Bot.Token,
		AdminRoles: cfg.Bot.AdminRoles,
	}, libraryService, scraperService)
	if err != nil {
		serviceutil.Fatal("create bot", err)
	}

	err = botService.Start(ctx)
	if err != nil {
		serviceutil.Fatal("run bot", err)
	}
}

// startSchedules wires the cron jobs the deployment used to run out
// of process: incremental library updates and database backups.
func startSchedules(ctx context.Context, cfg Config, lib library.Service, scr *scraper.Service) {
	c := cron.New()

	if cfg.Scraper.UpdateSchedule != "" {
		_, err := c.AddFunc(cfg.Scraper.UpdateSchedule, func() {
			updateCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			stats, err := scr.Update(updateCtx)
			if err != nil {
				slog.ErrorContext(ctx, "scheduled update failed", "err", err)
				return
			}
			slog.InfoContext(ctx, "scheduled update finished",
				"scraped", stats.PagesScraped,
				"errors", stats.Errors)
		})
		if err != nil {
			serviceutil.Fatal("schedule updates", err)
		}
	}

	if cfg.Library.Backups.Schedule != "" {
		_, err := c.AddFunc(cfg.Library.Backups.Schedule, func() {
			backupCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			path, err := lib.Backup(backupCtx, cfg.Library.Backups.Directory, cfg.Library.Backups.Keep)
			if err != nil {
				slog.ErrorContext(ctx, "scheduled backup failed", "err", err)
				return
			}
			slog.InfoContext(ctx, "scheduled backup finished", "path", path)
		})
		if err != nil {
			serviceutil.Fatal("schedule backups", err)
		}
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}
