package main

import (
	"strings"

	"scpbot-backend/lib/configutil"
)

type BackupConfig struct {
	Directory string `json:"directory"`
	Keep      int    `json:"keep"`
	// Schedule is a cron expression; empty disables scheduled backups.
	Schedule string `json:"schedule"`
}

type LibraryConfig struct {
	Database string       `json:"database"`
	Backups  BackupConfig `json:"backups"`
}

type ScraperConfig struct {
	BaseUrl string `json:"base_url"`
	// UpdateSchedule is a cron expression for incremental updates;
	// empty disables them.
	UpdateSchedule string `json:"update_schedule"`
}

type BotConfig struct {
	// Token may also come from the DISCORD_TOKEN environment
	// variable, which wins over the config file.
	Token      string   `json:"token"`
	AdminRoles []string `json:"admin_roles"`
}

type Config struct {
	Port    int           `json:"port"`
	Library LibraryConfig `json:"library"`
	Scraper ScraperConfig `json:"scraper"`
	Bot     BotConfig     `json:"bot"`
}

// ReadServerConfig loads config.json5 and applies the environment
// overrides the deployment scripts set.
func ReadServerConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		return Config{}, err
	}

	cfg.Bot.Token = configutil.EnvOverride("DISCORD_TOKEN", cfg.Bot.Token)
	cfg.Scraper.BaseUrl = configutil.EnvOverride("RSS_BASE_URL", cfg.Scraper.BaseUrl)
	if cfg.Scraper.BaseUrl == "" {
		cfg.Scraper.BaseUrl = "https://www.sacredcommunityproject.org"
	}
	cfg.Scraper.BaseUrl = strings.TrimRight(cfg.Scraper.BaseUrl, "/")

	if cfg.Library.Database == "" {
		cfg.Library.Database = "data/library_content.db"
	}
	if cfg.Library.Backups.Keep <= 0 {
		cfg.Library.Backups.Keep = 7
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	return cfg, nil
}
