package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scpbot-backend/lib/textutil"
	"scpbot-backend/services/library"
	"scpbot-backend/services/scraper"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/bot")

const (
	resultsPerPage = 5
	searchLimit    = 20

	defaultViewTimeout = 10 * time.Minute
)

type Config struct {
	// Token is the Discord bot token.
	Token string
	// AdminRoles are role names that may run maintenance commands in
	// addition to members with the Administrator permission.
	AdminRoles []string
}

// Service is the Discord front end over the library database. It owns
// the gateway session, slash command registration and all interaction
// dispatch.
type Service struct {
	session *discordgo.Session
	library library.Service
	scraper *scraper.Service

	adminRoles  []string
	viewTimeout time.Duration

	views       *viewRegistry
	maintenance sync.Mutex
	startedAt   time.Time
}

func NewService(config Config, lib library.Service, scr *scraper.Service) (*Service, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	roleNames := config.AdminRoles
	if len(roleNames) == 0 {
		roleNames = []string{"Admin", "Moderator", "Library Manager"}
	}
	adminRoles := make([]string, len(roleNames))
	for i, name := range roleNames {
		adminRoles[i] = textutil.NormalizeName(name)
	}

	return &Service{
		session:     session,
		library:     lib,
		scraper:     scr,
		adminRoles:  adminRoles,
		viewTimeout: defaultViewTimeout,
		views:       newViewRegistry(),
	}, nil
}

// Start opens the gateway connection and blocks until ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.session.AddHandler(s.onReady)
	s.session.AddHandler(func(session *discordgo.Session, i *discordgo.InteractionCreate) {
		s.onInteraction(ctx, i)
	})

	s.startedAt = time.Now()
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	go s.sweepViews(ctx)

	<-ctx.Done()
	return s.session.Close()
}

func (s *Service) onReady(session *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord gateway ready",
		"user", r.User.String(),
		"guilds", len(r.Guilds))

	if !s.library.Validate(context.Background()) {
		slog.Warn("library database is empty, run a full scrape")
	}

	_, err := session.ApplicationCommandBulkOverwrite(r.User.ID, "", commands())
	if err != nil {
		slog.Error("failed to register slash commands", "err", err)
		return
	}
	slog.Info("slash commands registered", "count", len(commands()))
}

func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "ping", Description: "Check whether the bot is responsive"},
		{Name: "info", Description: "Show bot and library status"},
		{Name: "help", Description: "List available commands"},
		{Name: "library", Description: "Browse and search the digital library"},
		{Name: "library-stats", Description: "Show library statistics (admin only)"},
		{Name: "quick-update-library", Description: "Scrape recently changed articles (admin only)"},
		{Name: "rebuild-library", Description: "Rebuild the whole library database (admin only)"},
	}
}

func (s *Service) onInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var name string
	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name = i.ApplicationCommandData().Name
		err = s.handleCommand(ctx, name, i)
	case discordgo.InteractionMessageComponent:
		name = i.MessageComponentData().CustomID
		err = s.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		name = i.ModalSubmitData().CustomID
		err = s.handleModal(ctx, i)
	default:
		return
	}

	if err != nil {
		slog.ErrorContext(ctx, "interaction failed",
			"interaction", name,
			"user", interactionUserId(i),
			"err", err)
		s.replyError(i, "Something went wrong handling that interaction. Please try again.")
	}
}

func (s *Service) handleCommand(ctx context.Context, name string, i *discordgo.InteractionCreate) error {
	ctx, span := tracer.Start(ctx, "Command/"+name)
	defer span.End()

	var err error
	switch name {
	case "ping":
		err = s.handlePing(i)
	case "info":
		err = s.handleInfo(ctx, i)
	case "help":
		err = s.handleHelp(i)
	case "library":
		err = s.openView(ctx, i)
	case "library-stats":
		err = s.handleStats(ctx, i)
	case "quick-update-library":
		err = s.handleMaintenance(ctx, i, maintenanceUpdate)
	case "rebuild-library":
		err = s.handleMaintenance(ctx, i, maintenanceRebuild)
	default:
		err = fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Service) handlePing(i *discordgo.InteractionCreate) error {
	latency := s.session.HeartbeatLatency().Round(time.Millisecond)
	return s.reply(i, newEmbed(
		"🏓 Pong!",
		fmt.Sprintf("Gateway latency: **%s**", latency),
		colorSuccess,
	))
}

func (s *Service) handleInfo(ctx context.Context, i *discordgo.InteractionCreate) error {
	stats, err := s.library.Stats(ctx)
	if err != nil {
		return err
	}

	lastUpdate := "never"
	if !stats.LastUpdate.IsZero() {
		lastUpdate = stats.LastUpdate.UTC().Format("2006-01-02 15:04 UTC")
	}

	embed := newEmbed("ℹ️ Bot Info", "", colorPrimary)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Uptime", Value: time.Since(s.startedAt).Round(time.Second).String(), Inline: true},
		{Name: "Latency", Value: s.session.HeartbeatLatency().Round(time.Millisecond).String(), Inline: true},
		{Name: "Articles", Value: fmt.Sprintf("%d", stats.TotalArticles), Inline: true},
		{Name: "Last Library Update", Value: lastUpdate, Inline: true},
	}
	return s.reply(i, embed)
}

func (s *Service) handleHelp(i *discordgo.InteractionCreate) error {
	return s.reply(i, newEmbed(
		"📖 Commands",
		"`/ping` - check responsiveness\n"+
			"`/info` - bot and library status\n"+
			"`/library` - browse and search the digital library\n"+
			"`/library-stats` - library statistics (admin)\n"+
			"`/quick-update-library` - scrape recent changes (admin)\n"+
			"`/rebuild-library` - full rebuild (admin)",
		colorPrimary,
	))
}

func (s *Service) handleStats(ctx context.Context, i *discordgo.InteractionCreate) error {
	if !s.isAdmin(i) {
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{errorEmbed(
					"Permission Denied",
					"Library statistics are restricted to admins.",
				)},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
	}

	stats, err := s.library.Stats(ctx)
	if err != nil {
		return err
	}
	embed := newEmbed("📊 Library Statistics", formatStats(stats), colorPrimary)
	if !stats.LastUpdate.IsZero() {
		embed.Description += fmt.Sprintf(
			"\n\n🕒 Last updated %s",
			stats.LastUpdate.UTC().Format("2006-01-02 15:04 UTC"),
		)
	}
	return s.reply(i, embed)
}

func (s *Service) reply(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// replyError answers with an ephemeral error embed. Best effort: if
// the interaction was already acknowledged it falls back to a
// followup message.
func (s *Service) replyError(i *discordgo.InteractionCreate, message string) {
	embed := errorEmbed("Error", message)
	err := s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		_, _ = s.session.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		})
	}
}

func interactionUserId(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
