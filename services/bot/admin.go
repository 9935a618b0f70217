package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scpbot-backend/lib/textutil"
	"scpbot-backend/services/scraper"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/codes"
)

type maintenanceKind int

const (
	maintenanceUpdate maintenanceKind = iota
	maintenanceRebuild
)

func (k maintenanceKind) String() string {
	if k == maintenanceRebuild {
		return "rebuild"
	}
	return "quick update"
}

func (k maintenanceKind) timeout() time.Duration {
	if k == maintenanceRebuild {
		return 10 * time.Minute
	}
	return 5 * time.Minute
}

// isAdmin grants maintenance access to members with the Administrator
// permission or one of the configured admin role names.
func (s *Service) isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	for _, roleId := range i.Member.Roles {
		role, err := s.session.State.Role(i.GuildID, roleId)
		if err != nil {
			continue
		}
		if textutil.MatchName(role.Name, s.adminRoles) {
			return true
		}
	}
	return false
}

// handleMaintenance runs a scraper pass on behalf of an admin. Only
// one maintenance operation may run at a time; a busy bot refuses
// rather than queueing.
func (s *Service) handleMaintenance(ctx context.Context, i *discordgo.InteractionCreate, kind maintenanceKind) error {
	if !s.isAdmin(i) {
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{errorEmbed(
					"Permission Denied",
					"You need the Administrator permission or an admin role to run this command.",
				)},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
	}

	if !s.maintenance.TryLock() {
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{newEmbed(
					"⏳ Busy",
					"Another library operation is already running. Try again once it finishes.",
					colorWarning,
				)},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
	}

	err := s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		s.maintenance.Unlock()
		return err
	}

	interaction := i.Interaction
	user := interactionUserId(i)

	// The scrape outlives the interaction deadline, so it runs on its
	// own context.
	go func() {
		defer s.maintenance.Unlock()

		runCtx, cancel := context.WithTimeout(context.Background(), kind.timeout())
		defer cancel()

		runCtx, span := tracer.Start(runCtx, "Maintenance/"+kind.String())
		defer span.End()

		var stats scraper.RunStats
		var runErr error
		if kind == maintenanceRebuild {
			stats, runErr = s.scraper.Full(runCtx)
		} else {
			stats, runErr = s.scraper.Update(runCtx)
		}

		var embed *discordgo.MessageEmbed
		if runErr != nil {
			span.RecordError(runErr)
			span.SetStatus(codes.Error, runErr.Error())
			embed = errorEmbed(
				"❌ Library "+titleCase(kind.String())+" Failed",
				fmt.Sprintf("The %s did not complete: %v", kind, runErr),
			)
		} else {
			embed = newEmbed(
				"✅ Library "+titleCase(kind.String())+" Complete",
				fmt.Sprintf(
					"📄 %d pages scraped\n✅ %d successful\n❌ %d errors\n🕒 took %s",
					stats.PagesScraped,
					stats.Successful,
					stats.Errors,
					stats.Duration.Round(time.Second),
				),
				colorSuccess,
			)
			embed.Footer.Text = fmt.Sprintf("Requested by <@%s> • %s", user, embedFooter)
		}

		_, err := s.session.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{embed},
		})
		if err != nil {
			span.RecordError(err)
		}
	}()

	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
