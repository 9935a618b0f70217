package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scpbot-backend/lib/textutil"
	"scpbot-backend/services/library"

	"github.com/bwmarrin/discordgo"
)

const (
	customCategorySelect = "category_select"
	customAuthorSelect   = "author_select"
	customTagSelect      = "tag_select"
	customSearchButton   = "search_button"
	customResetButton    = "reset_button"
	customPrevButton     = "prev_button"
	customNextButton     = "next_button"
	customSearchModal    = "search_modal"
	customSearchInput    = "search_input"

	// sentinel select value clearing a filter
	valueAll = "_all"
)

// libraryView is the per-message state behind one /library response.
// Interactions against the message mutate it and re-render in place.
type libraryView struct {
	mu sync.Mutex

	interaction *discordgo.Interaction
	userId      string

	options library.BrowseOptions
	stats   library.Stats

	category string
	author   string
	tag      string
	query    string

	results     []library.Article
	suggestions []string
	searched    bool
	page        int

	lastActive time.Time
}

func (v *libraryView) touch() {
	v.lastActive = time.Now()
}

func (v *libraryView) pageCount() int {
	if len(v.results) == 0 {
		return 1
	}
	return (len(v.results) + resultsPerPage - 1) / resultsPerPage
}

func (v *libraryView) pageSlice() []library.Article {
	start := v.page * resultsPerPage
	if start >= len(v.results) {
		return nil
	}
	end := start + resultsPerPage
	if end > len(v.results) {
		end = len(v.results)
	}
	return v.results[start:end]
}

func (v *libraryView) searchOptions() library.SearchOptions {
	return library.SearchOptions{
		Category: v.category,
		Author:   v.author,
		Tag:      v.tag,
		Query:    v.query,
		Limit:    searchLimit,
	}
}

func (v *libraryView) embed() *discordgo.MessageEmbed {
	if !v.searched {
		return welcomeEmbed(v.stats)
	}

	var filters []string
	if v.category != "" {
		filters = append(filters, "📂 "+v.category)
	}
	if v.author != "" {
		filters = append(filters, "✍️ "+v.author)
	}
	if v.tag != "" {
		filters = append(filters, "🏷️ "+v.tag)
	}
	if v.query != "" {
		filters = append(filters, fmt.Sprintf("🔍 \"%s\"", v.query))
	}

	var sb strings.Builder
	if len(filters) > 0 {
		sb.WriteString("**Filters:** " + strings.Join(filters, " • ") + "\n\n")
	}

	page := v.pageSlice()
	if len(page) == 0 {
		sb.WriteString("No articles matched. Try different filters or a broader search.")
		if len(v.suggestions) > 0 {
			sb.WriteString("\n\n**Did you mean:**")
			for _, title := range v.suggestions {
				sb.WriteString("\n• " + title)
			}
		}
		return newEmbed("🔍 Search Results (0 found)", sb.String(), colorWarning)
	}
	for _, article := range page {
		sb.WriteString(formatArticle(article))
		sb.WriteString("\n")
	}

	embed := newEmbed(
		fmt.Sprintf("🔍 Search Results (%d found)", len(v.results)),
		sb.String(),
		colorPrimary,
	)
	embed.Footer.Text = fmt.Sprintf("Page %d/%d • %s", v.page+1, v.pageCount(), embedFooter)
	return embed
}

func selectRow(customId, placeholder, allLabel string, values []string, current string) discordgo.ActionsRow {
	options := []discordgo.SelectMenuOption{{
		Label:   allLabel,
		Value:   valueAll,
		Default: current == "",
	}}
	// select option labels and values are capped at 100 characters
	for _, value := range values {
		options = append(options, discordgo.SelectMenuOption{
			Label:   textutil.Truncate(value, 97),
			Value:   textutil.TruncateExact(value, 100),
			Default: value == current,
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customId,
				Placeholder: placeholder,
				Options:     options,
			},
		},
	}
}

func (v *libraryView) components() []discordgo.MessageComponent {
	components := []discordgo.MessageComponent{
		selectRow(customCategorySelect, "📂 Filter by category", "All Categories", v.options.Categories, v.category),
		selectRow(customAuthorSelect, "✍️ Filter by author", "All Authors", v.options.Authors, v.author),
		selectRow(customTagSelect, "🏷️ Filter by tag", "All Tags", v.options.Tags, v.tag),
	}
	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Search",
				Emoji:    &discordgo.ComponentEmoji{Name: "🔍"},
				Style:    discordgo.PrimaryButton,
				CustomID: customSearchButton,
			},
			discordgo.Button{
				Label:    "Reset",
				Style:    discordgo.SecondaryButton,
				CustomID: customResetButton,
			},
			discordgo.Button{
				Label:    "Prev",
				Style:    discordgo.SecondaryButton,
				CustomID: customPrevButton,
				Disabled: v.page <= 0,
			},
			discordgo.Button{
				Label:    "Next",
				Style:    discordgo.SecondaryButton,
				CustomID: customNextButton,
				Disabled: v.page >= v.pageCount()-1,
			},
		},
	})
	return components
}

// refresh re-runs the search for the current filters and resets
// pagination.
func (v *libraryView) refresh(ctx context.Context, lib library.Service) error {
	results, err := lib.Search(ctx, v.searchOptions())
	if err != nil {
		return err
	}
	v.results = results
	v.searched = true
	v.page = 0

	v.suggestions = nil
	if len(results) == 0 && v.query != "" {
		suggestions, err := lib.SuggestTitles(ctx, v.query, 3)
		if err != nil {
			slog.WarnContext(ctx, "failed to suggest titles", "query", v.query, "err", err)
			return nil
		}
		v.suggestions = suggestions
	}
	return nil
}

// viewRegistry tracks live browse views by message id so component
// interactions can find their state, and expires idle ones.
type viewRegistry struct {
	mu    sync.Mutex
	views map[string]*libraryView
}

func newViewRegistry() *viewRegistry {
	return &viewRegistry{views: make(map[string]*libraryView)}
}

func (r *viewRegistry) add(messageId string, view *libraryView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[messageId] = view
}

func (r *viewRegistry) get(messageId string) (*libraryView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.views[messageId]
	return view, ok
}

func (r *viewRegistry) remove(messageId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, messageId)
}

// expired returns the views idle longer than timeout and drops them
// from the registry.
func (r *viewRegistry) expired(timeout time.Duration) map[string]*libraryView {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*libraryView)
	now := time.Now()
	for id, view := range r.views {
		view.mu.Lock()
		idle := now.Sub(view.lastActive)
		view.mu.Unlock()
		if idle > timeout {
			out[id] = view
			delete(r.views, id)
		}
	}
	return out
}

// sweepViews deletes timed-out browse messages. Discord refuses some
// deletions (ephemeral followups, aged tokens), in which case the
// message is edited down to an expiry notice instead.
func (s *Service) sweepViews(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for id, view := range s.views.expired(s.viewTimeout) {
			err := s.session.InteractionResponseDelete(view.interaction)
			if err == nil {
				continue
			}

			expired := newEmbed(
				"📚 Library Browser",
				"This browser timed out. Run `/library` again to keep exploring.",
				colorWarning,
			)
			_, err = s.session.InteractionResponseEdit(view.interaction, &discordgo.WebhookEdit{
				Embeds:     &[]*discordgo.MessageEmbed{expired},
				Components: &[]discordgo.MessageComponent{},
			})
			if err != nil {
				slog.WarnContext(ctx, "failed to expire library view",
					"message_id", id, "err", err)
			}
		}
	}
}

// openView answers /library with a fresh browse interface.
func (s *Service) openView(ctx context.Context, i *discordgo.InteractionCreate) error {
	options, err := s.library.Options(ctx)
	if err != nil {
		return err
	}
	stats, err := s.library.Stats(ctx)
	if err != nil {
		return err
	}

	view := &libraryView{
		interaction: i.Interaction,
		userId:      interactionUserId(i),
		options:     options,
		stats:       stats,
		lastActive:  time.Now(),
	}

	err = s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{view.embed()},
			Components: view.components(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return err
	}

	msg, err := s.session.InteractionResponse(i.Interaction)
	if err != nil {
		return fmt.Errorf("fetch interaction response: %w", err)
	}
	s.views.add(msg.ID, view)
	return nil
}

// handleComponent dispatches select menu and button presses on a
// browse message.
func (s *Service) handleComponent(ctx context.Context, i *discordgo.InteractionCreate) error {
	view, ok := s.views.get(i.Message.ID)
	if !ok {
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{errorEmbed(
					"Session Expired",
					"This browser is no longer active. Run `/library` to start a new one.",
				)},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
	}

	data := i.MessageComponentData()

	if data.CustomID == customSearchButton {
		view.mu.Lock()
		view.touch()
		view.mu.Unlock()
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: customSearchModal,
				Title:    "Search the Library",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:    customSearchInput,
								Label:       "Keywords",
								Style:       discordgo.TextInputShort,
								Placeholder: "e.g. meditation, community, healing",
								Required:    false,
								MaxLength:   100,
							},
						},
					},
				},
			},
		})
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	view.touch()

	switch data.CustomID {
	case customCategorySelect, customAuthorSelect, customTagSelect:
		value := ""
		if len(data.Values) > 0 && data.Values[0] != valueAll {
			value = data.Values[0]
		}
		switch data.CustomID {
		case customCategorySelect:
			view.category = value
		case customAuthorSelect:
			view.author = value
		case customTagSelect:
			view.tag = value
		}
		if err := view.refresh(ctx, s.library); err != nil {
			return err
		}

	case customResetButton:
		view.category = ""
		view.author = ""
		view.tag = ""
		view.query = ""
		view.results = nil
		view.suggestions = nil
		view.searched = false
		view.page = 0

	case customPrevButton:
		if view.page > 0 {
			view.page--
		}

	case customNextButton:
		if view.page < view.pageCount()-1 {
			view.page++
		}

	default:
		return fmt.Errorf("unknown component %q", data.CustomID)
	}

	return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{view.embed()},
			Components: view.components(),
		},
	})
}

// handleModal applies a submitted search query to its view.
func (s *Service) handleModal(ctx context.Context, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	if data.CustomID != customSearchModal {
		return fmt.Errorf("unknown modal %q", data.CustomID)
	}

	var view *libraryView
	if i.Message != nil {
		view, _ = s.views.get(i.Message.ID)
	}
	if view == nil {
		return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{errorEmbed(
					"Session Expired",
					"This browser is no longer active. Run `/library` to start a new one.",
				)},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
	}

	query := ""
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customSearchInput {
				query = strings.TrimSpace(input.Value)
			}
		}
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	view.touch()
	view.query = query
	if err := view.refresh(ctx, s.library); err != nil {
		return err
	}

	return s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{view.embed()},
			Components: view.components(),
		},
	})
}
