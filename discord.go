package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	buttonLeaderboardWeekly        = "leaderboard_weekly"
	buttonLeaderboardMonthly       = "leaderboard_monthly"
	buttonLeaderboardAllTime       = "leaderboard_alltime"
	buttonLeaderboardRefreshPrefix = "leaderboard_refresh:"
)

type Bot struct {
	cfg      Config
	store    *Store
	session  *discordgo.Session
	resolver ParticipantResolver

	mu       sync.Mutex
	autoPost bool
}

func NewBot(cfg Config, store *Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	session.Client.Timeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	b := &Bot{
		cfg:      cfg,
		store:    store,
		session:  session,
		resolver: &guildResolver{session: session},
		autoPost: cfg.AutoPostConfigured(),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b, nil
}

func (b *Bot) AutoPostEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.autoPost
}

func (b *Bot) toggleAutoPost() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoPost = !b.autoPost
	return b.autoPost
}

// Run opens the gateway connection, registers the slash commands, starts the
// auto-post scheduler and blocks until SIGINT/SIGTERM.
func (b *Bot) Run() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	b.registerCommands()
	StartAutoPostScheduler(b.cfg, b.store, b)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Connected as %s to %d guilds", r.User.Username, len(r.Guilds))
}

func periodOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "period",
		Description: description,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Weekly", Value: string(PeriodWeekly)},
			{Name: "Monthly", Value: string(PeriodMonthly)},
			{Name: "All Time", Value: string(PeriodAllTime)},
		},
	}
}

func (b *Bot) registerCommands() {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "leaderboard",
			Description: "View interactive Wordle leaderboards",
			Options:     []*discordgo.ApplicationCommandOption{periodOption("Time window (default: weekly)")},
		},
		{
			Name:        "mystats",
			Description: "View your Wordle statistics",
			Options:     []*discordgo.ApplicationCommandOption{periodOption("Time window (default: alltime)")},
		},
		{
			Name:        "post",
			Description: "Manually post the interactive leaderboard to this channel",
		},
		{
			Name:        "toggle",
			Description: "Toggle the weekly leaderboard auto-post",
		},
		{
			Name:        "help",
			Description: "Show available commands",
		},
		{
			Name:        "backfill",
			Description: "Admin: backfill recent WordleBot history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days",
					Description: "How many days of history to scan (default: 7)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to scan (default: current channel)",
				},
			},
		},
	}

	registered := 0
	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
			log.Printf("command register error %s: %v", cmd.Name, err)
			continue
		}
		registered++
	}
	log.Printf("Registered %d/%d slash commands", registered, len(commands))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	result, err := IngestMessage(b.store, b.resolver, b.cfg, messageFromDiscord(m.Message))
	if err != nil {
		log.Printf("ingest error message=%s channel=%s: %v", m.ID, m.ChannelID, err)
		return
	}
	if result.Ingested {
		log.Printf("ingest message=%s accepted=%d duplicate=%d unresolved=%d",
			m.ID, result.Accepted, result.Duplicate, result.Unresolved)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		log.Printf("slash command %s user=%s channel=%s", data.Name, interactionUserID(i), i.ChannelID)
		switch data.Name {
		case "leaderboard":
			b.handleLeaderboard(s, i)
		case "mystats":
			b.handleMyStats(s, i)
		case "post":
			b.handlePost(s, i)
		case "toggle":
			b.handleToggle(s, i)
		case "help":
			b.handleHelp(s, i)
		case "backfill":
			b.handleBackfill(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.handleLeaderboardButton(s, i)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func periodFromOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, def Period) Period {
	for _, opt := range opts {
		if opt == nil || opt.Name != "period" {
			continue
		}
		if p, ok := ParsePeriod(opt.StringValue()); ok {
			return p
		}
	}
	return def
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	period := periodFromOptions(i.ApplicationCommandData().Options, PeriodWeekly)
	from, to := PeriodRange(period, time.Now(), b.cfg.Location)
	entries, err := b.store.Leaderboard(from, to, b.cfg.LeaderboardLimit)
	if err != nil {
		log.Printf("leaderboard query error period=%s: %v", period, err)
		respondEphemeral(s, i, "Error retrieving leaderboard data.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{leaderboardEmbed(period, entries)},
			Components: leaderboardComponents(period),
		},
	})
	if err != nil {
		log.Printf("leaderboard respond error: %v", err)
	}
}

// handleLeaderboardButton switches the period of an already-posted
// leaderboard, editing the message in place.
func (b *Bot) handleLeaderboardButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	var period Period
	switch {
	case customID == buttonLeaderboardWeekly:
		period = PeriodWeekly
	case customID == buttonLeaderboardMonthly:
		period = PeriodMonthly
	case customID == buttonLeaderboardAllTime:
		period = PeriodAllTime
	case strings.HasPrefix(customID, buttonLeaderboardRefreshPrefix):
		p, ok := ParsePeriod(strings.TrimPrefix(customID, buttonLeaderboardRefreshPrefix))
		if !ok {
			p = PeriodWeekly
		}
		period = p
	default:
		return
	}

	from, to := PeriodRange(period, time.Now(), b.cfg.Location)
	entries, err := b.store.Leaderboard(from, to, b.cfg.LeaderboardLimit)
	if err != nil {
		log.Printf("leaderboard button query error period=%s: %v", period, err)
		respondEphemeral(s, i, "Error updating leaderboard.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{leaderboardEmbed(period, entries)},
			Components: leaderboardComponents(period),
		},
	})
	if err != nil {
		log.Printf("leaderboard button respond error: %v", err)
	}
}

func (b *Bot) handleMyStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	period := periodFromOptions(i.ApplicationCommandData().Options, PeriodAllTime)
	userID := interactionUserID(i)

	from, to := PeriodRange(period, time.Now(), b.cfg.Location)
	stats, err := b.store.UserStats(userID, from, to)
	if err != nil {
		log.Printf("mystats query error user=%s: %v", userID, err)
		respondEphemeral(s, i, "Error retrieving your statistics.")
		return
	}
	if stats.GamesPlayed == 0 {
		respondEphemeral(s, i, fmt.Sprintf("No games found for the %s period.", period))
		return
	}

	rank, err := b.store.UserRank(userID, from, to)
	if err != nil {
		log.Printf("mystats rank error user=%s: %v", userID, err)
		respondEphemeral(s, i, "Error retrieving your statistics.")
		return
	}
	streak, err := b.store.UserStreak(userID)
	if err != nil {
		log.Printf("mystats streak error user=%s: %v", userID, err)
		respondEphemeral(s, i, "Error retrieving your statistics.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{statsEmbed(period, stats, rank, streak)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("mystats respond error: %v", err)
	}
}

func (b *Bot) handlePost(s *discordgo.Session, i *discordgo.InteractionCreate) {
	from, to := PeriodRange(PeriodWeekly, time.Now(), b.cfg.Location)
	entries, err := b.store.Leaderboard(from, to, b.cfg.LeaderboardLimit)
	if err != nil {
		log.Printf("post query error: %v", err)
		respondEphemeral(s, i, "Error posting leaderboard.")
		return
	}

	_, err = s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{leaderboardEmbed(PeriodWeekly, entries)},
		Components: leaderboardComponents(PeriodWeekly),
	})
	if err != nil {
		log.Printf("post send error channel=%s: %v", i.ChannelID, err)
		respondEphemeral(s, i, "Error posting leaderboard.")
		return
	}
	respondEphemeral(s, i, "Interactive leaderboard posted!")
}

func (b *Bot) handleToggle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	enabled := b.toggleAutoPost()
	log.Printf("auto-post toggled enabled=%t user=%s", enabled, interactionUserID(i))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{toggleEmbed(enabled, b.cfg.AutoPostSchedule)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("toggle respond error: %v", err)
	}
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{helpEmbed()},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("help respond error: %v", err)
	}
}

func (b *Bot) handleBackfill(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageServer == 0 {
		respondEphemeral(s, i, "You need Manage Server permission to run backfill.")
		return
	}

	days := 7
	channelID := i.ChannelID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt == nil {
			continue
		}
		switch opt.Name {
		case "days":
			days = int(opt.IntValue())
		case "channel":
			if ch := opt.ChannelValue(nil); ch != nil {
				channelID = ch.ID
			}
		}
	}
	if days < 1 {
		days = 1
	}
	if days > b.cfg.BackfillMaxDays {
		days = b.cfg.BackfillMaxDays
	}

	// History scans can take a while; defer and report via followup.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("backfill defer error: %v", err)
		return
	}

	result, err := RunBackfill(b.store, b.resolver, b.cfg, s, channelID, days)
	content := FormatBackfillSummary(result)
	if err != nil {
		log.Printf("backfill error channel=%s days=%d: %v", channelID, days, err)
		content = fmt.Sprintf("Error during backfill: %v", err)
	} else {
		log.Printf("backfill complete channel=%s days=%d: %s", channelID, days, content)
	}

	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Printf("backfill followup error: %v", err)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("interaction respond error: %v", err)
	}
}

// messageFromDiscord converts a gateway message into the core abstraction.
func messageFromDiscord(m *discordgo.Message) Message {
	msg := Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		embed := MessageEmbed{Title: e.Title, Description: e.Description}
		if e.Author != nil {
			embed.AuthorName = e.Author.Name
		}
		if e.Footer != nil {
			embed.FooterText = e.Footer.Text
		}
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			embed.Fields = append(embed.Fields, EmbedField{Name: f.Name, Value: f.Value})
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	return msg
}

// guildResolver implements ParticipantResolver over the session state, with
// REST fallbacks when the cache misses.
type guildResolver struct {
	session *discordgo.Session
}

func (r *guildResolver) ResolveMention(guildID, userID string) (Participant, bool) {
	if guildID != "" {
		if member, err := r.session.State.Member(guildID, userID); err == nil && member.User != nil {
			return participantFromMember(member), true
		}
		if member, err := r.session.GuildMember(guildID, userID); err == nil && member.User != nil {
			return participantFromMember(member), true
		}
	}
	if user, err := r.session.User(userID); err == nil {
		return participantFromUser(user), true
	}
	return Participant{}, false
}

func (r *guildResolver) ResolveName(guildID, name string) (Participant, bool) {
	if guildID == "" || name == "" {
		return Participant{}, false
	}
	for _, member := range r.guildMembers(guildID) {
		if member == nil || member.User == nil {
			continue
		}
		if strings.EqualFold(member.Nick, name) ||
			strings.EqualFold(member.User.GlobalName, name) ||
			strings.EqualFold(member.User.Username, name) {
			return participantFromMember(member), true
		}
	}
	return Participant{}, false
}

func (r *guildResolver) guildMembers(guildID string) []*discordgo.Member {
	if guild, err := r.session.State.Guild(guildID); err == nil && len(guild.Members) > 0 {
		return guild.Members
	}
	members, err := r.session.GuildMembers(guildID, "", 1000)
	if err != nil {
		log.Printf("guild members fetch error guild=%s: %v", guildID, err)
		return nil
	}
	return members
}

func participantFromMember(m *discordgo.Member) Participant {
	p := participantFromUser(m.User)
	if m.Nick != "" {
		p.DisplayName = m.Nick
	}
	return p
}

func participantFromUser(u *discordgo.User) Participant {
	display := u.GlobalName
	if display == "" {
		display = u.Username
	}
	return Participant{ID: u.ID, Username: u.Username, DisplayName: display}
}
