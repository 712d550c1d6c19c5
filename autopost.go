package main

import (
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// StartAutoPostScheduler starts a cron-based scheduler that periodically
// posts the weekly leaderboard to one channel per guild.
// The schedule is a standard 5-field cron expression (minute hour day-of-month
// month day-of-week), evaluated in the configured timezone. The default
// "1 0 * * 1" is Monday 00:01.
func StartAutoPostScheduler(cfg Config, store *Store, bot *Bot) {
	if !cfg.AutoPostConfigured() {
		log.Println("Auto-post disabled (auto_post_schedule set to off)")
		return
	}

	schedule := strings.TrimSpace(cfg.AutoPostSchedule)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid auto_post_schedule '%s': %v, auto-post disabled", schedule, err)
		return
	}
	log.Printf("Auto-post scheduled (cron: %s, tz: %s)", schedule, cfg.Location)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next auto-post at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			if !bot.AutoPostEnabled() {
				log.Println("Auto-post skipped (disabled via /toggle)")
				continue
			}
			postWeeklyLeaderboards(cfg, store, bot.session)
		}
	}()
}

func postWeeklyLeaderboards(cfg Config, store *Store, session *discordgo.Session) {
	from, to := PeriodRange(PeriodWeekly, time.Now(), cfg.Location)
	entries, err := store.Leaderboard(from, to, cfg.LeaderboardLimit)
	if err != nil {
		log.Printf("Auto-post leaderboard query error: %v", err)
		return
	}

	embed := leaderboardEmbed(PeriodWeekly, entries)
	components := leaderboardComponents(PeriodWeekly)

	for _, guild := range session.State.Guilds {
		if guild == nil {
			continue
		}
		channelID := pickAutoPostChannel(session, guild.ID, cfg.AutoPostChannels)
		if channelID == "" {
			log.Printf("Auto-post: no sendable channel in guild %s", guild.ID)
			continue
		}
		_, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		if err != nil {
			log.Printf("Auto-post error guild=%s channel=%s: %v", guild.ID, channelID, err)
			continue
		}
		log.Printf("Auto-post sent guild=%s channel=%s", guild.ID, channelID)
	}
}

// pickAutoPostChannel prefers the first text channel whose name contains one
// of the configured keywords and where the bot can send, falling back to the
// first sendable text channel.
func pickAutoPostChannel(session *discordgo.Session, guildID string, keywords []string) string {
	channels := guildTextChannels(session, guildID)
	for _, ch := range channels {
		if channelNameMatches(ch.Name, keywords) && canSendTo(session, ch.ID) {
			return ch.ID
		}
	}
	for _, ch := range channels {
		if canSendTo(session, ch.ID) {
			return ch.ID
		}
	}
	return ""
}

func guildTextChannels(session *discordgo.Session, guildID string) []*discordgo.Channel {
	var channels []*discordgo.Channel
	if guild, err := session.State.Guild(guildID); err == nil {
		channels = guild.Channels
	}
	if len(channels) == 0 {
		fetched, err := session.GuildChannels(guildID)
		if err != nil {
			log.Printf("guild channels fetch error guild=%s: %v", guildID, err)
			return nil
		}
		channels = fetched
	}

	var out []*discordgo.Channel
	for _, ch := range channels {
		if ch != nil && ch.Type == discordgo.ChannelTypeGuildText {
			out = append(out, ch)
		}
	}
	return out
}

func channelNameMatches(name string, keywords []string) bool {
	name = strings.ToLower(name)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func canSendTo(session *discordgo.Session, channelID string) bool {
	if session.State.User == nil {
		return false
	}
	perms, err := session.UserChannelPermissions(session.State.User.ID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0
}
