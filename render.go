package main

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	leaderboardColor = 0x00ff00
	statsColor       = 0x0099ff

	scoringFooter = "Score = 8 - guesses; X = 1; no attempt = 0"
)

func medalFor(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", rank)
}

func leaderboardEmbed(period Period, entries []LeaderboardEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 %s Wordle Leaderboard", period.Title()),
		Color: leaderboardColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Click buttons to switch periods • " + scoringFooter + " • 🔥 = current streak",
		},
	}
	if len(entries) == 0 {
		embed.Description = "No data available for this period."
		return embed
	}

	embed.Description = fmt.Sprintf("**Top performers (%s):**", period)
	for i, e := range entries {
		name := fmt.Sprintf("%s %s", medalFor(i+1), e.Name())
		if e.CurrentStreak > 0 {
			name += fmt.Sprintf(" 🔥 %d", e.CurrentStreak)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: fmt.Sprintf("Score: %d | Games: %d | Avg: %.2f", e.TotalScore, e.GamesPlayed, e.AverageScore),
		})
	}
	return embed
}

func leaderboardComponents(active Period) []discordgo.MessageComponent {
	style := func(p Period) discordgo.ButtonStyle {
		if p == active {
			return discordgo.PrimaryButton
		}
		return discordgo.SecondaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Weekly",
					Style:    style(PeriodWeekly),
					CustomID: buttonLeaderboardWeekly,
					Emoji:    &discordgo.ComponentEmoji{Name: "📅"},
				},
				discordgo.Button{
					Label:    "Monthly",
					Style:    style(PeriodMonthly),
					CustomID: buttonLeaderboardMonthly,
					Emoji:    &discordgo.ComponentEmoji{Name: "📆"},
				},
				discordgo.Button{
					Label:    "All Time",
					Style:    style(PeriodAllTime),
					CustomID: buttonLeaderboardAllTime,
					Emoji:    &discordgo.ComponentEmoji{Name: "🏆"},
				},
				discordgo.Button{
					Label:    "Refresh",
					Style:    discordgo.SuccessButton,
					CustomID: buttonLeaderboardRefreshPrefix + string(active),
					Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
				},
			},
		},
	}
}

func statsEmbed(period Period, stats UserStats, rank int, streak Streak) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("📊 Your %s Statistics", period.Title()),
		Color:  statsColor,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Period: %s • %s", period.Title(), scoringFooter)},
	}

	addField := func(name, value string) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true})
	}
	addField("Games Played", fmt.Sprintf("%d", stats.GamesPlayed))
	addField("Total Score", fmt.Sprintf("%d", stats.TotalScore))
	addField("Average Score", fmt.Sprintf("%.2f", stats.AverageScore))
	addField("Success Rate", fmt.Sprintf("%d/%d", stats.SuccessfulGames, stats.GamesPlayed))

	streakText := fmt.Sprintf("🔥 %d", streak.Current)
	if streak.Longest > streak.Current {
		streakText += fmt.Sprintf(" (Best: %d)", streak.Longest)
	}
	addField("Streak", streakText)

	if rank > 0 {
		addField("Rank", fmt.Sprintf("#%d", rank))
	}
	if !stats.FirstGame.IsZero() && !stats.LastGame.IsZero() {
		addField("First Game", fmtDate(stats.FirstGame))
		addField("Last Game", fmtDate(stats.LastGame))
	}
	return embed
}

func toggleEmbed(enabled bool, schedule string) *discordgo.MessageEmbed {
	status := "disabled"
	if enabled {
		status = "enabled"
	}
	return &discordgo.MessageEmbed{
		Title:       "🔧 Leaderboard Auto-Post",
		Description: fmt.Sprintf("Auto-post is now **%s**", status),
		Color:       statsColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Current Settings",
				Value: fmt.Sprintf("• Auto-post: %s\n• Schedule (cron): `%s`\n• Channels: auto-detected by name", status, schedule),
			},
			{
				Name:  "Manual Commands",
				Value: "• `/leaderboard` - View any period\n• `/mystats` - Your personal stats\n• `/post` - Post the leaderboard here",
			},
		},
	}
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🤖 Wordle Leaderboard Bot Help",
		Description: "Commands to track and display Wordle leaderboards",
		Color:       leaderboardColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: scoringFooter},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "/leaderboard [period]",
				Value: "View interactive leaderboards with toggleable buttons\nPeriods: `weekly`, `monthly`, `alltime`",
			},
			{
				Name:  "/mystats [period]",
				Value: "View your personal statistics\nPeriods: `weekly`, `monthly`, `alltime`",
			},
			{
				Name:  "/post",
				Value: "Manually post the interactive leaderboard to the current channel",
			},
			{
				Name:  "/toggle",
				Value: "Toggle the weekly auto-post on or off",
			},
			{
				Name:  "/backfill [days] [channel]",
				Value: "Admin: scan recent channel history for missed WordleBot results",
			},
			{
				Name:  "Automatic Features",
				Value: "• Processes WordleBot results messages automatically\n• Posts the weekly leaderboard on a schedule",
			},
		},
	}
}
