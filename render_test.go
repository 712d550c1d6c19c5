package main

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestMedalFor(t *testing.T) {
	if medalFor(1) != "🥇" || medalFor(2) != "🥈" || medalFor(3) != "🥉" {
		t.Error("unexpected podium medals")
	}
	if medalFor(4) != "4." {
		t.Errorf("rank 4: got %q, want %q", medalFor(4), "4.")
	}
}

func TestLeaderboardEmbed(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: "1", Username: "alice", DisplayName: "Alice",
			TotalScore: 21, GamesPlayed: 3, AverageScore: 7, CurrentStreak: 3},
		{UserID: "2", Username: "bob",
			TotalScore: 10, GamesPlayed: 4, AverageScore: 2.5},
	}

	embed := leaderboardEmbed(PeriodWeekly, entries)

	if embed.Title != "🏆 Weekly Wordle Leaderboard" {
		t.Fatalf("unexpected title: %q", embed.Title)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(embed.Fields))
	}
	if embed.Fields[0].Name != "🥇 Alice 🔥 3" {
		t.Errorf("unexpected first entry name: %q", embed.Fields[0].Name)
	}
	if embed.Fields[0].Value != "Score: 21 | Games: 3 | Avg: 7.00" {
		t.Errorf("unexpected first entry value: %q", embed.Fields[0].Value)
	}
	if embed.Fields[1].Name != "🥈 bob" {
		t.Errorf("expected no streak decoration for bob, got %q", embed.Fields[1].Name)
	}
	if !strings.Contains(embed.Footer.Text, scoringFooter) {
		t.Errorf("footer missing scoring explanation: %q", embed.Footer.Text)
	}
}

func TestLeaderboardEmbedEmpty(t *testing.T) {
	embed := leaderboardEmbed(PeriodMonthly, nil)
	if embed.Description != "No data available for this period." {
		t.Errorf("unexpected empty description: %q", embed.Description)
	}
	if len(embed.Fields) != 0 {
		t.Errorf("expected no fields, got %d", len(embed.Fields))
	}
}

func TestLeaderboardComponents(t *testing.T) {
	components := leaderboardComponents(PeriodMonthly)
	if len(components) != 1 {
		t.Fatalf("expected 1 row, got %d", len(components))
	}
	row, ok := components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("expected ActionsRow, got %T", components[0])
	}
	if len(row.Components) != 4 {
		t.Fatalf("expected 4 buttons, got %d", len(row.Components))
	}

	buttons := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		if !ok {
			t.Fatalf("expected Button, got %T", c)
		}
		buttons = append(buttons, b)
	}

	if buttons[0].Style != discordgo.SecondaryButton {
		t.Error("inactive weekly button should be secondary")
	}
	if buttons[1].Style != discordgo.PrimaryButton {
		t.Error("active monthly button should be primary")
	}
	if buttons[1].CustomID != buttonLeaderboardMonthly {
		t.Errorf("unexpected monthly custom id: %q", buttons[1].CustomID)
	}
	if buttons[3].CustomID != buttonLeaderboardRefreshPrefix+"monthly" {
		t.Errorf("refresh button should carry the active period, got %q", buttons[3].CustomID)
	}
	if buttons[3].Style != discordgo.SuccessButton {
		t.Error("refresh button should be success-styled")
	}
}

func TestStatsEmbed(t *testing.T) {
	stats := UserStats{
		GamesPlayed:     5,
		TotalScore:      23,
		AverageScore:    4.6,
		SuccessfulGames: 4,
		FirstGame:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		LastGame:        time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
	}
	streak := Streak{Current: 2, Longest: 4}

	embed := statsEmbed(PeriodAllTime, stats, 3, streak)

	if embed.Title != "📊 Your All Time Statistics" {
		t.Fatalf("unexpected title: %q", embed.Title)
	}

	byName := map[string]string{}
	for _, f := range embed.Fields {
		byName[f.Name] = f.Value
	}
	if byName["Games Played"] != "5" {
		t.Errorf("unexpected games played: %q", byName["Games Played"])
	}
	if byName["Average Score"] != "4.60" {
		t.Errorf("unexpected average: %q", byName["Average Score"])
	}
	if byName["Success Rate"] != "4/5" {
		t.Errorf("unexpected success rate: %q", byName["Success Rate"])
	}
	if byName["Streak"] != "🔥 2 (Best: 4)" {
		t.Errorf("unexpected streak text: %q", byName["Streak"])
	}
	if byName["Rank"] != "#3" {
		t.Errorf("unexpected rank: %q", byName["Rank"])
	}
	if byName["First Game"] != "2026-02-01" || byName["Last Game"] != "2026-02-09" {
		t.Errorf("unexpected game date fields: %q / %q", byName["First Game"], byName["Last Game"])
	}
}

func TestStatsEmbedOmitsRankWhenUnranked(t *testing.T) {
	embed := statsEmbed(PeriodWeekly, UserStats{GamesPlayed: 1}, 0, Streak{Current: 1, Longest: 1})
	for _, f := range embed.Fields {
		if f.Name == "Rank" {
			t.Fatal("rank field should be omitted for unranked users")
		}
		if f.Name == "Streak" && f.Value != "🔥 1" {
			t.Errorf("streak at its best should not repeat itself, got %q", f.Value)
		}
	}
}

func TestToggleEmbed(t *testing.T) {
	embed := toggleEmbed(true, "1 0 * * 1")
	if !strings.Contains(embed.Description, "**enabled**") {
		t.Errorf("unexpected description: %q", embed.Description)
	}
	if !strings.Contains(embed.Fields[0].Value, "`1 0 * * 1`") {
		t.Errorf("settings field missing schedule: %q", embed.Fields[0].Value)
	}

	embed = toggleEmbed(false, "1 0 * * 1")
	if !strings.Contains(embed.Description, "**disabled**") {
		t.Errorf("unexpected description: %q", embed.Description)
	}
}
