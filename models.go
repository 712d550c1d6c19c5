package main

import (
	"strings"
	"time"
)

// Period names a rolling window for aggregate queries.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "alltime"
)

func ParsePeriod(s string) (Period, bool) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly, true
	case PeriodMonthly:
		return PeriodMonthly, true
	case PeriodAllTime:
		return PeriodAllTime, true
	}
	return "", false
}

func (p Period) Title() string {
	switch p {
	case PeriodWeekly:
		return "Weekly"
	case PeriodMonthly:
		return "Monthly"
	case PeriodAllTime:
		return "All Time"
	}
	return string(p)
}

// Participant is a player observed in a results summary. Display attributes
// are cached copies and get refreshed on every mention.
type Participant struct {
	ID          string
	Username    string
	DisplayName string
}

// Message is the platform-agnostic view of a chat message: the primary body
// plus any embeds' text-bearing parts.
type Message struct {
	ID         string
	GuildID    string
	ChannelID  string
	Content    string
	Embeds     []MessageEmbed
	AuthorName string
	AuthorBot  bool
	Timestamp  time.Time
}

type MessageEmbed struct {
	Title       string
	Description string
	AuthorName  string
	FooterText  string
	Fields      []EmbedField
}

type EmbedField struct {
	Name  string
	Value string
}

// ParsedResult is one participant's outcome extracted from a single line.
type ParsedResult struct {
	UserID  string       // stable participant id
	User    *Participant // populated when the reference was resolved by display name
	Guesses int
	Success bool
	RawLine string
}

// GameResult is one persisted row of the append-only ledger.
type GameResult struct {
	UserID       string
	WordleNumber int
	GameDate     time.Time
	Guesses      int
	Score        int
	Success      bool
}

type UserStats struct {
	GamesPlayed     int
	TotalScore      int
	AverageScore    float64
	SuccessfulGames int
	FirstGame       time.Time
	LastGame        time.Time
}

type LeaderboardEntry struct {
	UserID          string
	Username        string
	DisplayName     string
	GamesPlayed     int
	TotalScore      int
	AverageScore    float64
	SuccessfulGames int
	CurrentStreak   int
	LongestStreak   int
}

func (e LeaderboardEntry) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Username
}

type Streak struct {
	Current int
	Longest int
}

const maxGuesses = 6
const failureScore = 1

// ScoreFor applies the pinned scoring policy: a solved puzzle earns
// 8 minus the number of guesses (1 guess = 7 points, 6 guesses = 2 points),
// a failed puzzle earns 1. A day with no attempt has no row and therefore
// counts as 0 in aggregates.
func ScoreFor(guesses int, success bool) int {
	if !success {
		return failureScore
	}
	return 8 - guesses
}

// allTimeStart predates the first tracked puzzle, so the alltime window
// always covers the full ledger.
var allTimeStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// civilDate is the calendar date of t in loc, normalized to UTC midnight so
// stored dates compare cleanly across backends.
func civilDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodRange returns the inclusive [from, to] date range for a period:
// weekly runs from Monday of the current week (Sunday counts as day 7),
// monthly from the 1st, alltime from a fixed floor. "to" is always today.
func PeriodRange(p Period, now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := civilDate(now, loc)
	switch p {
	case PeriodWeekly:
		weekday := now.In(loc).Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		monday := today.AddDate(0, 0, -(int(weekday) - int(time.Monday)))
		return monday, today
	case PeriodMonthly:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today
	default:
		return allTimeStart, today
	}
}
