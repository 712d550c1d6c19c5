package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The WordleBot message format drifts between plain-text and embed-only
// deliveries, so all patterns stay tolerant of apostrophe style, punctuation
// and case.
var (
	resultsHeaderRegex = regexp.MustCompile(`(?i)here are yesterday[’']s results:?`)
	wordleNumberRegex  = regexp.MustCompile(`(?i)wordle\s+no[.:]?\s*([0-9][0-9,]*)`)
	guessRegex         = regexp.MustCompile(`(?i)\b([0-6X])/6`)
	mentionRegex       = regexp.MustCompile(`<@!?(\d+)>`)
	bareNameRegex      = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)
)

const wordleBotNameToken = "wordle"

// wordleEpoch is puzzle #0 (2021-06-19); puzzle numbers advance one per day.
var wordleEpoch = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

// ParticipantResolver resolves result lines to stable participant identities.
// Mention tokens carry the id and only need display attributes; bare @name
// tokens need a case-insensitive lookup against the guild's members.
type ParticipantResolver interface {
	ResolveMention(guildID, userID string) (Participant, bool)
	ResolveName(guildID, name string) (Participant, bool)
}

// ExtractText flattens every text-bearing surface of a message into one
// newline-joined corpus: content first, then each embed's title, description,
// author name, footer text and field name/value pairs, in order. Detection
// and parsing stay surface-agnostic this way.
func ExtractText(m Message) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	add(m.Content)
	for _, e := range m.Embeds {
		add(e.Title)
		add(e.Description)
		add(e.AuthorName)
		add(e.FooterText)
		for _, f := range e.Fields {
			add(f.Name)
			add(f.Value)
		}
	}
	return strings.Join(parts, "\n")
}

// IsResultsMessage reports whether a corpus is a WordleBot results summary.
// The primary rule wants both the results header and a Wordle number marker.
// Embed-only deliveries sometimes drop the header, so a bot author whose name
// carries the WordleBot token plus at least one guess token also passes; that
// fallback can false-positive on unrelated bot messages containing an n/6
// substring, which is an accepted recall/precision tradeoff.
func IsResultsMessage(corpus string, authorBot bool, authorName string) bool {
	if corpus == "" {
		return false
	}
	if resultsHeaderRegex.MatchString(corpus) && wordleNumberRegex.MatchString(corpus) {
		return true
	}
	return authorBot &&
		strings.Contains(strings.ToLower(authorName), wordleBotNameToken) &&
		guessRegex.MatchString(corpus)
}

// ExtractWordleNumber pulls the puzzle number out of the marker text.
// Thousands separators are stripped ("Wordle No. 1,234").
func ExtractWordleNumber(corpus string) (int, bool) {
	m := wordleNumberRegex.FindStringSubmatch(corpus)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// GameDateFor returns the round date a summary is attributed to: the summary
// always reports the previous day's puzzle.
func GameDateFor(ts time.Time, loc *time.Location) time.Time {
	return civilDate(ts, loc).AddDate(0, 0, -1)
}

// DeriveWordleNumber reconstructs the puzzle number from the game date when
// the marker text is absent. Dates before the epoch have no valid number.
func DeriveWordleNumber(gameDate time.Time) (int, error) {
	days := int(gameDate.Sub(wordleEpoch).Hours() / 24)
	if days < 0 {
		return 0, fmt.Errorf("game date %s precedes the Wordle epoch", gameDate.Format("2006-01-02"))
	}
	return days, nil
}

// ParseResults extracts one record per participant reference, line by line.
// The first guess token on a line wins; X/6 records the conventional maximum
// guess count with success=false. Structured mention tokens are preferred;
// bare @name tokens are resolved against the guild only when a line has no
// mentions. Lines missing either a guess token or a resolvable reference
// contribute nothing.
func ParseResults(corpus, guildID string, resolver ParticipantResolver) []ParsedResult {
	var results []ParsedResult
	for _, line := range strings.Split(corpus, "\n") {
		guess := guessRegex.FindStringSubmatch(line)
		if guess == nil {
			continue
		}

		guesses := maxGuesses
		success := false
		if tok := guess[1]; !strings.EqualFold(tok, "X") {
			guesses, _ = strconv.Atoi(tok)
			success = true
		}
		raw := strings.TrimSpace(line)

		if mentions := mentionRegex.FindAllStringSubmatch(line, -1); len(mentions) > 0 {
			for _, m := range mentions {
				results = append(results, ParsedResult{
					UserID:  m[1],
					Guesses: guesses,
					Success: success,
					RawLine: raw,
				})
			}
			continue
		}

		if resolver == nil {
			continue
		}
		for _, m := range bareNameRegex.FindAllStringSubmatch(line, -1) {
			p, ok := resolver.ResolveName(guildID, m[1])
			if !ok {
				continue
			}
			results = append(results, ParsedResult{
				UserID:  p.ID,
				User:    &p,
				Guesses: guesses,
				Success: success,
				RawLine: raw,
			})
		}
	}
	return results
}
