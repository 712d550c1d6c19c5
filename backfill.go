package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const backfillPageSize = 100

// BackfillResult tracks separate counters for each ingestion outcome across a
// history scan.
type BackfillResult struct {
	Scanned    int // messages examined
	Messages   int // results summaries processed
	Results    int
	Duplicates int
	Unresolved int
}

// RunBackfill pages channel history backwards until messages fall outside the
// requested window, running every message through ingestion. Reruns are safe:
// already-stored results come back as duplicates.
func RunBackfill(store *Store, resolver ParticipantResolver, cfg Config, session *discordgo.Session, channelID string, days int) (BackfillResult, error) {
	var result BackfillResult
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	beforeID := ""
	for {
		page, err := session.ChannelMessages(channelID, backfillPageSize, beforeID, "", "")
		if err != nil {
			return result, fmt.Errorf("fetch channel history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		reachedCutoff := false
		for _, m := range page {
			if m == nil {
				continue
			}
			beforeID = m.ID
			if m.Timestamp.Before(cutoff) {
				reachedCutoff = true
				break
			}

			result.Scanned++
			r, err := IngestMessage(store, resolver, cfg, messageFromDiscord(m))
			if err != nil {
				return result, err
			}
			if r.Ingested {
				result.Messages++
				result.Results += r.Accepted
				result.Duplicates += r.Duplicate
				result.Unresolved += r.Unresolved
			}
		}
		if reachedCutoff || len(page) < backfillPageSize {
			break
		}
	}
	return result, nil
}

// FormatBackfillSummary returns a human-readable summary of a BackfillResult.
func FormatBackfillSummary(result BackfillResult) string {
	if result.Messages == 0 {
		return fmt.Sprintf("Scanned %d messages, found no results summaries.", result.Scanned)
	}

	parts := []string{fmt.Sprintf("%d new", result.Results)}
	if result.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d already tracked", result.Duplicates))
	}
	if result.Unresolved > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", result.Unresolved))
	}
	return fmt.Sprintf("Scanned %d messages, processed %d results summaries: %s",
		result.Scanned, result.Messages, strings.Join(parts, ", "))
}
