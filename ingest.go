package main

import (
	"fmt"
	"log"
)

// IngestResult tracks separate counters for each per-record outcome.
// Ingested is false when the message was not a results summary or yielded no
// parsable records; neither case is an error.
type IngestResult struct {
	Ingested   bool
	Accepted   int
	Duplicate  int
	Unresolved int
}

func (r IngestResult) Rejected() int {
	return r.Duplicate + r.Unresolved
}

// IngestMessage runs one message through the full pipeline: extract text,
// detect, parse, resolve the round, resolve identities, score and persist.
// Duplicates are counted and skipped, never overwritten; only storage
// failures come back as errors.
func IngestMessage(store *Store, resolver ParticipantResolver, cfg Config, msg Message) (IngestResult, error) {
	var result IngestResult

	corpus := ExtractText(msg)
	if !IsResultsMessage(corpus, msg.AuthorBot, msg.AuthorName) {
		return result, nil
	}

	gameDate := GameDateFor(msg.Timestamp, cfg.Location)
	number, ok := ExtractWordleNumber(corpus)
	if !ok {
		derived, err := DeriveWordleNumber(gameDate)
		if err != nil {
			log.Printf("ingest rejected message=%s: %v", msg.ID, err)
			return result, nil
		}
		number = derived
	}

	parsed := ParseResults(corpus, msg.GuildID, resolver)
	if len(parsed) == 0 {
		log.Printf("ingest unparseable message=%s wordle=%d", msg.ID, number)
		return result, nil
	}

	result.Ingested = true
	for _, r := range parsed {
		var participant Participant
		if r.User != nil {
			participant = *r.User
		} else {
			p, ok := resolver.ResolveMention(msg.GuildID, r.UserID)
			if !ok {
				log.Printf("ingest unresolved user=%s guild=%s", r.UserID, msg.GuildID)
				result.Unresolved++
				continue
			}
			participant = p
		}

		if err := store.UpsertUser(participant); err != nil {
			return result, fmt.Errorf("upsert user %s: %w", participant.ID, err)
		}

		inserted, err := store.InsertGame(GameResult{
			UserID:       participant.ID,
			WordleNumber: number,
			GameDate:     gameDate,
			Guesses:      r.Guesses,
			Score:        ScoreFor(r.Guesses, r.Success),
			Success:      r.Success,
		})
		if err != nil {
			return result, fmt.Errorf("insert game for user %s: %w", participant.ID, err)
		}
		if inserted {
			result.Accepted++
			log.Printf("ingest accepted user=%s wordle=%d date=%s guesses=%d success=%t",
				participant.ID, number, fmtDate(gameDate), r.Guesses, r.Success)
		} else {
			result.Duplicate++
		}
	}
	return result, nil
}
