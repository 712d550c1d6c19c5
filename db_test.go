package main

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "wordleboard-test.db")}
	store, err := OpenStore(cfg)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustInsertGame(t *testing.T, store *Store, userID string, number int, date time.Time, guesses int, success bool) {
	t.Helper()
	inserted, err := store.InsertGame(GameResult{
		UserID:       userID,
		WordleNumber: number,
		GameDate:     date,
		Guesses:      guesses,
		Score:        ScoreFor(guesses, success),
		Success:      success,
	})
	if err != nil {
		t.Fatalf("InsertGame failed: %v", err)
	}
	if !inserted {
		t.Fatalf("expected insert for user=%s number=%d", userID, number)
	}
}

func mustUpsertUser(t *testing.T, store *Store, p Participant) {
	t.Helper()
	if err := store.UpsertUser(p); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
}

func TestUpsertUserRefreshesDisplayAttributes(t *testing.T) {
	store := newTestStore(t)

	mustUpsertUser(t, store, Participant{ID: "42", Username: "alice", DisplayName: "Alice"})
	mustUpsertUser(t, store, Participant{ID: "42", Username: "alice2", DisplayName: "Alice W"})

	var username, displayName string
	err := store.db.QueryRow(`SELECT username, display_name FROM users WHERE user_id = ?`, "42").
		Scan(&username, &displayName)
	if err != nil {
		t.Fatalf("query user failed: %v", err)
	}
	if username != "alice2" || displayName != "Alice W" {
		t.Errorf("expected refreshed attributes, got %q / %q", username, displayName)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count users failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user row, got %d", count)
	}
}

func TestInsertGameRejectsDuplicates(t *testing.T) {
	store := newTestStore(t)
	mustUpsertUser(t, store, Participant{ID: "42", Username: "alice"})
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	mustInsertGame(t, store, "42", 1234, date, 3, true)

	inserted, err := store.InsertGame(GameResult{
		UserID: "42", WordleNumber: 1234, GameDate: date,
		Guesses: 5, Score: ScoreFor(5, true), Success: true,
	})
	if err != nil {
		t.Fatalf("duplicate InsertGame errored: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate key to be rejected")
	}

	var count, guesses int
	err = store.db.QueryRow(`SELECT COUNT(*), MAX(guesses) FROM games WHERE user_id = ?`, "42").Scan(&count, &guesses)
	if err != nil {
		t.Fatalf("count games failed: %v", err)
	}
	if count != 1 || guesses != 3 {
		t.Errorf("expected the original row to survive untouched, got count=%d guesses=%d", count, guesses)
	}
}

func TestUserStatsAggregatesAndZeroCase(t *testing.T) {
	store := newTestStore(t)
	mustUpsertUser(t, store, Participant{ID: "42", Username: "alice"})

	// Scores 5, 7 and 1.
	base := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	mustInsertGame(t, store, "42", 1200, base, 3, true)
	mustInsertGame(t, store, "42", 1201, base.AddDate(0, 0, 1), 1, true)
	mustInsertGame(t, store, "42", 1202, base.AddDate(0, 0, 2), 6, false)

	stats, err := store.UserStats("42", base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.GamesPlayed != 3 {
		t.Errorf("games played: got %d, want 3", stats.GamesPlayed)
	}
	if stats.TotalScore != 13 {
		t.Errorf("total score: got %d, want 13", stats.TotalScore)
	}
	if stats.AverageScore < 4.32 || stats.AverageScore > 4.34 {
		t.Errorf("average score: got %f, want ~4.33", stats.AverageScore)
	}
	if stats.SuccessfulGames != 2 {
		t.Errorf("successful games: got %d, want 2", stats.SuccessfulGames)
	}
	if fmtDate(stats.FirstGame) != "2026-02-09" || fmtDate(stats.LastGame) != "2026-02-11" {
		t.Errorf("first/last: got %s / %s", fmtDate(stats.FirstGame), fmtDate(stats.LastGame))
	}

	// Zero rows in the window is a zeroed struct, not an error.
	empty, err := store.UserStats("42", base.AddDate(0, 1, 0), base.AddDate(0, 1, 7))
	if err != nil {
		t.Fatalf("UserStats on empty window failed: %v", err)
	}
	if empty.GamesPlayed != 0 || empty.TotalScore != 0 || !empty.FirstGame.IsZero() {
		t.Errorf("expected zeroed stats, got %+v", empty)
	}

	unknown, err := store.UserStats("999", base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("UserStats for unknown user failed: %v", err)
	}
	if unknown.GamesPlayed != 0 {
		t.Errorf("expected zeroed stats for unknown user, got %+v", unknown)
	}
}

func TestLeaderboardOrderingAndExclusion(t *testing.T) {
	store := newTestStore(t)
	mustUpsertUser(t, store, Participant{ID: "1", Username: "alice", DisplayName: "Alice"})
	mustUpsertUser(t, store, Participant{ID: "2", Username: "bob", DisplayName: "Bob"})
	mustUpsertUser(t, store, Participant{ID: "3", Username: "carol", DisplayName: "Carol"})

	base := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	// Alice: total 10 over 2 games (avg 5).
	mustInsertGame(t, store, "1", 1200, base, 3, true)
	mustInsertGame(t, store, "1", 1201, base.AddDate(0, 0, 1), 3, true)
	// Bob: same total 10 over 3 games (scores 7+2+1), lower average.
	mustInsertGame(t, store, "2", 1200, base, 1, true)
	mustInsertGame(t, store, "2", 1201, base.AddDate(0, 0, 1), 6, true)
	mustInsertGame(t, store, "2", 1202, base.AddDate(0, 0, 2), 6, false)
	// Carol: games outside the window only.
	mustInsertGame(t, store, "3", 900, base.AddDate(0, -2, 0), 1, true)

	from, to := base, base.AddDate(0, 0, 7)
	entries, err := store.Leaderboard(from, to, 10)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (Carol excluded), got %d", len(entries))
	}
	if entries[0].UserID != "1" || entries[1].UserID != "2" {
		t.Errorf("expected average-score tie-break to rank Alice first, got %s then %s",
			entries[0].UserID, entries[1].UserID)
	}
	if entries[0].TotalScore != 10 || entries[1].TotalScore != 10 {
		t.Errorf("unexpected totals: %d / %d", entries[0].TotalScore, entries[1].TotalScore)
	}
	if entries[0].CurrentStreak != 2 {
		t.Errorf("expected Alice's current streak 2, got %d", entries[0].CurrentStreak)
	}

	limited, err := store.Leaderboard(from, to, 1)
	if err != nil {
		t.Fatalf("Leaderboard with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].UserID != "1" {
		t.Errorf("expected truncation to keep the top entry, got %+v", limited)
	}
}

func TestUserRank(t *testing.T) {
	store := newTestStore(t)
	mustUpsertUser(t, store, Participant{ID: "1", Username: "alice"})
	mustUpsertUser(t, store, Participant{ID: "2", Username: "bob"})

	base := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	mustInsertGame(t, store, "1", 1200, base, 1, true) // score 7
	mustInsertGame(t, store, "2", 1200, base, 5, true) // score 3

	from, to := base, base.AddDate(0, 0, 7)
	if rank, err := store.UserRank("2", from, to); err != nil || rank != 2 {
		t.Errorf("got (%d, %v), want (2, nil)", rank, err)
	}
	if rank, err := store.UserRank("999", from, to); err != nil || rank != 0 {
		t.Errorf("unranked user: got (%d, %v), want (0, nil)", rank, err)
	}
}

func TestUserStreakScenario(t *testing.T) {
	store := newTestStore(t)
	mustUpsertUser(t, store, Participant{ID: "42", Username: "alice"})

	// Play dates D, D-1, D-3, D-4, D-5: current streak 2, longest 3.
	d := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{0, -1, -3, -4, -5} {
		date := d.AddDate(0, 0, offset)
		number, err := DeriveWordleNumber(date)
		if err != nil {
			t.Fatalf("DeriveWordleNumber failed: %v", err)
		}
		mustInsertGame(t, store, "42", number, date, 4, true)
	}

	streak, err := store.UserStreak("42")
	if err != nil {
		t.Fatalf("UserStreak failed: %v", err)
	}
	if streak.Current != 2 {
		t.Errorf("current streak: got %d, want 2", streak.Current)
	}
	if streak.Longest != 3 {
		t.Errorf("longest streak: got %d, want 3", streak.Longest)
	}

	empty, err := store.UserStreak("999")
	if err != nil {
		t.Fatalf("UserStreak for unknown user failed: %v", err)
	}
	if empty.Current != 0 || empty.Longest != 0 {
		t.Errorf("expected zero streaks, got %+v", empty)
	}
}

func TestComputeStreaks(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	cases := []struct {
		name    string
		offsets []int // newest first
		want    Streak
	}{
		{"empty", nil, Streak{}},
		{"single day", []int{0}, Streak{Current: 1, Longest: 1}},
		{"unbroken run", []int{0, -1, -2}, Streak{Current: 3, Longest: 3}},
		{"older run is longer", []int{0, -1, -3, -4, -5}, Streak{Current: 2, Longest: 3}},
		{"gap after most recent day", []int{0, -2, -3}, Streak{Current: 1, Longest: 2}},
	}
	for _, tc := range cases {
		var dates []time.Time
		for _, off := range tc.offsets {
			dates = append(dates, day(off))
		}
		if got := computeStreaks(dates); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}
