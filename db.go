package main

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db       *sql.DB
	postgres bool
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	user_id      TEXT PRIMARY KEY,
	username     TEXT NOT NULL,
	display_name TEXT DEFAULT '',
	first_seen   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS games (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       TEXT NOT NULL REFERENCES users(user_id),
	wordle_number INTEGER NOT NULL,
	game_date     DATE NOT NULL,
	guesses       INTEGER NOT NULL,
	score         INTEGER NOT NULL,
	success       BOOLEAN NOT NULL,
	created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, wordle_number, game_date)
);
CREATE INDEX IF NOT EXISTS idx_games_user_date ON games(user_id, game_date);
CREATE INDEX IF NOT EXISTS idx_games_date ON games(game_date);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	user_id      TEXT PRIMARY KEY,
	username     TEXT NOT NULL,
	display_name TEXT DEFAULT '',
	first_seen   TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS games (
	id            BIGSERIAL PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(user_id),
	wordle_number INTEGER NOT NULL,
	game_date     DATE NOT NULL,
	guesses       INTEGER NOT NULL,
	score         INTEGER NOT NULL,
	success       BOOLEAN NOT NULL,
	created_at    TIMESTAMP DEFAULT NOW(),
	UNIQUE(user_id, wordle_number, game_date)
);
CREATE INDEX IF NOT EXISTS idx_games_user_date ON games(user_id, game_date);
CREATE INDEX IF NOT EXISTS idx_games_date ON games(game_date);
`

// OpenStore opens Postgres when cfg.DatabaseURL is set, otherwise the SQLite
// file at cfg.DBPath, and initializes the schema.
func OpenStore(cfg Config) (*Store, error) {
	var s *Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s = &Store{db: db, postgres: true}
	} else {
		db, err := sql.Open("sqlite3", cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s = &Store{db: db}
	}

	schema := schemaSQLite
	if s.postgres {
		schema = schemaPostgres
	}
	if _, err := s.db.Exec(schema); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// q adapts placeholder style to the active backend.
func (s *Store) q(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// nullDate scans DATE columns from either backend: lib/pq hands back
// time.Time, sqlite hands back the stored text (or time.Time when the
// declared column type survives the expression).
type nullDate struct {
	Time  time.Time
	Valid bool
}

func (d *nullDate) Scan(value any) error {
	d.Time, d.Valid = time.Time{}, false
	if value == nil {
		return nil
	}
	t, err := parseDateValue(value)
	if err != nil {
		return err
	}
	d.Time, d.Valid = t, true
	return nil
}

func parseDateValue(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		return parseDateString(v)
	case []byte:
		return parseDateString(string(v))
	}
	return time.Time{}, fmt.Errorf("unsupported date value of type %T", value)
}

func parseDateString(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}

// UpsertUser creates the participant on first sight and refreshes the cached
// display attributes on every later one.
func (s *Store) UpsertUser(p Participant) error {
	_, err := s.db.Exec(s.q(
		`INSERT INTO users (user_id, username, display_name) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET username = excluded.username, display_name = excluded.display_name`),
		p.ID, p.Username, p.DisplayName,
	)
	return err
}

// InsertGame persists one result, keyed by (user_id, wordle_number,
// game_date). It returns false when a row with that key already exists; the
// uniqueness constraint makes concurrent inserts of the same key resolve to
// exactly one row.
func (s *Store) InsertGame(g GameResult) (bool, error) {
	res, err := s.db.Exec(s.q(
		`INSERT INTO games (user_id, wordle_number, game_date, guesses, score, success) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, wordle_number, game_date) DO NOTHING`),
		g.UserID, g.WordleNumber, fmtDate(g.GameDate), g.Guesses, g.Score, g.Success,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserStats aggregates one participant's results over an inclusive date
// range. A participant with no rows in the range gets a zeroed struct.
func (s *Store) UserStats(userID string, from, to time.Time) (UserStats, error) {
	var stats UserStats
	var first, last nullDate
	err := s.db.QueryRow(s.q(
		`SELECT COUNT(*),
		        COALESCE(SUM(score), 0),
		        COALESCE(AVG(score), 0),
		        COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
		        MIN(game_date),
		        MAX(game_date)
		 FROM games
		 WHERE user_id = ? AND game_date >= ? AND game_date <= ?`),
		userID, fmtDate(from), fmtDate(to),
	).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.AverageScore, &stats.SuccessfulGames, &first, &last)
	if err != nil {
		return UserStats{}, err
	}
	if first.Valid {
		stats.FirstGame = first.Time
	}
	if last.Valid {
		stats.LastGame = last.Time
	}
	return stats, nil
}

// Leaderboard returns every participant with at least one result in the
// range, ordered by total score descending with average score as the
// tie-break, truncated to limit (limit <= 0 means unlimited). Each entry
// carries the participant's streaks.
func (s *Store) Leaderboard(from, to time.Time, limit int) ([]LeaderboardEntry, error) {
	query := `SELECT u.user_id, u.username, COALESCE(u.display_name, ''),
	       COUNT(g.id) AS games_played,
	       COALESCE(SUM(g.score), 0) AS total_score,
	       COALESCE(AVG(g.score), 0) AS average_score,
	       COALESCE(SUM(CASE WHEN g.success THEN 1 ELSE 0 END), 0) AS successful_games
	 FROM users u
	 JOIN games g ON g.user_id = u.user_id
	 WHERE g.game_date >= ? AND g.game_date <= ?
	 GROUP BY u.user_id, u.username, u.display_name
	 ORDER BY total_score DESC, average_score DESC`
	args := []any{fmtDate(from), fmtDate(to)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName,
			&e.GamesPlayed, &e.TotalScore, &e.AverageScore, &e.SuccessfulGames); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		streak, err := s.UserStreak(entries[i].UserID)
		if err != nil {
			return nil, err
		}
		entries[i].CurrentStreak = streak.Current
		entries[i].LongestStreak = streak.Longest
	}
	return entries, nil
}

// UserRank returns the 1-based position of a participant in the unlimited
// leaderboard ordering for the range, or 0 when absent from it.
func (s *Store) UserRank(userID string, from, to time.Time) (int, error) {
	entries, err := s.Leaderboard(from, to, 0)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if e.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// UserStreak recomputes both streaks from the full history of distinct play
// dates on every call; the append-only ledger makes that cheap and avoids
// cache-invalidation state.
func (s *Store) UserStreak(userID string) (Streak, error) {
	rows, err := s.db.Query(s.q(
		`SELECT DISTINCT game_date FROM games WHERE user_id = ? ORDER BY game_date DESC`),
		userID,
	)
	if err != nil {
		return Streak{}, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d nullDate
		if err := rows.Scan(&d); err != nil {
			return Streak{}, err
		}
		if d.Valid {
			dates = append(dates, d.Time)
		}
	}
	if err := rows.Err(); err != nil {
		return Streak{}, err
	}
	return computeStreaks(dates), nil
}

// computeStreaks walks distinct play dates sorted newest-first. The current
// streak is the contiguous run ending at the most recent played date, whether
// or not that date is today; the longest streak is the longest contiguous run
// anywhere in history.
func computeStreaks(dates []time.Time) Streak {
	if len(dates) == 0 {
		return Streak{}
	}

	var streak Streak
	run := 1
	for i := 1; i <= len(dates); i++ {
		if i < len(dates) && dates[i-1].Sub(dates[i]) == 24*time.Hour {
			run++
			continue
		}
		if streak.Current == 0 {
			streak.Current = run
		}
		if run > streak.Longest {
			streak.Longest = run
		}
		run = 1
	}
	return streak
}
