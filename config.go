package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultHTTPTimeoutSeconds = 30

type Config struct {
	DiscordToken string `yaml:"discord_token"`

	DatabaseURL string `yaml:"database_url"`
	DBPath      string `yaml:"db_path"`

	AutoPostSchedule string   `yaml:"auto_post_schedule"`
	AutoPostChannels []string `yaml:"auto_post_channels"`
	LeaderboardLimit int      `yaml:"leaderboard_limit"`
	BackfillMaxDays  int      `yaml:"backfill_max_days"`

	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	Timezone           string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.DiscordToken, "DISCORD_TOKEN")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.AutoPostSchedule, "AUTO_POST_SCHEDULE")
	envOverrideInt(&cfg.LeaderboardLimit, "LEADERBOARD_LIMIT")
	envOverrideInt(&cfg.BackfillMaxDays, "BACKFILL_MAX_DAYS")
	envOverrideInt(&cfg.HTTPTimeoutSeconds, "HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if names := os.Getenv("AUTO_POST_CHANNELS"); names != "" {
		cfg.AutoPostChannels = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.AutoPostChannels = append(cfg.AutoPostChannels, name)
			}
		}
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./wordle_leaderboard.db"
	}
	if cfg.AutoPostSchedule == "" {
		// Monday 00:01 in the configured timezone.
		cfg.AutoPostSchedule = "1 0 * * 1"
	}
	if len(cfg.AutoPostChannels) == 0 {
		cfg.AutoPostChannels = []string{"general", "wordle", "games", "bot"}
	}
	if cfg.LeaderboardLimit == 0 {
		cfg.LeaderboardLimit = 10
	}
	if cfg.BackfillMaxDays == 0 {
		cfg.BackfillMaxDays = 60
	}
	if cfg.HTTPTimeoutSeconds == 0 {
		cfg.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Los_Angeles"
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		log.Fatalf("Required config 'discord_token' is not set (via config.yaml or env var)")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if schedule := strings.TrimSpace(cfg.AutoPostSchedule); schedule != "" && schedule != "off" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(schedule); err != nil {
			log.Fatalf("invalid auto_post_schedule '%s': %v", schedule, err)
		}
	}
	if cfg.LeaderboardLimit < 1 {
		log.Fatalf("invalid leaderboard_limit '%d': must be >= 1", cfg.LeaderboardLimit)
	}
	if cfg.BackfillMaxDays < 1 || cfg.BackfillMaxDays > 365 {
		log.Fatalf("invalid backfill_max_days '%d': must be between 1 and 365", cfg.BackfillMaxDays)
	}
	if cfg.HTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid http_timeout_seconds '%d': must be >= 5", cfg.HTTPTimeoutSeconds)
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) AutoPostConfigured() bool {
	schedule := strings.TrimSpace(c.AutoPostSchedule)
	return schedule != "" && schedule != "off"
}
