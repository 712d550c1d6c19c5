package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg := LoadConfig()

	store, err := OpenStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	bot, err := NewBot(cfg, store)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Starting Wordle Leaderboard Bot...")
	if err := bot.Run(); err != nil {
		log.Fatalf("Discord bot error: %v", err)
	}
}
