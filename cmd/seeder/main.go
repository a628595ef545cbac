package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/openpug/pugstats/internal/database"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"DB_NAME"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", "./migrations")
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer func() {
		teardown()
		db.Close()
	}()

	names := []string{"Ardent", "Blaze", "Cipher", "Drifter", "Echo", "Frostbite", "Gravel", "Hexen"}
	discordIDs := make([]string, len(names))

	now := time.Now()
	for i, name := range names {
		discordIDs[i] = fmt.Sprintf("10000000000000%02d", i)
		elo := 1200 + rand.Intn(800)
		wins := 5 + rand.Intn(40)
		losses := 5 + rand.Intn(40)
		_, err := db.Exec(`
			INSERT INTO players (created_at, updated_at, discord_id, player_name, current_elo, pug_wins, pug_losses, pug_draws, dm_wins, dm_losses)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, now, now, discordIDs[i], name, elo, wins, losses, rand.Intn(5), rand.Intn(20), rand.Intn(20))
		if err != nil {
			log.Fatalf("Failed to insert player %s: %s", name, err)
		}
	}
	log.Info("Seeded players", "count", len(names))

	const numMatches = 200
	maps := []string{"DM-Deck16", "DM-Rankin", "DM-Grendelkeep", "DM-Campgrounds"}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	startTime := time.Now()
	for i := 0; i < numMatches; i++ {
		created := now.Add(-time.Duration(rand.Intn(180*24)) * time.Hour)

		// Shuffle players into two sides of four.
		order := rand.Perm(len(discordIDs))
		blue := []string{discordIDs[order[0]], discordIDs[order[1]], discordIDs[order[2]], discordIDs[order[3]]}
		red := []string{discordIDs[order[4]], discordIDs[order[5]], discordIDs[order[6]], discordIDs[order[7]]}
		outcome := 1 + rand.Intn(2)

		res, err := tx.Exec(`
			INSERT INTO matches (created_at, updated_at, match_id, blue_probability, blue_team, red_probability, red_team, map, server, game_type, match_outcome, winning_score, losing_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, created, created, 1000+i, rand.Float64(), strings.Join(blue, ","), rand.Float64(), strings.Join(red, ","),
			maps[rand.Intn(len(maps))], "pug.example.org", "4v4", outcome, 10, rand.Intn(10))
		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to insert match: %s", err)
		}
		matchID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to read match id: %s", err)
		}

		// New writes populate the normalized roster relation alongside the
		// legacy comma-joined strings.
		for _, id := range blue {
			if _, err := tx.Exec(`INSERT INTO match_rosters (match_id, discord_id, side) VALUES (?, ?, 'blue')`, matchID, id); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to insert roster row: %s", err)
			}
		}
		for _, id := range red {
			if _, err := tx.Exec(`INSERT INTO match_rosters (match_id, discord_id, side) VALUES (?, ?, 'red')`, matchID, id); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to insert roster row: %s", err)
			}
		}

		// One elo snapshot per blue player keeps trajectories plausible
		// without tracking real rating math in the seeder.
		for n, id := range blue {
			playerIdx := order[n]
			if _, err := tx.Exec(`
				INSERT INTO player_elo (created_at, updated_at, entry_id, match_id, player_name, player_elos, discord_id)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, created, created, i, 1000+i, names[playerIdx], 1200+rand.Intn(800), mustParseInt(id)); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to insert elo snapshot: %s", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit seed transaction: %s", err)
	}
	log.Info("Seeding complete", "matches", numMatches, "duration", time.Since(startTime))
}

func mustParseInt(s string) int64 {
	var v int64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		log.Fatalf("Failed to parse discord id %q: %s", s, err)
	}
	return v
}
