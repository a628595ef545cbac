package pug

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the tracker.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Side identifies which roster of a match a player belongs to.
type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
	SideNone Side = ""
)

// Match outcome codes as written by the ingestion bot.
const (
	OutcomeBlueWin = 1
	OutcomeRedWin  = 2
)

// Player is a tracked community member. Most columns are nullable because
// the ingestion bot fills them in incrementally.
type Player struct {
	ID                 int64      `json:"id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DiscordID          *string    `json:"discord_id"`
	DeletedAt          *time.Time `json:"deleted_at"`
	PlayerName         *string    `json:"player_name"`
	CurrentElo         *int       `json:"current_elo"`
	VisualRankOverride *string    `json:"visual_rank_override"`
	PugWins            *int       `json:"pug_wins"`
	PugLosses          *int       `json:"pug_losses"`
	PugDraws           *int       `json:"pug_draws"`
	DmWins             *int       `json:"dm_wins"`
	DmLosses           *int       `json:"dm_losses"`
	Achievements       *string    `json:"achievements"`
	Dunce              *string    `json:"dunce"`
	SteamID            *string    `json:"steam_id"`
}

// Match is a single pug. The blue_team/red_team columns hold the legacy
// comma-joined discord id rosters; normalized rows live in match_rosters.
type Match struct {
	ID              int64      `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	MatchID         *int       `json:"match_id"`
	DeletedAt       *time.Time `json:"deleted_at"`
	BlueProbability *float64   `json:"blue_probability"`
	BlueRank        *float64   `json:"blue_rank"`
	BlueTeam        *string    `json:"blue_team"`
	RedProbability  *float64   `json:"red_probability"`
	RedRank         *float64   `json:"red_rank"`
	RedTeam         *string    `json:"red_team"`
	Map             *string    `json:"map"`
	Server          *string    `json:"server"`
	GameType        *string    `json:"game_type"`
	MatchOutcome    *int       `json:"match_outcome"`
	WinningScore    *int       `json:"winning_score"`
	LosingScore     *int       `json:"losing_score"`
	StatsURL        *string    `json:"stats_url"`
}

// EloSnapshot is one append-only rating record, written once per player per
// match by the ingestion bot.
type EloSnapshot struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	EntryID    int       `json:"entry_id"`
	MatchID    int       `json:"match_id"`
	PlayerName string    `json:"player_name"`
	PlayerElos int       `json:"player_elos"`
	DiscordID  int64     `json:"discord_id"`
}

// MatchWithPlayers is a match joined in memory with the player records
// resolved from its rosters.
type MatchWithPlayers struct {
	Match       Match    `json:"match"`
	BluePlayers []Player `json:"blue_players"`
	RedPlayers  []Player `json:"red_players"`
}

// PlayerProfile bundles a player with their full match and rating history.
type PlayerProfile struct {
	Player     Player        `json:"player"`
	Matches    []Match       `json:"matches"`
	EloHistory []EloSnapshot `json:"elo_history"`
}

// SameTeamWinRate is the shared-side record of two players.
type SameTeamWinRate struct {
	PlayerOne   string  `json:"player_one"`
	PlayerTwo   string  `json:"player_two"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"winrate"`
}

// LeaderboardEntry is one leaderboard row. ActiveRank is nil for players
// with no match in the activity window.
type LeaderboardEntry struct {
	ID          int64  `json:"id"`
	PlayerName  string `json:"player_name"`
	CurrentElo  int    `json:"current_elo"`
	DiscordID   string `json:"discord_id"`
	PugWins     int    `json:"pug_wins"`
	PugLosses   int    `json:"pug_losses"`
	PugDraws    int    `json:"pug_draws"`
	IsActive    bool   `json:"is_active"`
	ActiveRank  *int   `json:"active_rank"`
	AllTimeRank int    `json:"all_time_rank"`
}
