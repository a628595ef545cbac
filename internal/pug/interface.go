package pug

import "errors"

// ErrNotFound is returned when a requested id, name or discord id has no
// matching, non-deleted record.
var ErrNotFound = errors.New("not found")

// Leaderboard eligibility and activity window.
const (
	MinLeaderboardGames = 10
	ActiveWindowDays    = 14
)

// PugStore defines the read surface over the tracker's data.
type PugStore interface {
	GetAllPlayers() ([]Player, error)
	GetPlayer(id int64) (*Player, error)
	GetPlayerByDiscordID(discordID string) (*Player, error)
	GetPlayerByName(name string) (*Player, error)
	GetLeaderboard() ([]LeaderboardEntry, error)
	GetPlayerProfile(name string) (*PlayerProfile, error)

	GetAllMatches() ([]Match, error)
	GetMatch(id int64) (*Match, error)
	GetMatchesForPlayer(playerName string) ([]Match, error)
	GetMatchesWithPlayers() ([]MatchWithPlayers, error)
	GetSameTeamWinRate(nameOne, nameTwo string) (*SameTeamWinRate, error)

	GetEloHistory(playerName string) ([]EloSnapshot, error)
}
