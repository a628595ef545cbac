package pug

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new PugStore.
func New(db *sql.DB) PugStore {
	return &store{
		db: db,
	}
}

const playerColumns = `id, created_at, updated_at, discord_id, deleted_at, player_name, current_elo, visual_rank_override,
	pug_wins, pug_losses, pug_draws, dm_wins, dm_losses, achievements, dunce, steam_id`

const matchColumns = `id, created_at, updated_at, match_id, deleted_at, blue_probability, blue_rank, blue_team,
	red_probability, red_rank, red_team, map, server, game_type, match_outcome, winning_score, losing_score, stats_url`

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	err := scanner.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.DiscordID, &p.DeletedAt, &p.PlayerName, &p.CurrentElo, &p.VisualRankOverride,
		&p.PugWins, &p.PugLosses, &p.PugDraws, &p.DmWins, &p.DmLosses, &p.Achievements, &p.Dunce, &p.SteamID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	err := scanner.Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.MatchID, &m.DeletedAt, &m.BlueProbability, &m.BlueRank, &m.BlueTeam,
		&m.RedProbability, &m.RedRank, &m.RedTeam, &m.Map, &m.Server, &m.GameType, &m.MatchOutcome,
		&m.WinningScore, &m.LosingScore, &m.StatsURL,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllPlayers returns every player row, including soft-deleted ones,
// ordered by id.
func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + playerColumns + ` FROM players ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// GetPlayer returns a player by primary key.
func (s *store) GetPlayer(id int64) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPlayer(s.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player %d: %w", id, err)
	}
	return p, nil
}

// GetPlayerByDiscordID returns the player whose discord id matches exactly.
func (s *store) GetPlayerByDiscordID(discordID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPlayer(s.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE discord_id = ? ORDER BY id ASC LIMIT 1`, discordID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player by discord id: %w", err)
	}
	return p, nil
}

// GetPlayerByName returns the non-deleted player whose name matches
// case-insensitively.
func (s *store) GetPlayerByName(name string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getPlayerByNameLocked(name)
}

func (s *store) getPlayerByNameLocked(name string) (*Player, error) {
	p, err := scanPlayer(s.db.QueryRow(
		`SELECT `+playerColumns+` FROM players WHERE deleted_at IS NULL AND LOWER(player_name) = LOWER(?) ORDER BY id ASC LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player by name: %w", err)
	}
	return p, nil
}

// GetAllMatches returns every non-deleted 4v4 match, newest first.
func (s *store) GetAllMatches() ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + matchColumns + ` FROM matches WHERE deleted_at IS NULL AND game_type = '4v4' ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// GetMatch returns a match by primary key.
func (s *store) GetMatch(id int64) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMatch(s.db.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query match %d: %w", id, err)
	}
	return m, nil
}

// GetMatchesForPlayer returns all non-deleted matches containing the named
// player on either roster, newest first.
func (s *store) GetMatchesForPlayer(playerName string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, err := s.getPlayerByNameLocked(playerName)
	if err != nil {
		return nil, err
	}
	return s.matchesForDiscordIDLocked(player.DiscordID)
}

func (s *store) matchesForDiscordIDLocked(discordID *string) ([]Match, error) {
	matches := []Match{}
	if discordID == nil || *discordID == "" {
		return matches, nil
	}

	norm, err := s.rosterSidesLocked(*discordID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT ` + matchColumns + ` FROM matches WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	all, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if sideOf(&m, *discordID, norm) != SideNone {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// rosterSidesLocked loads the normalized roster rows for one discord id,
// keyed by match id.
func (s *store) rosterSidesLocked(discordID string) (map[int64]Side, error) {
	rows, err := s.db.Query(`SELECT match_id, side FROM match_rosters WHERE discord_id = ?`, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match rosters: %w", err)
	}
	defer rows.Close()

	sides := make(map[int64]Side)
	for rows.Next() {
		var matchID int64
		var side Side
		if err := rows.Scan(&matchID, &side); err != nil {
			return nil, err
		}
		sides[matchID] = side
	}
	return sides, rows.Err()
}

// allRosterRowsLocked loads the whole normalized roster relation, keyed by
// match id. The tables are small; one read beats a query per match.
func (s *store) allRosterRowsLocked() (map[int64]map[string]Side, error) {
	rows, err := s.db.Query(`SELECT match_id, discord_id, side FROM match_rosters`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match rosters: %w", err)
	}
	defer rows.Close()

	rosters := make(map[int64]map[string]Side)
	for rows.Next() {
		var matchID int64
		var discordID string
		var side Side
		if err := rows.Scan(&matchID, &discordID, &side); err != nil {
			return nil, err
		}
		if rosters[matchID] == nil {
			rosters[matchID] = make(map[string]Side)
		}
		rosters[matchID][discordID] = side
	}
	return rosters, rows.Err()
}

// sideOf resolves a player's side in a match, preferring a normalized roster
// row and falling back to the legacy comma-joined strings.
func sideOf(m *Match, discordID string, norm map[int64]Side) Side {
	if side, ok := norm[m.ID]; ok {
		return side
	}
	return m.SideOf(discordID)
}

// mergedRoster returns the discord ids on one side of a match, legacy tokens
// first, then any normalized rows not present in the legacy string. The
// normalized extras are sorted so repeated reads serialize identically.
func mergedRoster(m *Match, side Side, norm map[string]Side) []string {
	var legacy *string
	if side == SideBlue {
		legacy = m.BlueTeam
	} else {
		legacy = m.RedTeam
	}

	ids := ParseRoster(legacy)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	var extras []string
	for id, s := range norm {
		if s == side && !seen[id] {
			extras = append(extras, id)
		}
	}
	sort.Strings(extras)
	return append(ids, extras...)
}

// GetMatchesWithPlayers returns every non-deleted match with its rosters
// resolved to player records.
func (s *store) GetMatchesWithPlayers() ([]MatchWithPlayers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + matchColumns + ` FROM matches WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}

	rosters, err := s.allRosterRowsLocked()
	if err != nil {
		return nil, err
	}

	playerRows, err := s.db.Query(`SELECT ` + playerColumns + ` FROM players`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer playerRows.Close()

	byDiscordID := make(map[string]Player)
	for playerRows.Next() {
		p, err := scanPlayer(playerRows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		if p.DiscordID != nil && *p.DiscordID != "" {
			byDiscordID[*p.DiscordID] = *p
		}
	}
	if err := playerRows.Err(); err != nil {
		return nil, err
	}

	result := []MatchWithPlayers{}
	for _, m := range matches {
		mwp := MatchWithPlayers{Match: m, BluePlayers: []Player{}, RedPlayers: []Player{}}
		for _, id := range mergedRoster(&m, SideBlue, rosters[m.ID]) {
			if p, ok := byDiscordID[id]; ok {
				mwp.BluePlayers = append(mwp.BluePlayers, p)
			}
		}
		for _, id := range mergedRoster(&m, SideRed, rosters[m.ID]) {
			if p, ok := byDiscordID[id]; ok {
				mwp.RedPlayers = append(mwp.RedPlayers, p)
			}
		}
		result = append(result, mwp)
	}
	return result, nil
}

// GetSameTeamWinRate tallies the shared-side record of two players resolved
// by name. Matches where they sit on opposite sides are not counted at all.
func (s *store) GetSameTeamWinRate(nameOne, nameTwo string) (*SameTeamWinRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	one, err := s.getPlayerByNameLocked(nameOne)
	if err != nil {
		return nil, err
	}
	two, err := s.getPlayerByNameLocked(nameTwo)
	if err != nil {
		return nil, err
	}

	result := &SameTeamWinRate{PlayerOne: nameOne, PlayerTwo: nameTwo}
	if one.DiscordID == nil || two.DiscordID == nil {
		return result, nil
	}
	idOne, idTwo := *one.DiscordID, *two.DiscordID

	normOne, err := s.rosterSidesLocked(idOne)
	if err != nil {
		return nil, err
	}
	normTwo, err := s.rosterSidesLocked(idTwo)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT ` + matchColumns + ` FROM matches WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		sideOne := sideOf(&m, idOne, normOne)
		if sideOne == SideNone || sideOne != sideOf(&m, idTwo, normTwo) {
			continue
		}
		result.GamesPlayed++
		// A missing outcome matches neither win code and counts as a loss.
		outcome := 0
		if m.MatchOutcome != nil {
			outcome = *m.MatchOutcome
		}
		if (sideOne == SideBlue && outcome == OutcomeBlueWin) || (sideOne == SideRed && outcome == OutcomeRedWin) {
			result.Wins++
		} else {
			result.Losses++
		}
	}
	if result.GamesPlayed > 0 {
		result.WinRate = float64(result.Wins) / float64(result.GamesPlayed)
	}
	return result, nil
}

// GetPlayerProfile returns a player with their matches (newest first) and
// rating history (oldest first). Empty histories are empty slices, not
// errors; only an unknown name fails.
func (s *store) GetPlayerProfile(name string) (*PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, err := s.getPlayerByNameLocked(name)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchesForDiscordIDLocked(player.DiscordID)
	if err != nil {
		return nil, err
	}
	history, err := s.eloHistoryLocked(name)
	if err != nil {
		return nil, err
	}
	return &PlayerProfile{Player: *player, Matches: matches, EloHistory: history}, nil
}

// GetEloHistory returns the rating snapshots for a player name, oldest
// first. Unknown names yield an empty sequence.
func (s *store) GetEloHistory(playerName string) ([]EloSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eloHistoryLocked(playerName)
}

func (s *store) eloHistoryLocked(playerName string) ([]EloSnapshot, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, updated_at, entry_id, match_id, player_name, player_elos, discord_id
		 FROM player_elo WHERE LOWER(player_name) = LOWER(?) ORDER BY created_at ASC, id ASC`, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to query elo history: %w", err)
	}
	defer rows.Close()

	history := []EloSnapshot{}
	for rows.Next() {
		var e EloSnapshot
		err := rows.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.EntryID, &e.MatchID, &e.PlayerName, &e.PlayerElos, &e.DiscordID)
		if err != nil {
			log.Error("Failed to scan elo history row", "error", err)
			continue
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// GetLeaderboard ranks every non-deleted player with at least
// MinLeaderboardGames pug games by rating. All-time and active ranks are
// dense ranks by rating; listing order is rating descending with player id
// ascending as the tiebreak.
func (s *store) GetLeaderboard() ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, player_name, discord_id, COALESCE(current_elo, 0), COALESCE(pug_wins, 0), COALESCE(pug_losses, 0), COALESCE(pug_draws, 0)
		FROM players
		WHERE deleted_at IS NULL
		  AND COALESCE(pug_wins, 0) + COALESCE(pug_losses, 0) + COALESCE(pug_draws, 0) >= ?
		ORDER BY COALESCE(current_elo, 0) DESC, id ASC
	`, MinLeaderboardGames)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard players: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		var name, discordID *string
		if err := rows.Scan(&e.ID, &name, &discordID, &e.CurrentElo, &e.PugWins, &e.PugLosses, &e.PugDraws); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		if name != nil {
			e.PlayerName = *name
		}
		if discordID != nil {
			e.DiscordID = *discordID
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	active, err := s.activeDiscordIDsLocked(time.Now().AddDate(0, 0, -ActiveWindowDays))
	if err != nil {
		return nil, err
	}

	rankEntries(entries, active)
	return entries, nil
}

// activeDiscordIDsLocked collects every discord id on the roster of a
// non-deleted match created at or after the cutoff.
func (s *store) activeDiscordIDsLocked(cutoff time.Time) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT ` + matchColumns + ` FROM matches WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches, err := collectMatches(rows)
	if err != nil {
		return nil, err
	}

	rosters, err := s.allRosterRowsLocked()
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool)
	for _, m := range matches {
		if m.CreatedAt.Before(cutoff) {
			continue
		}
		for _, id := range mergedRoster(&m, SideBlue, rosters[m.ID]) {
			active[id] = true
		}
		for _, id := range mergedRoster(&m, SideRed, rosters[m.ID]) {
			active[id] = true
		}
	}
	return active, nil
}

func collectMatches(rows *sql.Rows) ([]Match, error) {
	matches := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}
