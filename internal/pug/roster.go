package pug

import "strings"

// ParseRoster splits a legacy comma-joined roster string into its discord id
// tokens, trimming whitespace and dropping empty entries.
func ParseRoster(roster *string) []string {
	if roster == nil || *roster == "" {
		return nil
	}
	var ids []string
	for _, tok := range strings.Split(*roster, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids
}

// rosterContains reports whether discordID appears as an exact token of the
// roster string. The bot's old queries used substring LIKE matching, which
// wrongly matched "42" against a roster containing "142"; membership here is
// exact token equality.
func rosterContains(roster *string, discordID string) bool {
	for _, id := range ParseRoster(roster) {
		if id == discordID {
			return true
		}
	}
	return false
}

// SideOf returns the roster side discordID appears on, parsing the legacy
// comma-joined strings. SideNone means the player was not in the match.
func (m *Match) SideOf(discordID string) Side {
	if discordID == "" {
		return SideNone
	}
	if rosterContains(m.BlueTeam, discordID) {
		return SideBlue
	}
	if rosterContains(m.RedTeam, discordID) {
		return SideRed
	}
	return SideNone
}
