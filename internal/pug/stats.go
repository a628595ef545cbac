package pug

// rankEntries fills in the activity flag and both rank columns. Entries must
// already be sorted by rating descending (id ascending on ties); ranks are
// dense, so tied ratings share a rank.
func rankEntries(entries []LeaderboardEntry, active map[string]bool) {
	allTimeRank := 0
	prevAllTime := -1 << 31
	activeRank := 0
	prevActive := -1 << 31

	for i := range entries {
		e := &entries[i]
		if e.CurrentElo != prevAllTime {
			allTimeRank++
			prevAllTime = e.CurrentElo
		}
		e.AllTimeRank = allTimeRank

		e.IsActive = e.DiscordID != "" && active[e.DiscordID]
		if !e.IsActive {
			continue
		}
		if e.CurrentElo != prevActive {
			activeRank++
			prevActive = e.CurrentElo
		}
		rank := activeRank
		e.ActiveRank = &rank
	}
}
