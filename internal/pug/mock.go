package pug

import "sync"

// MockStore is a mock implementation of the PugStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetAllPlayersFunc         func() ([]Player, error)
	GetPlayerFunc             func(id int64) (*Player, error)
	GetPlayerByDiscordIDFunc  func(discordID string) (*Player, error)
	GetPlayerByNameFunc       func(name string) (*Player, error)
	GetLeaderboardFunc        func() ([]LeaderboardEntry, error)
	GetPlayerProfileFunc      func(name string) (*PlayerProfile, error)
	GetAllMatchesFunc         func() ([]Match, error)
	GetMatchFunc              func(id int64) (*Match, error)
	GetMatchesForPlayerFunc   func(playerName string) ([]Match, error)
	GetMatchesWithPlayersFunc func() ([]MatchWithPlayers, error)
	GetSameTeamWinRateFunc    func(nameOne, nameTwo string) (*SameTeamWinRate, error)
	GetEloHistoryFunc         func(playerName string) ([]EloSnapshot, error)

	// Call records
	GetPlayerCalls           []int64
	GetPlayerByNameCalls     []string
	GetPlayerProfileCalls    []string
	GetMatchesForPlayerCalls []string
	GetSameTeamWinRateCalls  []struct {
		NameOne string
		NameTwo string
	}
	GetEloHistoryCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) GetPlayer(id int64) (*Player, error) {
	m.mu.Lock()
	m.GetPlayerCalls = append(m.GetPlayerCalls, id)
	m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetPlayerByDiscordID(discordID string) (*Player, error) {
	if m.GetPlayerByDiscordIDFunc != nil {
		return m.GetPlayerByDiscordIDFunc(discordID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetPlayerByName(name string) (*Player, error) {
	m.mu.Lock()
	m.GetPlayerByNameCalls = append(m.GetPlayerByNameCalls, name)
	m.mu.Unlock()
	if m.GetPlayerByNameFunc != nil {
		return m.GetPlayerByNameFunc(name)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetLeaderboard() ([]LeaderboardEntry, error) {
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc()
	}
	return []LeaderboardEntry{}, nil
}

func (m *MockStore) GetPlayerProfile(name string) (*PlayerProfile, error) {
	m.mu.Lock()
	m.GetPlayerProfileCalls = append(m.GetPlayerProfileCalls, name)
	m.mu.Unlock()
	if m.GetPlayerProfileFunc != nil {
		return m.GetPlayerProfileFunc(name)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllMatches() ([]Match, error) {
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return []Match{}, nil
}

func (m *MockStore) GetMatch(id int64) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetMatchesForPlayer(playerName string) ([]Match, error) {
	m.mu.Lock()
	m.GetMatchesForPlayerCalls = append(m.GetMatchesForPlayerCalls, playerName)
	m.mu.Unlock()
	if m.GetMatchesForPlayerFunc != nil {
		return m.GetMatchesForPlayerFunc(playerName)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetMatchesWithPlayers() ([]MatchWithPlayers, error) {
	if m.GetMatchesWithPlayersFunc != nil {
		return m.GetMatchesWithPlayersFunc()
	}
	return []MatchWithPlayers{}, nil
}

func (m *MockStore) GetSameTeamWinRate(nameOne, nameTwo string) (*SameTeamWinRate, error) {
	m.mu.Lock()
	m.GetSameTeamWinRateCalls = append(m.GetSameTeamWinRateCalls, struct {
		NameOne string
		NameTwo string
	}{nameOne, nameTwo})
	m.mu.Unlock()
	if m.GetSameTeamWinRateFunc != nil {
		return m.GetSameTeamWinRateFunc(nameOne, nameTwo)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetEloHistory(playerName string) ([]EloSnapshot, error) {
	m.mu.Lock()
	m.GetEloHistoryCalls = append(m.GetEloHistoryCalls, playerName)
	m.mu.Unlock()
	if m.GetEloHistoryFunc != nil {
		return m.GetEloHistoryFunc(playerName)
	}
	return []EloSnapshot{}, nil
}
