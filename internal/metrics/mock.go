package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	leaderboardRequests int
	profileRequests     int
	winRateRequests     int
	ingestJobsCompleted int
	ingestJobsFailed    int
	queryDurations      []float64
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		queryDurations: make([]float64, 0),
	}
}

func (m *Mock) IncLeaderboardRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardRequests++
}

func (m *Mock) IncProfileRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileRequests++
}

func (m *Mock) IncWinRateRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winRateRequests++
}

func (m *Mock) IncIngestJobsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestJobsCompleted++
}

func (m *Mock) IncIngestJobsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestJobsFailed++
}

func (m *Mock) ObserveQueryDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryDurations = append(m.queryDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// LeaderboardRequests returns the number of times IncLeaderboardRequests was called.
func (m *Mock) LeaderboardRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardRequests
}

// ProfileRequests returns the number of times IncProfileRequests was called.
func (m *Mock) ProfileRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileRequests
}

// WinRateRequests returns the number of times IncWinRateRequests was called.
func (m *Mock) WinRateRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winRateRequests
}

// IngestJobsCompleted returns the number of times IncIngestJobsCompleted was called.
func (m *Mock) IngestJobsCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingestJobsCompleted
}

// IngestJobsFailed returns the number of times IncIngestJobsFailed was called.
func (m *Mock) IngestJobsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingestJobsFailed
}
