package game

import "sync"

// MemoryBalanceTracker keeps balances for the process lifetime only.
type MemoryBalanceTracker struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryBalanceTracker() *MemoryBalanceTracker {
	return &MemoryBalanceTracker{
		balances: make(map[string]int64),
	}
}

func (m *MemoryBalanceTracker) Load(playerID string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[playerID]
	return balance, ok, nil
}

func (m *MemoryBalanceTracker) Save(playerID string, balance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] = balance
	return nil
}

func (m *MemoryBalanceTracker) Remove(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.balances, playerID)
	return nil
}
