package game

// BalanceStore persists player balances across connections. It is consulted
// when a player connects and flushed at hand-resolution boundaries.
type BalanceStore interface {
	Load(playerID string) (int64, bool, error)
	Save(playerID string, balance int64) error
	Remove(playerID string) error
}
