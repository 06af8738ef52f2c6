package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var ledgerLogger = log.With().Str("logger_name", "game::ledger").Logger()

// Ledger owns every chip balance in the process. Balances are the only
// state shared across rooms; all mutation goes through Reserve and Payout.
type Ledger struct {
	mu              sync.Mutex
	balances        map[string]int64
	startingBalance int64
	store           BalanceStore
}

func NewLedger(startingBalance int64, store BalanceStore) *Ledger {
	return &Ledger{
		balances:        make(map[string]int64),
		startingBalance: startingBalance,
		store:           store,
	}
}

// AddPlayer registers a balance for a newly connected player, restoring a
// persisted balance when the store has one. Returns the balance.
func (l *Ledger) AddPlayer(playerID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if balance, ok := l.balances[playerID]; ok {
		return balance
	}
	balance := l.startingBalance
	if l.store != nil {
		stored, ok, err := l.store.Load(playerID)
		if err != nil {
			ledgerLogger.Error().Str("playerID", playerID).Msgf("Unable to load persisted balance: %v", err)
		} else if ok {
			balance = stored
		}
	}
	l.balances[playerID] = balance
	return balance
}

// RemovePlayer persists and forgets the player's balance.
func (l *Ledger) RemovePlayer(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[playerID]
	if !ok {
		return
	}
	if l.store != nil {
		if err := l.store.Save(playerID, balance); err != nil {
			ledgerLogger.Error().Str("playerID", playerID).Msgf("Unable to persist balance: %v", err)
		}
	}
	delete(l.balances, playerID)
}

func (l *Ledger) BalanceOf(playerID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[playerID]
}

// Reserve debits the player's balance for a stake. The caller credits the
// pot. Balances never go negative.
func (l *Ledger) Reserve(playerID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[playerID]
	if !ok {
		return PlayerNotFoundError{PlayerID: playerID}
	}
	if amount > balance {
		return InsufficientFundsError{PlayerID: playerID, Amount: amount, Balance: balance}
	}
	l.balances[playerID] = balance - amount
	return nil
}

// Payout credits the player's balance. Used for pot distribution and for
// refunding an all-fold hand.
func (l *Ledger) Payout(playerID string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[playerID]; !ok {
		// The player disconnected mid-hand. Credit through the store so the
		// chips are not destroyed.
		if l.store != nil {
			stored, _, err := l.store.Load(playerID)
			if err == nil {
				if err := l.store.Save(playerID, stored+amount); err != nil {
					ledgerLogger.Error().Str("playerID", playerID).Msgf("Unable to persist payout: %v", err)
				}
				return
			}
		}
		ledgerLogger.Warn().Str("playerID", playerID).Msgf("Dropping payout of %d for unknown player", amount)
		return
	}
	l.balances[playerID] += amount
}

// Balances returns a snapshot for the given players.
func (l *Ledger) Balances(playerIDs []string) map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make(map[string]int64, len(playerIDs))
	for _, id := range playerIDs {
		if balance, ok := l.balances[id]; ok {
			snapshot[id] = balance
		}
	}
	return snapshot
}

// Flush persists the given players' balances. Called at hand-resolution
// boundaries.
func (l *Ledger) Flush(playerIDs []string) {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range playerIDs {
		balance, ok := l.balances[id]
		if !ok {
			continue
		}
		if err := l.store.Save(id, balance); err != nil {
			ledgerLogger.Error().Str("playerID", id).Msgf("Unable to persist balance: %v", err)
		}
	}
}
