// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of transactions organized by account:nonce.
type Mempool struct {
	mu       sync.RWMutex
	pool     map[string]database.BlockTx
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyTip)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]database.BlockTx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction from the mempool.
func (mp *Mempool) Upsert(tx database.BlockTx) (int, error) {
	key, err := mapKey(tx)
	if err != nil {
		return 0, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[key] = tx

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.BlockTx) error {
	key, err := mapKey(tx)
	if err != nil {
		return err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, key)

	return nil
}

// Reconcile removes the transactions that were included in the chain and
// puts back the ones from blocks the chain no longer includes. A restored
// transaction doesn't replace one the pool already holds for the same
// account and nonce.
func (mp *Mempool) Reconcile(included []database.BlockTx, restored []database.BlockTx) {
	remove := make(map[string]struct{}, len(included))
	for _, tx := range included {
		if key, err := mapKey(tx); err == nil {
			remove[key] = struct{}{}
		}
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, tx := range restored {
		key, err := mapKey(tx)
		if err != nil {
			continue
		}
		if _, exists := remove[key]; exists {
			continue
		}
		if _, exists := mp.pool[key]; !exists {
			mp.pool[key] = tx
		}
	}

	for key := range remove {
		delete(mp.pool, key)
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.BlockTx)
}

// PickBest uses the configured select strategy to return the next set of
// transactions for the next block. If no number is specified, all the
// transactions are returned in the strategy's order.
func (mp *Mempool) PickBest(howMany ...uint16) []database.BlockTx {
	number := -1
	if len(howMany) > 0 {
		number = int(howMany[0])
	}

	m := make(map[database.AccountID][]database.BlockTx)
	mp.mu.RLock()
	{
		if number == -1 {
			number = len(mp.pool)
		}

		for key, tx := range mp.pool {
			account := database.AccountID(strings.Split(key, ":")[0])
			m[account] = append(m[account], tx)
		}
	}
	mp.mu.RUnlock()

	return mp.selectFn(m, number)
}

// =============================================================================

// mapKey is used to generate the map key.
func mapKey(tx database.BlockTx) (string, error) {
	account, err := tx.FromAccount()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", account, tx.Nonce), nil
}
