// Package mempool maintains the pool of admitted transactions waiting to be
// sealed into the next block.
package mempool

import (
	"sync"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Mempool represents the pending transactions in insertion order. The
// position of a transaction is its sequence number, scoped to the lifetime
// of the pool between two seals.
type Mempool struct {
	mu   sync.RWMutex
	pool database.Transactions
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the pool and returns its sequence number.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool) - 1
}

// Copy returns a copy of the transactions in sequence order.
func (mp *Mempool) Copy() database.Transactions {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.pool.Clone()
}

// Since returns a copy of the transactions starting at the specified
// sequence number.
func (mp *Mempool) Since(seq int) database.Transactions {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if seq >= len(mp.pool) {
		return database.Transactions{}
	}
	if seq < 0 {
		seq = 0
	}

	return mp.pool[seq:].Clone()
}

// Truncate clears all the transactions from the pool and restarts the
// sequence numbers at zero.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
