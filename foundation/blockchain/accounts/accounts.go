// Package accounts derives account balances and transaction history from
// the committed blocks and the live pool.
package accounts

import (
	"sync"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Set of record types produced for a transaction.
const (
	TypeSend    = "send"
	TypeReceive = "receive"
)

// Record represents a transaction as seen from one account.
type Record struct {
	database.Tx
	Type   string `json:"type"`
	InPool bool   `json:"in_pool"`
}

// Querier represents the behavior required to answer balance and history
// questions. Committed blocks are applied in index order and the pool is
// passed on every query since it changes between seals.
type Querier interface {
	Reset()
	ApplyBlock(block database.Block)
	Balance(addr database.Address, pool database.Transactions) (bool, float64)
	History(addr database.Address, pool database.Transactions) (bool, []Record)
}

// =============================================================================

// Scanner answers every query by walking every committed transaction and
// then the pool.
type Scanner struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// NewScanner constructs a querier that scans the full history.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Reset forgets every applied block.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = nil
}

// ApplyBlock records a committed block.
func (s *Scanner) ApplyBlock(block database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = append(s.blocks, block)
}

// Balance returns whether the address ever transacted and its balance.
func (s *Scanner) Balance(addr database.Address, pool database.Transactions) (bool, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	var balance float64

	apply := func(txs database.Transactions) {
		for _, tx := range txs {
			exists, balance = applyBalance(addr, tx, exists, balance)
		}
	}

	for _, block := range s.blocks {
		apply(block.Transactions)
	}
	apply(pool)

	return exists, balance
}

// History returns whether the address ever transacted and every record
// involving it, committed blocks first.
func (s *Scanner) History(addr database.Address, pool database.Transactions) (bool, []Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []Record{}
	for _, block := range s.blocks {
		for _, tx := range block.Transactions {
			records = appendRecords(records, addr, tx, false)
		}
	}
	for _, tx := range pool {
		records = appendRecords(records, addr, tx, true)
	}

	return len(records) > 0, records
}

// =============================================================================

// Index keeps a running balance and history per address for the committed
// blocks so only the pool has to be scanned on a query.
type Index struct {
	mu       sync.RWMutex
	balances map[database.Address]float64
	history  map[database.Address][]Record
}

// NewIndex constructs a querier backed by a per address index.
func NewIndex() *Index {
	return &Index{
		balances: make(map[database.Address]float64),
		history:  make(map[database.Address][]Record),
	}
}

// Reset clears the index.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.balances = make(map[database.Address]float64)
	idx.history = make(map[database.Address][]Record)
}

// ApplyBlock folds a committed block into the index.
func (idx *Index) ApplyBlock(block database.Block) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, tx := range block.Transactions {
		for _, addr := range parties(tx) {
			_, idx.balances[addr] = applyBalance(addr, tx, true, idx.balances[addr])
			idx.history[addr] = appendRecords(idx.history[addr], addr, tx, false)
		}
	}
}

// Balance returns whether the address ever transacted and its balance.
func (idx *Index) Balance(addr database.Address, pool database.Transactions) (bool, float64) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	addr = database.Normalize(string(addr))
	balance, exists := idx.balances[addr]

	for _, tx := range pool {
		exists, balance = applyBalance(addr, tx, exists, balance)
	}

	return exists, balance
}

// History returns whether the address ever transacted and every record
// involving it, committed blocks first.
func (idx *Index) History(addr database.Address, pool database.Transactions) (bool, []Record) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	addr = database.Normalize(string(addr))

	committed := idx.history[addr]
	records := make([]Record, len(committed), len(committed)+len(pool))
	copy(records, committed)

	for _, tx := range pool {
		records = appendRecords(records, addr, tx, true)
	}

	return len(records) > 0, records
}

// =============================================================================

// applyBalance applies one transaction to the balance of the address. The
// sender side is always applied before the receiver side.
func applyBalance(addr database.Address, tx database.Tx, exists bool, balance float64) (bool, float64) {
	addr = database.Normalize(string(addr))

	if tx.Sender == addr {
		balance -= tx.Value
		exists = true
	}
	if tx.Receiver == addr {
		balance += tx.FinalValue
		exists = true
	}

	return exists, balance
}

// appendRecords appends the send and receive records the transaction
// produces for the address.
func appendRecords(records []Record, addr database.Address, tx database.Tx, inPool bool) []Record {
	addr = database.Normalize(string(addr))

	if tx.Sender == addr {
		records = append(records, Record{Tx: tx, Type: TypeSend, InPool: inPool})
	}
	if tx.Receiver == addr {
		records = append(records, Record{Tx: tx, Type: TypeReceive, InPool: inPool})
	}

	return records
}

// parties returns the distinct addresses involved in the transaction.
func parties(tx database.Tx) []database.Address {
	if tx.Sender == tx.Receiver {
		return []database.Address{tx.Sender}
	}

	return []database.Address{tx.Sender, tx.Receiver}
}
