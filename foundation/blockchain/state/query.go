package state

import (
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/accounts"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Metaparams returns the parameters for the block the current pool is
// going to become.
func (s *State) Metaparams() database.Metaparams {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.meta
	meta.PoolSize = s.mempool.Count()

	return meta
}

// ChallengeTTL returns how long an issued challenge stays valid.
func (s *State) ChallengeTTL() time.Duration {
	return s.auth.TTL()
}

// Pool returns a copy of the pending transactions.
func (s *State) Pool() database.Transactions {
	return s.mempool.Copy()
}

// PoolCount returns the number of pending transactions.
func (s *State) PoolCount() int {
	return s.mempool.Count()
}

// Chain returns a copy of the committed blocks.
func (s *State) Chain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]database.Block, len(s.blocks))
	for i, block := range s.blocks {
		block.Transactions = block.Transactions.Clone()
		blocks[i] = block
	}

	return blocks
}

// LatestBlock returns the last committed block.
func (s *State) LatestBlock() (database.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.blocks) == 0 {
		return database.Block{}, false
	}

	return s.blocks[len(s.blocks)-1], true
}

// BalanceOf returns whether the address has ever transacted and its
// balance over the committed blocks and the pool.
func (s *State) BalanceOf(addr database.Address) (bool, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.querier.Balance(database.Normalize(string(addr)), s.mempool.Copy())
}

// TransactionsOf returns whether the address has ever transacted and the
// records of every transaction involving it, committed blocks first.
func (s *State) TransactionsOf(addr database.Address) (bool, []accounts.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.querier.History(database.Normalize(string(addr)), s.mempool.Copy())
}
