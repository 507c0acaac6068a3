package state

import (
	"fmt"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Load re-reads the chain from storage and verifies the linkage of every
// block. On any failure the state is left as it was. On success the pool
// is emptied.
func (s *State) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelMining()

	s.evHandler("state: Load: started")
	defer s.evHandler("state: Load: completed")

	blocks, err := database.ReadAll(s.storage)
	if err != nil {
		return fmt.Errorf("read chain: %w", err)
	}

	if err := database.VerifyChain(blocks); err != nil {
		s.evHandler("state: Load: ERROR: %s", err)
		return err
	}

	s.querier.Reset()
	for _, block := range blocks {
		s.querier.ApplyBlock(block)
	}

	s.blocks = blocks
	s.meta = s.initialMetaparams()
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		s.meta = s.nextMetaparams(last, admittedCount(last))
	}

	s.mempool.Truncate()

	s.evHandler("state: Load: blocks[%d] fee[%v]", len(blocks), s.meta.Fee)

	return nil
}
