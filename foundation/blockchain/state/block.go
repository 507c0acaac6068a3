package state

import (
	"context"
	"fmt"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// CreateGenesis mints the initial balance to the address and seals it as
// block 0. The chain and the pool must be empty.
func (s *State) CreateGenesis(addr database.Address, amount float64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.blocks) > 0 || s.mempool.Count() > 0 {
		return database.Block{}, ErrChainNotEmpty
	}

	addr, err := database.ToAddress(string(addr))
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: CreateGenesis: address[%s] amount[%v]", addr, amount)

	s.addTransaction(database.GenesisAccount, addr, amount, 0, "")

	block, err := s.seal(signature.ZeroHash, "0", s.mempool.Copy(), 1, nil)
	if err != nil {
		s.mempool.Truncate()
		return database.Block{}, err
	}

	return block, nil
}

// Seal turns the current pool into the next block using the proof of work
// output supplied by a miner.
func (s *State) Seal(sealedHash string, nonce string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelMining()

	pool := s.mempool.Copy()
	return s.seal(sealedHash, nonce, pool, len(pool), nil)
}

// MiningChallenge returns the work for the next block: a snapshot of the
// pool and the active metaparameters.
func (s *State) MiningChallenge() miner.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	return miner.NewChallenge(s.meta, s.mempool.Copy())
}

// Commit seals the pool returned by the miner for the challenge. The
// returned pool is taken as is. Transactions admitted while the miner was
// working stay in the pool for the next block.
func (s *State) Commit(ch miner.Challenge, sol miner.Solution) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch.Index != s.meta.Index || ch.PrevHash != s.meta.PrevHash {
		return database.Block{}, fmt.Errorf("%w: index[%d] exp[%d]", ErrStaleChallenge, ch.Index, s.meta.Index)
	}

	if err := s.checker.CheckProof(ch, sol); err != nil {
		return database.Block{}, err
	}

	carry := s.mempool.Since(len(ch.Pool))

	return s.seal(sol.Hash, sol.Nonce, sol.Transactions, len(ch.Pool), carry)
}

// MineNextBlock hands a snapshot of the pool to the sealer and commits the
// solution. The search runs without holding the state lock so admissions
// continue while mining.
func (s *State) MineNextBlock(ctx context.Context) (database.Block, error) {
	if s.sealer == nil {
		return database.Block{}, ErrNoSealer
	}

	s.evHandler("state: MineNextBlock: MINING: check pool count")

	ch := s.MiningChallenge()
	if len(ch.Pool) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNextBlock: MINING: perform POW: index[%d] pool[%d]", ch.Index, len(ch.Pool))

	sol, err := s.sealer.Mine(ctx, ch)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNextBlock: MINING: commit: hash[%s] nonce[%s]", sol.Hash, sol.Nonce)

	return s.Commit(ch, sol)
}

// =============================================================================

// seal writes the block to storage and only then updates the chain, the
// metaparameters and the pool. If the write fails nothing changes. The
// sealed count is the number of transactions that were admitted to the
// pool, not counting what the miner added. The caller must hold the lock.
func (s *State) seal(sealedHash string, nonce string, txs database.Transactions, sealed int, carry database.Transactions) (database.Block, error) {
	block := database.NewBlock(s.meta.Index, sealedHash, s.meta.PrevHash, nonce, s.meta.Difficulty, txs)

	s.evHandler("state: seal: write to storage: index[%d] txs[%d]", block.Index, len(block.Transactions))

	if err := s.storage.Write(database.NewBlockData(block, s.meta)); err != nil {
		s.evHandler("state: seal: ERROR: %s", err)
		return database.Block{}, fmt.Errorf("write block %d: %w", block.Index, err)
	}

	s.blocks = append(s.blocks, block)
	s.querier.ApplyBlock(block)

	s.meta = s.nextMetaparams(block, sealed)

	s.mempool.Truncate()
	for _, tx := range carry {
		s.mempool.Add(tx)
	}

	s.evHandler("state: seal: block[%d] hash[%s] fee[%v] reward[%v] carried[%d]", block.Index, block.Hash(), s.meta.Fee, s.meta.Reward, len(carry))

	return block, nil
}

// nextMetaparams returns the metaparameters for the block after the one
// specified.
func (s *State) nextMetaparams(block database.Block, sealed int) database.Metaparams {
	fee := database.ComputeFee(sealed)

	return database.Metaparams{
		Index:          block.Index + 1,
		PrevHash:       block.Hash(),
		Difficulty:     s.genesis.Difficulty,
		Fee:            fee,
		Reward:         database.ComputeReward(fee),
		RewardFraction: s.genesis.RewardFraction,
	}
}

// admittedCount returns the number of transactions in the block that were
// admitted to the pool, leaving out the rewards and the mining payment.
func admittedCount(block database.Block) int {
	var n int
	for _, tx := range block.Transactions {
		if tx.Sender == database.RewardAccount || tx.Sender == database.MiningPaymentAccount {
			continue
		}
		n++
	}

	return n
}
