// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/ledgerworks/blockchain/foundation/blockchain/accounts"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/genesis"
	"github.com/ledgerworks/blockchain/foundation/blockchain/mempool"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// Set of errors returned by the state api.
var (
	ErrChainNotEmpty  = errors.New("chain already has blocks")
	ErrNoTransactions = errors.New("no transactions in pool")
	ErrNoSealer       = errors.New("no sealer configured")
	ErrStaleChallenge = errors.New("challenge is no longer for the next block")
	ErrValueBelowFee  = errors.New("value doesn't cover the fee")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// Sealer interface represents the behavior required to be implemented by
// any package that can perform the proof of work for a challenge, locally
// or by calling a mining service.
type Sealer interface {
	Mine(ctx context.Context, ch miner.Challenge) (miner.Solution, error)
}

// ProofChecker interface represents the behavior required to decide
// whether the solution returned by a miner is accepted.
type ProofChecker interface {
	CheckProof(ch miner.Challenge, sol miner.Solution) error
}

// TrustMiner accepts any solution returned by the miner.
type TrustMiner struct{}

// CheckProof implements the ProofChecker interface.
func (TrustMiner) CheckProof(ch miner.Challenge, sol miner.Solution) error {
	return nil
}

// VerifyProof accepts a solution only when the digest can be reproduced and
// meets the difficulty.
type VerifyProof struct{}

// CheckProof implements the ProofChecker interface.
func (VerifyProof) CheckProof(ch miner.Challenge, sol miner.Solution) error {
	return miner.Check(ch, sol)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Storage       database.Storage
	Genesis       genesis.Genesis
	Authenticator *auth.Authenticator
	Sealer        Sealer
	ProofChecker  ProofChecker
	Querier       accounts.Querier
	EvHandler     EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	storage   database.Storage
	genesis   genesis.Genesis
	auth      *auth.Authenticator
	sealer    Sealer
	checker   ProofChecker
	querier   accounts.Querier
	evHandler EventHandler

	mempool *mempool.Mempool
	blocks  []database.Block
	meta    database.Metaparams

	Worker Worker
}

// New constructs a new blockchain for data management. Any blocks already
// in storage are loaded and verified. An empty chain is given its genesis
// block when the genesis names an account to mint to.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	gen := cfg.Genesis
	if gen.Difficulty == 0 && gen.RewardFraction == 0 {
		d := genesis.Default()
		gen.Difficulty = d.Difficulty
		gen.RewardFraction = d.RewardFraction
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	authenticator := cfg.Authenticator
	if authenticator == nil {
		return nil, errors.New("authenticator is required")
	}

	checker := cfg.ProofChecker
	if checker == nil {
		checker = TrustMiner{}
	}

	querier := cfg.Querier
	if querier == nil {
		querier = accounts.NewScanner()
	}

	state := State{
		storage:   cfg.Storage,
		genesis:   gen,
		auth:      authenticator,
		sealer:    cfg.Sealer,
		checker:   checker,
		querier:   querier,
		evHandler: ev,
		mempool:   mempool.New(),
	}
	state.meta = state.initialMetaparams()

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	if err := state.Load(); err != nil {
		return nil, err
	}

	if len(state.blocks) == 0 && gen.HasMint() {
		addr, err := database.ToAddress(gen.Address)
		if err != nil {
			return nil, err
		}

		if _, err := state.CreateGenesis(addr, gen.Amount); err != nil {
			return nil, err
		}
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.storage.Close()
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// initialMetaparams returns the metaparameters for an empty chain.
func (s *State) initialMetaparams() database.Metaparams {
	fee := database.ComputeFee(0)

	return database.Metaparams{
		Index:          0,
		PrevHash:       signature.ZeroHash,
		Difficulty:     s.genesis.Difficulty,
		Fee:            fee,
		Reward:         database.ComputeReward(fee),
		RewardFraction: s.genesis.RewardFraction,
	}
}

// cancelMining tells the worker to stop any search in flight since the
// pool it was handed is about to change.
func (s *State) cancelMining() {
	if s.Worker != nil {
		s.Worker.SignalCancelMining()
	}
}
