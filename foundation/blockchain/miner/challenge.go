package miner

import (
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Challenge represents the work handed to a miner: a snapshot of the pool
// and the metaparameters the block will be sealed with.
type Challenge struct {
	Index          uint64                `json:"index"`
	PrevHash       string                `json:"prev_hash"`
	Difficulty     int                   `json:"difficulty"`
	Fee            float64               `json:"mining_fees"`
	Reward         float64               `json:"reward_for_tx"`
	RewardFraction float64               `json:"percent_tx_rewarded"`
	Pool           database.Transactions `json:"TXPOOL"`
}

// NewChallenge constructs a challenge from the metaparameters and a copy of
// the pool.
func NewChallenge(meta database.Metaparams, pool database.Transactions) Challenge {
	return Challenge{
		Index:          meta.Index,
		PrevHash:       meta.PrevHash,
		Difficulty:     meta.Difficulty,
		Fee:            meta.Fee,
		Reward:         meta.Reward,
		RewardFraction: meta.RewardFraction,
		Pool:           pool.Clone(),
	}
}

// Solution represents what a miner returns: the proof of work digest, the
// nonce that produced it and the pool augmented with the reward and mining
// payment transactions.
type Solution struct {
	Hash         string                `json:"hash_string"`
	Nonce        string                `json:"nonce"`
	Transactions database.Transactions `json:"transactions"`
}
