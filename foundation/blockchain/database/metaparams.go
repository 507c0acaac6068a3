package database

import "math"

// Default metaparameters for a new chain.
const (
	DefaultDifficulty     = 2
	DefaultRewardFraction = 0.1
)

// congestionThreshold is the pool size after which the fee starts to grow.
const congestionThreshold = 10

// =============================================================================

// Metaparams represents the parameters for the block that the current pool
// is going to become.
type Metaparams struct {
	Index          uint64  `json:"index"`
	PrevHash       string  `json:"prev_hash"`
	Difficulty     int     `json:"difficulty"`
	Fee            float64 `json:"fee"`
	PoolSize       int     `json:"pool_size"`
	Reward         float64 `json:"reward"`
	RewardFraction float64 `json:"reward_fraction"`
}

// ComputeFee returns the fee for the next pool given the number of
// transactions that were just sealed. The fee is flat up to the congestion
// threshold and grows exponentially past it.
func ComputeFee(sealed int) float64 {
	if sealed <= congestionThreshold {
		return 1
	}

	return math.Exp(float64(sealed-congestionThreshold) / 10)
}

// ComputeReward returns the reward paid to a rewarded transaction's sender.
func ComputeReward(fee float64) float64 {
	return 1.5 * fee
}
