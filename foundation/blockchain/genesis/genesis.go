// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time `json:"date"`
	Difficulty     int       `json:"difficulty"`      // Number of leading 0's a block's proof of work needs.
	RewardFraction float64   `json:"reward_fraction"` // Fraction of a block's transactions whose sender is rewarded.
	Address        string    `json:"address"`         // Account the initial balance is minted to.
	Amount         float64   `json:"amount"`          // Initial balance minted in the genesis block.
}

// Default returns the genesis settings used when no file is provided. No
// initial balance is minted.
func Default() Genesis {
	return Genesis{
		Date:           time.Now().UTC(),
		Difficulty:     database.DefaultDifficulty,
		RewardFraction: database.DefaultRewardFraction,
	}
}

// HasMint reports whether the genesis names an account to mint to.
func (g Genesis) HasMint() bool {
	return g.Address != "" && g.Amount > 0
}

// =============================================================================

// Load opens and consumes the genesis file. Missing settings take their
// default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis %s: %w", path, err)
	}

	return genesis, nil
}

// Validate checks the settings are usable.
func (g Genesis) Validate() error {
	if g.Difficulty < 0 || g.Difficulty > 64 {
		return fmt.Errorf("difficulty %d out of range [0, 64]", g.Difficulty)
	}

	if g.RewardFraction < 0 || g.RewardFraction > 1 {
		return fmt.Errorf("reward fraction %v out of range [0, 1]", g.RewardFraction)
	}

	if g.Address != "" {
		if _, err := database.ToAddress(g.Address); err != nil {
			return fmt.Errorf("address %q: %w", g.Address, err)
		}
	}

	if g.Amount < 0 {
		return fmt.Errorf("amount %v is negative", g.Amount)
	}

	return nil
}
