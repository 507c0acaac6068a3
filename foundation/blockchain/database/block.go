package database

import (
	"errors"
	"fmt"

	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// ErrIntegrity is returned when the chain linkage of a set of blocks is broken.
var ErrIntegrity = errors.New("chain integrity violated")

// =============================================================================

// Block represents a sealed group of transactions. All the fields are set
// once at construction and the content hash is always recomputed.
type Block struct {
	Index        uint64       // Position of the block in the chain.
	SealedHash   string       // Proof of work digest supplied by the miner.
	PrevHash     string       // Content hash of the previous block.
	Nonce        string       // Hex nonce that produced the sealed hash.
	Difficulty   int          // Number of leading 0's at the time of sealing.
	Transactions Transactions // Frozen copy of the pool at sealing time.
	TimeStamp    string       // Time the block was added to the chain.
}

// NewBlock constructs a block from a copy of the specified transactions.
func NewBlock(index uint64, sealedHash string, prevHash string, nonce string, difficulty int, trans Transactions) Block {
	return Block{
		Index:        index,
		SealedHash:   sealedHash,
		PrevHash:     prevHash,
		Nonce:        nonce,
		Difficulty:   difficulty,
		Transactions: trans.Clone(),
		TimeStamp:    TimeStamp(),
	}
}

// Hash returns the content hash for the block.
func (b Block) Hash() string {

	// The transactions marshal with their keys in sequence order, so the
	// same block read back from storage produces the same string.
	trans, err := b.Transactions.MarshalJSON()
	if err != nil {
		return signature.ZeroHash
	}

	str := fmt.Sprintf("|%d|%s|%s|%s|%d|%s|",
		b.Index,
		b.SealedHash,
		trans,
		b.PrevHash,
		b.Difficulty,
		b.TimeStamp,
	)

	return signature.Digest([]byte(str))
}

// =============================================================================

// VerifyChain checks the blocks are numbered from zero without gaps and that
// every block points at the content hash of the block before it.
func VerifyChain(blocks []Block) error {
	for i, block := range blocks {
		if block.Index != uint64(i) {
			return fmt.Errorf("%w: block %d has index %d", ErrIntegrity, i, block.Index)
		}

		if i == 0 {
			if block.PrevHash != signature.ZeroHash {
				return fmt.Errorf("%w: block 0 previous hash is %q", ErrIntegrity, block.PrevHash)
			}
			continue
		}

		if exp := blocks[i-1].Hash(); block.PrevHash != exp {
			return fmt.Errorf("%w: block %d previous hash doesn't match, got %s, exp %s", ErrIntegrity, i, block.PrevHash, exp)
		}
	}

	return nil
}

// =============================================================================

// BlockData represents what is written to storage for each block.
type BlockData struct {
	Index          uint64       `json:"block_index"`
	PrevHash       string       `json:"previous_block_hash"`
	Difficulty     int          `json:"difficulty"`
	Nonce          string       `json:"nonce"`
	SealedHash     string       `json:"mined_block_hash"`
	RewardFraction float64      `json:"percent_tx_rewarded"`
	Fee            float64      `json:"mining_fee"`
	Reward         float64      `json:"reward_for_tx"`
	Transactions   Transactions `json:"transactions"`
	TimeStamp      string       `json:"timestamp"`
}

// NewBlockData constructs the value to serialize to storage. The
// metaparameters are the ones active while the block's pool was open.
func NewBlockData(block Block, meta Metaparams) BlockData {
	return BlockData{
		Index:          block.Index,
		PrevHash:       block.PrevHash,
		Difficulty:     block.Difficulty,
		Nonce:          block.Nonce,
		SealedHash:     block.SealedHash,
		RewardFraction: meta.RewardFraction,
		Fee:            meta.Fee,
		Reward:         meta.Reward,
		Transactions:   block.Transactions.Clone(),
		TimeStamp:      block.TimeStamp,
	}
}

// ToBlock converts the storage representation back into a block.
func ToBlock(blockData BlockData) Block {
	return Block{
		Index:        blockData.Index,
		SealedHash:   blockData.SealedHash,
		PrevHash:     blockData.PrevHash,
		Nonce:        blockData.Nonce,
		Difficulty:   blockData.Difficulty,
		Transactions: blockData.Transactions.Clone(),
		TimeStamp:    blockData.TimeStamp,
	}
}
