package public

import (
	"github.com/ledgerworks/blockchain/foundation/blockchain/accounts"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// block is the public view of a sealed block.
type block struct {
	Index        uint64                `json:"block_index"`
	Hash         string                `json:"hash"`
	PrevHash     string                `json:"previous_block_hash"`
	SealedHash   string                `json:"mined_block_hash"`
	Nonce        string                `json:"nonce"`
	Difficulty   int                   `json:"difficulty"`
	TimeStamp    string                `json:"timestamp"`
	Transactions database.Transactions `json:"transactions"`
}

func toBlock(b database.Block) block {
	return block{
		Index:        b.Index,
		Hash:         b.Hash(),
		PrevHash:     b.PrevHash,
		SealedHash:   b.SealedHash,
		Nonce:        b.Nonce,
		Difficulty:   b.Difficulty,
		TimeStamp:    b.TimeStamp,
		Transactions: b.Transactions,
	}
}

type pool struct {
	Count        int                   `json:"count"`
	Transactions database.Transactions `json:"transactions"`
}

type chain struct {
	Length int     `json:"length"`
	Blocks []block `json:"blocks"`
}

// Balance is the balance of an account, counting the pool.
type Balance struct {
	Address database.Address `json:"address"`
	Name    string           `json:"name"`
	Exists  bool             `json:"exists"`
	Balance float64          `json:"balance"`
}

// History lists every transaction an account took part in.
type History struct {
	Address database.Address  `json:"address"`
	Name    string            `json:"name"`
	Exists  bool              `json:"exists"`
	Records []accounts.Record `json:"records"`
}

// ChallengeRequest asks for a one time token to sign a transaction with.
type ChallengeRequest struct {
	Sender string `json:"sender" validate:"required,address"`
}

// Challenge is what a sender signs its next transaction against.
type Challenge struct {
	Sender    database.Address `json:"sender"`
	Nonce     string           `json:"nonce"`
	Fee       float64          `json:"mining_fee"`
	ExpiresIn int              `json:"expires_in"`
}

// SubmitResponse reports an admitted transaction.
type SubmitResponse struct {
	Status string `json:"status"`
}
