package private

import "github.com/ledgerworks/blockchain/foundation/blockchain/database"

// GenesisRequest names the account to mint the initial balance to.
type GenesisRequest struct {
	Address string  `json:"address" validate:"required"`
	Amount  float64 `json:"amount" validate:"gte=0"`
}

// SealRequest carries a proof of work for the current pool.
type SealRequest struct {
	Hash  string `json:"hash_string" validate:"required"`
	Nonce string `json:"nonce" validate:"required"`
}

// LoadResponse reports the chain length after a load.
type LoadResponse struct {
	Length int `json:"length"`
}

// BlockResponse is the view of a freshly sealed block.
type BlockResponse struct {
	Index        uint64                `json:"block_index"`
	Hash         string                `json:"hash"`
	PrevHash     string                `json:"previous_block_hash"`
	SealedHash   string                `json:"mined_block_hash"`
	Nonce        string                `json:"nonce"`
	Transactions database.Transactions `json:"transactions"`
}

func toBlockResponse(b database.Block) BlockResponse {
	return BlockResponse{
		Index:        b.Index,
		Hash:         b.Hash(),
		PrevHash:     b.PrevHash,
		SealedHash:   b.SealedHash,
		Nonce:        b.Nonce,
		Transactions: b.Transactions,
	}
}
