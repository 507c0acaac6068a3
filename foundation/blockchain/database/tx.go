package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// TimeFormat is the layout used for every timestamp recorded in the chain.
const TimeFormat = "2006-01-02 15:04:05.000000"

// TimeStamp returns the current UTC time in the chain's timestamp format.
func TimeStamp() string {
	return time.Now().UTC().Format(TimeFormat)
}

// =============================================================================

// Tx is the transactional information between two parties as it's recorded
// inside the pool and inside a block.
type Tx struct {
	Sender     Address `json:"sender"`      // Account sending the value.
	Receiver   Address `json:"receiver"`    // Account receiving the final value.
	Value      float64 `json:"value"`       // Amount taken from the sender.
	Fee        float64 `json:"mining_fee"`  // Fee charged for this transaction.
	FinalValue float64 `json:"final_value"` // Amount credited to the receiver.
	Signature  string  `json:"signature"`   // Proof the sender authorized this transaction.
	TimeStamp  string  `json:"timestamp"`   // Time the transaction was received.
	Hash       string  `json:"tx_hash"`     // Content hash of the fields above.
}

// NewTx constructs a new transaction, deriving the final value and the
// content hash. A transaction without a signature is signed by its sender,
// which is how the system marks the transactions it creates.
func NewTx(sender Address, receiver Address, value float64, fee float64, sig string, timeStamp string) Tx {
	if sig == "" {
		sig = string(sender)
	}

	tx := Tx{
		Sender:     Normalize(string(sender)),
		Receiver:   Normalize(string(receiver)),
		Value:      value,
		Fee:        fee,
		FinalValue: value - fee,
		Signature:  sig,
		TimeStamp:  timeStamp,
	}
	tx.Hash = tx.contentHash()

	return tx
}

// NewSystemTx constructs a fee free transaction created by the system such
// as genesis, a reward or a mining payment.
func NewSystemTx(sender Address, receiver Address, value float64) Tx {
	return NewTx(sender, receiver, value, 0, "", TimeStamp())
}

// contentHash returns the hash of every field except the hash itself.
func (tx Tx) contentHash() string {
	tx.Hash = ""
	return signature.Hash(tx)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Receiver, tx.Value)
}

// =============================================================================

// Transactions represents an insertion ordered set of transactions where the
// position is the sequence number. It marshals as a JSON object keyed by the
// sequence number with the keys in numeric order so the encoding is
// canonical and can be hashed.
type Transactions []Tx

// Clone returns a copy of the transactions.
func (txs Transactions) Clone() Transactions {
	if txs == nil {
		return Transactions{}
	}

	cpy := make(Transactions, len(txs))
	copy(cpy, txs)
	return cpy
}

// MarshalJSON implements the json.Marshaler interface.
func (txs Transactions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, tx := range txs {
		if i > 0 {
			buf.WriteByte(',')
		}

		data, err := json.Marshal(tx)
		if err != nil {
			return nil, err
		}

		buf.WriteString(strconv.Quote(strconv.Itoa(i)))
		buf.WriteByte(':')
		buf.Write(data)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. The keys must be
// the contiguous sequence numbers starting at zero.
func (txs *Transactions) UnmarshalJSON(data []byte) error {
	var m map[string]Tx
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	bySeq := make(map[int]Tx, len(m))
	seqs := make([]int, 0, len(m))
	for key, tx := range m {
		seq, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("transaction key %q is not a sequence number", key)
		}
		if _, exists := bySeq[seq]; exists {
			return fmt.Errorf("transaction sequence %d is duplicated", seq)
		}
		bySeq[seq] = tx
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	out := make(Transactions, len(seqs))
	for i, seq := range seqs {
		if seq != i {
			return fmt.Errorf("transaction sequence is not contiguous, got %d, exp %d", seq, i)
		}
		out[i] = bySeq[seq]
	}

	*txs = out
	return nil
}
