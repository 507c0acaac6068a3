package state

import (
	"context"
	"fmt"

	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Outcome represents the result of trying to admit a transaction.
type Outcome int

// Set of outcomes for an admission. The zero value is returned with an
// error so it never reads as an admission.
const (
	Rejected Outcome = iota
	Admitted
	InsufficientFunds
	SenderUnknown
)

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Admitted:
		return "admitted"
	case InsufficientFunds:
		return "insufficient funds"
	case SenderUnknown:
		return "sender missing"
	}

	return fmt.Sprintf("outcome(%d)", int(o))
}

// =============================================================================

// AddTransaction adds a transaction to the pool without any checks. It's
// used for transactions created by the system.
func (s *State) AddTransaction(sender database.Address, receiver database.Address, value float64, fee float64, sig string) database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addTransaction(sender, receiver, value, fee, sig)
}

func (s *State) addTransaction(sender database.Address, receiver database.Address, value float64, fee float64, sig string) database.Tx {
	tx := database.NewTx(sender, receiver, value, fee, sig, database.TimeStamp())
	seq := s.mempool.Add(tx)

	s.evHandler("state: addTransaction: seq[%d] tx[%s] fee[%v]", seq, tx, fee)

	return tx
}

// ValidateAndAdmit checks the sender can afford the value plus the active
// fee and admits the transaction. The pool is untouched unless the outcome
// is Admitted.
func (s *State) ValidateAndAdmit(sender database.Address, receiver database.Address, value float64, sig string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fee := s.meta.Fee

	if value <= 0 {
		return Rejected, fmt.Errorf("%w: %v", auth.ErrInvalidValue, value)
	}
	// Stricter than the balance rule alone: a transfer smaller than the fee
	// it pays is refused outright.
	if value < fee {
		return Rejected, fmt.Errorf("%w: value[%v] fee[%v]", ErrValueBelowFee, value, fee)
	}

	exists, balance := s.querier.Balance(database.Normalize(string(sender)), s.mempool.Copy())
	if !exists {
		s.evHandler("state: ValidateAndAdmit: sender[%s] missing", sender)
		return SenderUnknown, nil
	}

	if balance < value+fee {
		s.evHandler("state: ValidateAndAdmit: sender[%s] balance[%v] needs[%v]", sender, balance, value+fee)
		return InsufficientFunds, nil
	}

	s.addTransaction(sender, receiver, value, fee, sig)

	return Admitted, nil
}

// IssueChallenge binds a new one time token to the sender and returns it
// with the active fee.
func (s *State) IssueChallenge(ctx context.Context, sender string) (string, float64, error) {
	token, err := s.auth.IssueChallenge(ctx, sender)
	if err != nil {
		return "", 0, err
	}

	s.mu.Lock()
	fee := s.meta.Fee
	s.mu.Unlock()

	s.evHandler("state: IssueChallenge: sender[%s] fee[%v]", database.Normalize(sender), fee)

	return token, fee, nil
}

// AuthenticateAndAdmit verifies the signed request and then admits the
// transaction when the sender can afford it.
func (s *State) AuthenticateAndAdmit(ctx context.Context, req auth.Request) (Outcome, error) {
	v, err := s.auth.Authenticate(ctx, req)
	if err != nil {
		s.evHandler("state: AuthenticateAndAdmit: sender[%s] ERROR: %s", database.Normalize(req.Sender), err)
		return Rejected, err
	}

	return s.ValidateAndAdmit(v.Sender, v.Receiver, v.Value, req.Signature)
}
