package miner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// ErrInvalidProof is returned when a solution doesn't prove the work.
var ErrInvalidProof = errors.New("invalid proof of work")

// Number of attempts between cancellation checks and between progress
// events.
const (
	checkEvery  = 1 << 12
	reportEvery = 1 << 22
)

// LeadingZeros returns the number of leading hex 0's in the hash.
func LeadingZeros(hash string) int {
	return len(hash) - len(strings.TrimLeft(hash, "0"))
}

// powString returns the canonical string the nonce is appended to.
func powString(ch Challenge) (string, error) {
	pool, err := ch.Pool.MarshalJSON()
	if err != nil {
		return "", err
	}

	s := fmt.Sprintf("%d%s%s%d%s%s%s",
		ch.Index,
		pool,
		ch.PrevHash,
		ch.Difficulty,
		formatFloat(ch.Fee),
		formatFloat(ch.Reward),
		formatFloat(ch.RewardFraction),
	)

	return s, nil
}

// Search looks for the first nonce, starting at zero, whose digest has
// exactly the challenge difficulty of leading 0's. The pool in the
// challenge must already carry the reward transactions. The search stops
// when the context is cancelled.
func Search(ctx context.Context, ch Challenge, ev func(v string, args ...any)) (string, string, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	base, err := powString(ch)
	if err != nil {
		return "", "", err
	}

	ev("miner: search: started: index[%d] difficulty[%d]", ch.Index, ch.Difficulty)

	var nonce uint64
	for {
		if nonce%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				ev("miner: search: CANCELLED: attempts[%d]", nonce)
				return "", "", err
			}
		}
		if nonce > 0 && nonce%reportEvery == 0 {
			ev("miner: search: attempts[%d]", nonce)
		}

		hexNonce := strconv.FormatUint(nonce, 16)
		hash := signature.Digest([]byte(base + hexNonce))
		if LeadingZeros(hash) == ch.Difficulty {
			ev("miner: search: SOLVED: nonce[%s] hash[%s]", hexNonce, hash)
			return hash, hexNonce, nil
		}

		nonce++
	}
}

// Check verifies the solution was produced for the challenge. The digest
// must be reproducible from the augmented pool and the nonce, and must have
// at least the challenge difficulty of leading 0's.
func Check(ch Challenge, sol Solution) error {
	ch.Pool = sol.Transactions

	base, err := powString(ch)
	if err != nil {
		return err
	}

	if _, err := strconv.ParseUint(sol.Nonce, 16, 64); err != nil {
		return fmt.Errorf("%w: nonce %q is not hex", ErrInvalidProof, sol.Nonce)
	}

	if hash := signature.Digest([]byte(base + sol.Nonce)); hash != sol.Hash {
		return fmt.Errorf("%w: hash doesn't match, got %s, exp %s", ErrInvalidProof, sol.Hash, hash)
	}

	if LeadingZeros(sol.Hash) < ch.Difficulty {
		return fmt.Errorf("%w: hash %s has fewer than %d leading zeros", ErrInvalidProof, sol.Hash, ch.Difficulty)
	}

	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
