// Package miner implements the proof of work search and the reward
// distribution applied to a pool before it's sealed.
package miner

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// EventHandler defines a function that is called when events
// occur in the processing of mining.
type EventHandler func(v string, args ...any)

// Rand represents the source of randomness for the reward distribution.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Config represents the configuration required to construct a miner.
type Config struct {
	Address   database.Address
	Rand      Rand
	EvHandler EventHandler
}

// Miner performs the work to seal a challenge.
type Miner struct {
	address   database.Address
	rand      Rand
	evHandler EventHandler
}

// New constructs a miner. The system random source is used when the
// configuration doesn't provide one.
func New(cfg Config) *Miner {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = SystemRand{}
	}

	return &Miner{
		address:   database.Normalize(string(cfg.Address)),
		rand:      rnd,
		evHandler: ev,
	}
}

// Address returns the address the mining payment is paid to.
func (m *Miner) Address() database.Address {
	return m.address
}

// Mine distributes the rewards over the pool and then searches for the
// nonce that seals it.
func (m *Miner) Mine(ctx context.Context, ch Challenge) (Solution, error) {
	m.evHandler("miner: Mine: started: index[%d] pool[%d]", ch.Index, len(ch.Pool))
	defer m.evHandler("miner: Mine: completed")

	ch.Pool = m.Distribute(ch)

	hash, nonce, err := Search(ctx, ch, m.evHandler)
	if err != nil {
		return Solution{}, err
	}

	sol := Solution{
		Hash:         hash,
		Nonce:        nonce,
		Transactions: ch.Pool,
	}

	return sol, nil
}

// Distribute returns a copy of the challenge pool with the reward
// transactions and the mining payment appended.
//
// With k = fraction * N below 1 a single sender is rewarded with a
// probability of fraction. Otherwise floor(k)+1 distinct senders are
// rewarded. The miner is always paid N * fee.
func (m *Miner) Distribute(ch Challenge) database.Transactions {
	pool := ch.Pool.Clone()
	n := len(pool)
	k := ch.RewardFraction * float64(n)

	var rewarded []int
	switch {
	case n == 0:

	case k < 1:
		if m.rand.Float64() < ch.RewardFraction {
			rewarded = append(rewarded, m.rand.Intn(n))
		}

	default:
		want := min(int(k)+1, n)
		picked := make(map[int]bool, want)
		for len(rewarded) < want {
			i := m.rand.Intn(n)
			if picked[i] {
				continue
			}
			picked[i] = true
			rewarded = append(rewarded, i)
		}
	}

	for _, i := range rewarded {
		m.evHandler("miner: Distribute: reward: tx[%d] sender[%s] reward[%v]", i, pool[i].Sender, ch.Reward)
		pool = append(pool, database.NewSystemTx(database.RewardAccount, pool[i].Sender, ch.Reward))
	}

	payment := float64(n) * ch.Fee
	m.evHandler("miner: Distribute: mining payment: miner[%s] amount[%v]", m.address, payment)
	pool = append(pool, database.NewSystemTx(database.MiningPaymentAccount, m.address, payment))

	return pool
}

// =============================================================================

// SystemRand draws from the operating system's random source.
type SystemRand struct{}

// Float64 returns a number in [0, 1).
func (SystemRand) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}

	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Intn returns a number in [0, n).
func (SystemRand) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(v.Int64())
}
