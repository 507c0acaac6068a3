package miner_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const minerAddr = database.Address("0xbee6ace826ec3de1b6349888b9151b92522f7f76")

// fixedRand replays the configured values.
type fixedRand struct {
	floats []float64
	ints   []int
}

func (r *fixedRand) Float64() float64 {
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *fixedRand) Intn(n int) int {
	i := r.ints[0] % n
	r.ints = r.ints[1:]
	return i
}

func pool(n int) database.Transactions {
	var txs database.Transactions
	for i := 0; i < n; i++ {
		sender := database.Address("0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eb" + string(rune('a'+i%6)) + "0")
		txs = append(txs, database.NewTx(sender, minerAddr, 10, 1, "", database.TimeStamp()))
	}
	return txs
}

func TestDistribute(t *testing.T) {
	type table struct {
		name     string
		n        int
		fraction float64
		rand     *fixedRand
		rewarded []int
	}

	tt := []table{
		{name: "fraction below one fires", n: 1, fraction: 0.1, rand: &fixedRand{floats: []float64{0.05}, ints: []int{0}}, rewarded: []int{0}},
		{name: "fraction below one misses", n: 5, fraction: 0.1, rand: &fixedRand{floats: []float64{0.5}}},
		{name: "fraction of exactly one", n: 10, fraction: 0.1, rand: &fixedRand{ints: []int{3, 3, 7}}, rewarded: []int{3, 7}},
		{name: "fraction above one", n: 25, fraction: 0.1, rand: &fixedRand{ints: []int{1, 2, 1, 2, 9}}, rewarded: []int{1, 2, 9}},
		{name: "every transaction", n: 3, fraction: 1, rand: &fixedRand{ints: []int{0, 1, 2}}, rewarded: []int{0, 1, 2}},
		{name: "empty pool", n: 0, fraction: 0.1, rand: &fixedRand{}},
	}

	t.Log("Given the need to distribute rewards over a pool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %d transactions with fraction %v.", testID, tst.n, tst.fraction)
			{
				f := func(t *testing.T) {
					m := miner.New(miner.Config{Address: minerAddr, Rand: tst.rand})

					ch := miner.Challenge{
						Fee:            2,
						Reward:         3,
						RewardFraction: tst.fraction,
						Pool:           pool(tst.n),
					}

					got := m.Distribute(ch)

					if exp := tst.n + len(tst.rewarded) + 1; len(got) != exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions, got %d.", failed, testID, exp, len(got))
					}
					t.Logf("\t%s\tTest %d:\tShould get the rewards and the mining payment added.", success, testID)

					for i, idx := range tst.rewarded {
						tx := got[tst.n+i]
						if tx.Sender != database.RewardAccount || tx.Receiver != ch.Pool[idx].Sender || tx.Value != 3 || tx.Fee != 0 {
							t.Fatalf("\t%s\tTest %d:\tShould reward the sender of transaction %d, got %+v.", failed, testID, idx, tx)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould reward the chosen senders.", success, testID)

					payment := got[len(got)-1]
					if payment.Sender != database.MiningPaymentAccount || payment.Receiver != minerAddr || payment.Value != float64(tst.n)*2 {
						t.Fatalf("\t%s\tTest %d:\tShould pay the miner N times the fee, got %+v.", failed, testID, payment)
					}
					t.Logf("\t%s\tTest %d:\tShould pay the miner N times the fee.", success, testID)

					if len(ch.Pool) != tst.n {
						t.Fatalf("\t%s\tTest %d:\tShould leave the challenge pool untouched.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the challenge pool untouched.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestMine(t *testing.T) {
	t.Log("Given the need to mine a challenge.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the difficulty is 2.", testID)
		{
			m := miner.New(miner.Config{Address: minerAddr, Rand: &fixedRand{floats: []float64{0.9}}})

			ch := miner.Challenge{Index: 1, PrevHash: "abc", Difficulty: 2, Fee: 1, Reward: 1.5, RewardFraction: 0.1, Pool: pool(1)}
			sol, err := m.Mine(context.Background(), ch)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine.", success, testID)

			if miner.LeadingZeros(sol.Hash) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get exactly 2 leading zeros, got %s.", failed, testID, sol.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould get exactly 2 leading zeros.", success, testID)

			if len(sol.Nonce) > 2 && sol.Nonce[:2] == "0x" {
				t.Fatalf("\t%s\tTest %d:\tShould get the nonce without a prefix, got %s.", failed, testID, sol.Nonce)
			}

			if err := miner.Check(ch, sol); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould pass the check: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould pass the check.", success, testID)

			sol.Transactions[0].Value = 1000
			if err := miner.Check(ch, sol); !errors.Is(err, miner.ErrInvalidProof) {
				t.Fatalf("\t%s\tTest %d:\tShould fail the check with a changed pool: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail the check with a changed pool.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the search is cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			ch := miner.Challenge{Difficulty: 64}
			if _, _, err := miner.Search(ctx, ch, nil); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop the search: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop the search.", success, testID)
		}
	}
}

func TestClient(t *testing.T) {
	m := miner.New(miner.Config{Address: minerAddr, Rand: &fixedRand{floats: []float64{0.9}}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mine" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		var ch miner.Challenge
		if err := json.NewDecoder(r.Body).Decode(&ch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sol, err := m.Mine(r.Context(), ch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(sol)
	}))
	defer srv.Close()

	t.Log("Given the need to mine through a remote miner.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen posting a challenge.", testID)
		{
			ch := miner.Challenge{Index: 4, PrevHash: "abc", Difficulty: 1, Fee: 1, Reward: 1.5, RewardFraction: 0.1, Pool: pool(2)}

			sol, err := miner.NewClient(srv.URL, 10*time.Second).Mine(context.Background(), ch)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould get a solution: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a solution.", success, testID)

			if err := miner.Check(ch, sol); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould get a valid solution: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a valid solution.", success, testID)
		}
	}
}
