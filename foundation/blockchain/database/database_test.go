package database_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/disk"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/memory"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	alice = database.Address("0xf01813e4b85e178a83e29b8e7bf26bd830a25f32")
	bob   = database.Address("0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4")
)

func sampleTxs() database.Transactions {
	return database.Transactions{
		database.NewTx(alice, bob, 10, 1, "0xsig1", "2026-01-01 00:00:00.000000"),
		database.NewTx(bob, alice, 4, 1, "0xsig2", "2026-01-01 00:00:01.000000"),
	}
}

func sampleChain(n int) []database.Block {
	var blocks []database.Block
	prevHash := signature.ZeroHash

	for i := 0; i < n; i++ {
		block := database.NewBlock(uint64(i), "00ab", prevHash, "1f", 2, sampleTxs())
		blocks = append(blocks, block)
		prevHash = block.Hash()
	}

	return blocks
}

// =============================================================================

func Test_BlockHash(t *testing.T) {
	t.Log("Given the need to hash a block deterministically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling the same block twice.", testID)
		{
			block := database.NewBlock(3, "00ab", "prev", "1f", 2, sampleTxs())

			if block.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash for the same block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same hash for the same block.", success, testID)

			data, err := json.Marshal(database.NewBlockData(block, database.Metaparams{}))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to marshal the block: %s", failed, testID, err)
			}

			var blockData database.BlockData
			if err := json.Unmarshal(data, &blockData); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal the block: %s", failed, testID, err)
			}

			if got := database.ToBlock(blockData).Hash(); got != block.Hash() {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, block.Hash())
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash after a storage round trip.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same hash after a storage round trip.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen changing a single field of the block.", testID)
		{
			block := database.NewBlock(3, "00ab", "prev", "1f", 2, sampleTxs())
			hash := block.Hash()

			changes := map[string]func(b *database.Block){
				"index":      func(b *database.Block) { b.Index++ },
				"sealed":     func(b *database.Block) { b.SealedHash = "00ac" },
				"prev":       func(b *database.Block) { b.PrevHash = "other" },
				"difficulty": func(b *database.Block) { b.Difficulty++ },
				"timestamp":  func(b *database.Block) { b.TimeStamp = "2000-01-01 00:00:00.000000" },
				"tx value":   func(b *database.Block) { b.Transactions[0].Value = 11 },
			}

			for name, change := range changes {
				cpy := block
				cpy.Transactions = block.Transactions.Clone()
				change(&cpy)

				if cpy.Hash() == hash {
					t.Fatalf("\t%s\tTest %d:\tShould get a different hash when changing %s.", failed, testID, name)
				}
				t.Logf("\t%s\tTest %d:\tShould get a different hash when changing %s.", success, testID, name)
			}
		}
	}
}

func Test_Transactions(t *testing.T) {
	t.Log("Given the need to encode transactions keyed by sequence number.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen marshaling more than ten transactions.", testID)
		{
			var txs database.Transactions
			for i := 0; i < 12; i++ {
				txs = append(txs, database.NewTx(alice, bob, float64(i+1), 1, "", "2026-01-01 00:00:00.000000"))
			}

			data, err := json.Marshal(txs)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to marshal: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to marshal.", success, testID)

			var got database.Transactions
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal: %s", failed, testID, err)
			}

			for i := range txs {
				if got[i].Hash != txs[i].Hash {
					t.Fatalf("\t%s\tTest %d:\tShould keep sequence %d in place.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould keep the numeric order of the keys.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the keys are not contiguous.", testID)
		{
			tx, _ := json.Marshal(sampleTxs()[0])
			bad := []string{
				`{"0":` + string(tx) + `,"2":` + string(tx) + `}`,
				`{"1":` + string(tx) + `}`,
				`{"a":` + string(tx) + `}`,
				`{"0":` + string(tx) + `,"00":` + string(tx) + `}`,
			}

			for _, doc := range bad {
				var txs database.Transactions
				if err := json.Unmarshal([]byte(doc), &txs); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould reject %s.", failed, testID, doc)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould reject the malformed sequences.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen constructing a transaction.", testID)
		{
			tx := database.NewTx("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", bob, 10, 1.5, "", "2026-01-01 00:00:00.000000")

			if tx.FinalValue != 8.5 {
				t.Fatalf("\t%s\tTest %d:\tShould get a final value of 8.5, got %v.", failed, testID, tx.FinalValue)
			}
			t.Logf("\t%s\tTest %d:\tShould get the value minus the fee.", success, testID)

			if tx.Sender != alice || tx.Signature != "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32" {
				t.Fatalf("\t%s\tTest %d:\tShould normalize the sender and default the signature.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould normalize the sender and default the signature.", success, testID)
		}
	}
}

func Test_Metaparams(t *testing.T) {
	type table struct {
		name   string
		sealed int
		fee    float64
	}

	tt := []table{
		{name: "empty", sealed: 0, fee: 1},
		{name: "threshold", sealed: 10, fee: 1},
		{name: "above", sealed: 11, fee: math.Exp(0.1)},
		{name: "congested", sealed: 30, fee: math.Exp(2)},
	}

	t.Log("Given the need to compute the fee and reward.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen %d transactions were sealed.", testID, tst.sealed)
			{
				f := func(t *testing.T) {
					fee := database.ComputeFee(tst.sealed)
					if math.Abs(fee-tst.fee) > 1e-12 {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, fee)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.fee)
						t.Fatalf("\t%s\tTest %d:\tShould get the right fee.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right fee.", success, testID)

					if reward := database.ComputeReward(fee); math.Abs(reward-1.5*tst.fee) > 1e-12 {
						t.Fatalf("\t%s\tTest %d:\tShould get a reward of 1.5 times the fee, got %v.", failed, testID, reward)
					}
					t.Logf("\t%s\tTest %d:\tShould get a reward of 1.5 times the fee.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_VerifyChain(t *testing.T) {
	t.Log("Given the need to verify the chain linkage.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the chain is intact.", testID)
		{
			if err := database.VerifyChain(sampleChain(4)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould verify the chain: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the chain is broken.", testID)
		{
			breaks := map[string]func(blocks []database.Block){
				"tampered tx":   func(blocks []database.Block) { blocks[1].Transactions[0].Value = 1000 },
				"bad prev hash": func(blocks []database.Block) { blocks[2].PrevHash = "abc" },
				"bad genesis":   func(blocks []database.Block) { blocks[0].PrevHash = "abc" },
				"gap":           func(blocks []database.Block) { blocks[3].Index = 7 },
			}

			for name, brk := range breaks {
				blocks := sampleChain(4)
				brk(blocks)

				if err := database.VerifyChain(blocks); !errors.Is(err, database.ErrIntegrity) {
					t.Fatalf("\t%s\tTest %d:\tShould detect %s: %v", failed, testID, name, err)
				}
				t.Logf("\t%s\tTest %d:\tShould detect %s.", success, testID, name)
			}
		}
	}
}

func Test_Address(t *testing.T) {
	type table struct {
		name  string
		input string
		valid bool
	}

	tt := []table{
		{name: "mixed case", input: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", valid: true},
		{name: "no prefix", input: "F01813E4B85e178A83e29B8E7bF26BD830a25f32", valid: false},
		{name: "short", input: "0xF01813E4B85e", valid: false},
		{name: "not hex", input: "0xZZ1813E4B85e178A83e29B8E7bF26BD830a25f32", valid: false},
		{name: "system", input: string(database.RewardAccount), valid: false},
	}

	t.Log("Given the need to validate addresses.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %q.", testID, tst.input)
			{
				f := func(t *testing.T) {
					addr, err := database.ToAddress(tst.input)
					if tst.valid {
						if err != nil || addr != alice {
							t.Fatalf("\t%s\tTest %d:\tShould get back a normalized address: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould get back a normalized address.", success, testID)
						return
					}

					if !errors.Is(err, database.ErrMalformedAddress) {
						t.Fatalf("\t%s\tTest %d:\tShould reject the address.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the address.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Storage(t *testing.T) {
	dsk, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("unable to create disk storage: %s", err)
	}

	storages := map[string]database.Storage{
		"disk":   dsk,
		"memory": memory.New(),
	}

	t.Log("Given the need to write and read back blocks.")
	{
		testID := 0
		for name, strg := range storages {
			t.Logf("\tTest %d:\tWhen using %s storage.", testID, name)
			{
				chain := sampleChain(3)
				for _, block := range chain {
					if err := strg.Write(database.NewBlockData(block, database.Metaparams{Fee: 1, Reward: 1.5, RewardFraction: 0.1})); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to write block %d: %s", failed, testID, block.Index, err)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould be able to write the blocks.", success, testID)

				blocks, err := database.ReadAll(strg)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read the blocks: %s", failed, testID, err)
				}

				if len(blocks) != len(chain) {
					t.Fatalf("\t%s\tTest %d:\tShould read back %d blocks, got %d.", failed, testID, len(chain), len(blocks))
				}

				if err := database.VerifyChain(blocks); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould read back a verified chain: %s", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould read back a verified chain.", success, testID)

				if err := strg.Reset(); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to reset: %s", failed, testID, err)
				}

				blocks, err = database.ReadAll(strg)
				if err != nil || len(blocks) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould be empty after reset.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould be empty after reset.", success, testID)
			}
			testID++
		}
	}
}
