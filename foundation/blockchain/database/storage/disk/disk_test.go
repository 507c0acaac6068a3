package disk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/disk"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func writeBlocks(t *testing.T, strg *disk.Disk, n int) {
	meta := database.Metaparams{Difficulty: 1, Fee: 1, Reward: 1.5, RewardFraction: 0.1}

	prev := signature.ZeroHash
	for i := 0; i < n; i++ {
		b := database.NewBlock(uint64(i), signature.ZeroHash, prev, "0", 1, database.Transactions{
			database.NewSystemTx(database.GenesisAccount, "0xf01813e4b85e178a83e29b8e7bf26bd830a25f32", 10),
		})
		if err := strg.Write(database.NewBlockData(b, meta)); err != nil {
			t.Fatalf("Should be able to write block %d: %s", i, err)
		}
		prev = b.Hash()
	}
}

func TestReadAll(t *testing.T) {
	t.Log("Given the need to read every block file back from disk.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen every block file is present.", testID)
		{
			strg, err := disk.New(t.TempDir())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %s", failed, testID, err)
			}
			writeBlocks(t, strg, 3)

			blocks, err := database.ReadAll(strg)
			if err != nil || len(blocks) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould read 3 blocks, got %d: %v", failed, testID, len(blocks), err)
			}
			t.Logf("\t%s\tTest %d:\tShould read 3 blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a block file in the middle is missing.", testID)
		{
			dir := t.TempDir()
			strg, _ := disk.New(dir)
			writeBlocks(t, strg, 4)

			if err := os.Remove(filepath.Join(dir, "1.json")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to remove the file: %s", failed, testID, err)
			}

			if _, err := database.ReadAll(strg); !errors.Is(err, database.ErrIntegrity) {
				t.Fatalf("\t%s\tTest %d:\tShould report the gap: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report the gap.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the directory is empty.", testID)
		{
			strg, _ := disk.New(t.TempDir())

			blocks, err := database.ReadAll(strg)
			if err != nil || len(blocks) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould read an empty chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould read an empty chain.", success, testID)
		}
	}
}
