// Package commands contains the admin tool commands.
package commands

import (
	"fmt"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Verify reads every block from storage and checks the chain linkage.
func Verify(strg database.Storage) error {
	blocks, err := database.ReadAll(strg)
	if err != nil {
		return err
	}

	if err := database.VerifyChain(blocks); err != nil {
		return err
	}

	fmt.Printf("Blocks: %d  Linkage: ok\n", len(blocks))
	if len(blocks) > 0 {
		fmt.Printf("LatestBlockHash: %s\n", blocks[len(blocks)-1].Hash())
	}

	return nil
}
