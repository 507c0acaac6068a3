package commands

import (
	"fmt"
	"sort"

	"github.com/ledgerworks/blockchain/foundation/blockchain/accounts"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
)

// Balances prints the balance of every account found in the stored chain,
// or only the account named on the command line.
func Balances(args []string, strg database.Storage, ns *nameservice.NameService) error {
	blocks, err := database.ReadAll(strg)
	if err != nil {
		return err
	}

	if err := database.VerifyChain(blocks); err != nil {
		return err
	}

	idx := accounts.NewIndex()
	seen := make(map[database.Address]bool)
	for _, block := range blocks {
		idx.ApplyBlock(block)
		for _, tx := range block.Transactions {
			seen[tx.Sender] = true
			seen[tx.Receiver] = true
		}
	}

	var addrs []database.Address
	if len(args) == 3 {
		addr, err := ns.Resolve(args[2])
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	} else {
		for addr := range seen {
			addrs = append(addrs, addr)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	}

	if len(blocks) > 0 {
		fmt.Printf("LatestBlockHash: %s\n\n", blocks[len(blocks)-1].Hash())
	}

	for _, addr := range addrs {
		exists, bal := idx.Balance(addr, nil)
		if !exists {
			fmt.Printf("Account: %s  Name: %s  not found\n", addr, ns.Lookup(addr))
			continue
		}
		fmt.Printf("Account: %s  Name: %s  Balance: %v\n", addr, ns.Lookup(addr), bal)
	}

	return nil
}
