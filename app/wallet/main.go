// This program is a command line wallet for the ledger node.
package main

import "github.com/ledgerworks/blockchain/app/wallet/cmd"

func main() {
	cmd.Execute()
}
