package cmd

import (
	"crypto/ecdsa"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print address for the specific wallet",
	Run: func(cmd *cobra.Command, args []string) {
		_, addr := loadKey()
		fmt.Println(addr)
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

// loadKey reads the configured private key and derives its address.
func loadKey() (*ecdsa.PrivateKey, database.Address) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}
	return privateKey, database.Normalize(crypto.PubkeyToAddress(privateKey.PublicKey).Hex())
}
