package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.GenerateKey()
		if err != nil {
			log.Fatal(err)
		}
		if err := crypto.SaveECDSA(getPrivateKeyPath(), privateKey); err != nil {
			log.Fatal(err)
		}
		fmt.Println(database.Normalize(crypto.PubkeyToAddress(privateKey.PublicKey).Hex()))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
