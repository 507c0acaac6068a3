package cmd

import (
	"fmt"
	"log"

	"github.com/ledgerworks/blockchain/app/services/node/handlers/v1/public"
	"github.com/spf13/cobra"
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run: func(cmd *cobra.Command, args []string) {
		_, addr := loadKey()
		fmt.Println("For Account:", addr)

		var bal public.Balance
		if err := get(fmt.Sprintf("%s/v1/balance/%s", nodeURL, addr), &bal); err != nil {
			log.Fatal(err)
		}

		if !bal.Exists {
			fmt.Println("account has no transactions")
			return
		}
		fmt.Println(bal.Balance)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
