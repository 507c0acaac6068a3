package cmd

import (
	"fmt"
	"log"

	"github.com/ledgerworks/blockchain/app/services/node/handlers/v1/public"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print every transaction for your account.",
	Run: func(cmd *cobra.Command, args []string) {
		_, addr := loadKey()
		fmt.Println("For Account:", addr)

		var hst public.History
		if err := get(fmt.Sprintf("%s/v1/transactions/%s", nodeURL, addr), &hst); err != nil {
			log.Fatal(err)
		}

		for _, rec := range hst.Records {
			state := "sealed"
			if rec.InPool {
				state = "pool"
			}
			fmt.Printf("%-7s %-6s %s -> %s value[%v] fee[%v] final[%v]\n", rec.Type, state, rec.Sender, rec.Receiver, rec.Value, rec.Fee, rec.FinalValue)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
