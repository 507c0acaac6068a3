package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/ledgerworks/blockchain/app/services/node/handlers/v1/public"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	to    string
	value float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, addr := loadKey()

		// Ask the node for a one time token bound to this account.
		var ch public.Challenge
		if err := post(nodeURL+"/v1/tx/challenge", public.ChallengeRequest{Sender: string(addr)}, &ch); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("fee for this transaction: %v\n", ch.Fee)

		// The value is signed as text, so the same text must be submitted.
		val := strconv.FormatFloat(value, 'f', -1, 64)

		sig, err := signature.SignText(auth.Message(string(addr), to, val, ch.Nonce), privateKey)
		if err != nil {
			log.Fatal(err)
		}

		req := auth.Request{
			Sender:    string(addr),
			Receiver:  to,
			Value:     val,
			Token:     ch.Nonce,
			Signature: sig,
		}

		var resp public.SubmitResponse
		if err := post(nodeURL+"/v1/tx/submit", req, &resp); err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp.Status)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Float64VarP(&value, "value", "v", 0, "Value to send.")
}
