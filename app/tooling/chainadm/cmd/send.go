package cmd

import (
	"net/http"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	chainID uint16
	nonce   uint64
	to      string
	value   uint64
	tip     uint64
	data    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction with the key and submit it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			return err
		}

		toID, err := database.ToAccountID(to)
		if err != nil {
			return err
		}

		tx, err := database.NewTx(chainID, nonce, toID, value, tip, []byte(data))
		if err != nil {
			return err
		}

		signedTx, err := tx.Sign(privateKey)
		if err != nil {
			return err
		}

		return call(cmd.OutOrStdout(), http.MethodPost, publicURL+"/v1/tx/submit", signedTx)
	},
}

func init() {
	sendCmd.Flags().Uint16Var(&chainID, "chain", 1, "Chain id from the genesis file.")
	sendCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the transaction.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send to.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().Uint64VarP(&tip, "tip", "c", 0, "Tip to send.")
	sendCmd.Flags().StringVarP(&data, "data", "d", "", "Data to send.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("nonce")

	rootCmd.AddCommand(sendCmd)
}
