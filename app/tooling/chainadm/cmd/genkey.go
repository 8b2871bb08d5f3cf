package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate a new key pair in the key path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getPrivateKeyPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("key file %s already exists", path)
		}

		if err := os.MkdirAll(keyPath, 0o755); err != nil {
			return err
		}

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			return err
		}

		if err := crypto.SaveECDSA(path, privateKey); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, database.PublicKeyToAccountID(privateKey.PublicKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genkeyCmd)
}
