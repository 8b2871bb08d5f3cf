package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Print the head tip and the side branch tips.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, publicURL+"/v1/chain/head", nil)
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "Print the side branch tips, highest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, publicURL+"/v1/chain/branches", nil)
	},
}

var (
	blockNumber int64
	blockHash   string
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Print a block by number on the head branch or by hash.",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case blockHash != "":
			return call(cmd.OutOrStdout(), http.MethodGet, publicURL+"/v1/blocks/hash/"+blockHash, nil)
		case blockNumber >= 0:
			return call(cmd.OutOrStdout(), http.MethodGet, fmt.Sprintf("%s/v1/blocks/number/%d", publicURL, blockNumber), nil)
		}
		return errors.New("one of --number or --hash is required")
	},
}

var accountCmd = &cobra.Command{
	Use:   "account [id]",
	Short: "Print the head state of one or all accounts.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := publicURL + "/v1/accounts/list"
		if len(args) == 1 {
			url += "/" + args[0]
		}
		return call(cmd.OutOrStdout(), http.MethodGet, url, nil)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a block template built on the head from the mempool.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, privateURL+"/v1/node/block/template", nil)
	},
}

func init() {
	blockCmd.Flags().Int64VarP(&blockNumber, "number", "n", -1, "Number of the block on the head branch.")
	blockCmd.Flags().StringVar(&blockHash, "hash", "", "Hash of the block.")
	blockCmd.MarkFlagsMutuallyExclusive("number", "hash")

	rootCmd.AddCommand(headCmd, branchesCmd, blockCmd, accountCmd, templateCmd)
}
