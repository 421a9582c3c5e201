package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/httpserver"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <key>",
	Short: "Print the bcrypt hash for SIMULATE_KEY_HASH",
	Long: `Hash a key for the POST /simulate endpoint. Put the output in
SIMULATE_KEY_HASH and send the plain key in the X-Simulate-Key header.

Example:
  SIMULATE_KEY_HASH=$(mastermind hash-key s3cret) mastermind serve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := httpserver.HashKey(args[0])
		if err != nil {
			return fmt.Errorf("hash key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}
