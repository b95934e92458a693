package main

import (
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/message-compiler/pkg/solana"
)

var (
	decodeFlags struct {
		transaction bool
	}
)

var (
	decodeCmd = &cobra.Command{
		Use:   "decode <base64>",
		Short: "Decode and print a base64 message or transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				return errors.Wrap(err, "invalid base64")
			}

			if decodeFlags.transaction {
				var txn solana.Transaction
				if err := txn.Unmarshal(raw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), txn.String())
				return nil
			}

			c, err := newCompiler()
			if err != nil {
				return err
			}

			m, err := c.Deserialize(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.String())
			return nil
		},
	}
)

func init() {
	decodeCmd.Flags().BoolVar(&decodeFlags.transaction, "transaction", false, "input is a signed transaction rather than a message")
	rootCmd.AddCommand(decodeCmd)
}
