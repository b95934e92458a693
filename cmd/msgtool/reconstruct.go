package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/message-compiler/pkg/solana"
)

var (
	reconstructFlags struct {
		input  string
		elided []string
	}
)

var (
	reconstructCmd = &cobra.Command{
		Use:   "reconstruct",
		Short: "Rebuild the full encoding of a partial message",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(reconstructFlags.input)
			if err != nil {
				return err
			}

			partial, header, err := fromPartialOutput(raw)
			if err != nil {
				return err
			}

			elided := make([]ed25519.PublicKey, len(reconstructFlags.elided))
			for i, s := range reconstructFlags.elided {
				elided[i], err = solana.PublicKeyFromBase58(s)
				if err != nil {
					return errors.Wrapf(err, "elided[%d]", i)
				}
			}

			c, err := newCompiler()
			if err != nil {
				return err
			}

			encoded, err := c.Reconstruct(cmd.Context(), partial, header, elided)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(encoded))
			return nil
		},
	}
)

func init() {
	reconstructCmd.Flags().StringVar(&reconstructFlags.input, "input", "-", "partial message json from compile --known, or - for stdin")
	reconstructCmd.Flags().StringSliceVar(&reconstructFlags.elided, "elided", nil, "base58 keys of the elided accounts, in order")
	rootCmd.AddCommand(reconstructCmd)
}
