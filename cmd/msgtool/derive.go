package main

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/code-payments/message-compiler/pkg/solana"
)

var (
	deriveFlags struct {
		program string
		seeds   []string
	}
)

var (
	deriveCmd = &cobra.Command{
		Use:   "derive",
		Short: "Derive a program address and bump from utf-8 seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := solana.PublicKeyFromBase58(deriveFlags.program)
			if err != nil {
				return err
			}

			seeds := make([][]byte, len(deriveFlags.seeds))
			for i, seed := range deriveFlags.seeds {
				seeds[i] = []byte(seed)
			}

			address, bump, err := solana.FindProgramAddress(program, seeds...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", base58.Encode(address), bump)
			return nil
		},
	}
)

func init() {
	deriveCmd.Flags().StringVar(&deriveFlags.program, "program", "", "base58 program id")
	deriveCmd.Flags().StringSliceVar(&deriveFlags.seeds, "seed", nil, "utf-8 seed, repeatable")
	_ = deriveCmd.MarkFlagRequired("program")
	rootCmd.AddCommand(deriveCmd)
}
