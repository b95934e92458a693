package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-payments/message-compiler/pkg/solana"
	compute_budget "github.com/code-payments/message-compiler/pkg/solana/computebudget"
	"github.com/code-payments/message-compiler/pkg/solana/memo"
)

var (
	compileFlags struct {
		input    string
		numKnown int
		memo     string

		computeUnitLimit uint32
		computeUnitPrice uint64
	}
)

var (
	compileCmd = &cobra.Command{
		Use:   "compile",
		Short: "Compile a JSON message and print its base64 encoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(compileFlags.input)
			if err != nil {
				return err
			}

			payer, bh, instructions, err := parseMessageInput(raw)
			if err != nil {
				return err
			}

			var budget []solana.Instruction
			if compileFlags.computeUnitLimit > 0 {
				budget = append(budget, compute_budget.SetComputeUnitLimit(compileFlags.computeUnitLimit))
			}
			if compileFlags.computeUnitPrice > 0 {
				budget = append(budget, compute_budget.SetComputeUnitPrice(compileFlags.computeUnitPrice))
			}
			instructions = append(budget, instructions...)

			if len(compileFlags.memo) > 0 {
				instructions = append(instructions, memo.Instruction(compileFlags.memo))
			}

			c, err := newCompiler()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			m, err := c.Compile(ctx, payer, bh, instructions...)
			if err != nil {
				return err
			}

			if compileFlags.numKnown < 0 {
				encoded, err := c.Serialize(ctx, m)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(encoded))
				return nil
			}

			partial, err := c.SerializePartial(ctx, m, compileFlags.numKnown)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(toPartialOutput(m, partial), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
)

func init() {
	compileCmd.Flags().StringVar(&compileFlags.input, "input", "-", "message json file, or - for stdin")
	compileCmd.Flags().IntVar(&compileFlags.numKnown, "known", -1, "emit a partial encoding for a signer knowing this many accounts")
	compileCmd.Flags().Uint32Var(&compileFlags.computeUnitLimit, "compute-unit-limit", 0, "prepend a compute unit limit instruction")
	compileCmd.Flags().Uint64Var(&compileFlags.computeUnitPrice, "compute-unit-price", 0, "prepend a compute unit price instruction, in micro-lamports")
	compileCmd.Flags().StringVar(&compileFlags.memo, "memo", "", "append a memo instruction")
	rootCmd.AddCommand(compileCmd)
}
