package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
)

func newDecodeCmd(a *app) *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "decode <data>",
		Short: "Decode router instruction data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeBytes(args[0], encoding)
			if err != nil {
				return fmt.Errorf("decode %s input: %w", encoding, err)
			}

			decode := instruction.Decode
			if a.cfg.StrictTrailingBytes {
				decode = instruction.DecodeStrict
			}
			ix, err := decode(data)
			if err != nil {
				a.named("decode").Debug("Decode failed", zap.Int("bytes", len(data)), zap.Error(err))
				return err
			}
			return printInstruction(cmd.OutOrStdout(), ix)
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", defaultEncoding, "input encoding: base58, base64 or hex")
	return cmd
}

func printInstruction(w io.Writer, ix instruction.Instruction) error {
	switch v := ix.(type) {
	case *instruction.Initialize:
		_, err := fmt.Fprintf(w, "instruction: %s\nnonce: %d\n", v.Tag(), v.Nonce)
		return err

	case *instruction.Swap:
		if _, err := fmt.Fprintf(w, "instruction: %s\namount_in: %d\nminimum_amount_out: %d\ndex_configs: %d\n",
			v.Tag(), v.AmountIn, v.MinimumAmountOut, len(v.DexConfigs)); err != nil {
			return err
		}
		for i, c := range v.DexConfigs {
			if _, err := fmt.Fprintf(w, "  [%d] %s account_size=%d ratio=%d\n",
				i, dex.Type(c.DexType), c.AccountSize, c.Ratio); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "dex_accounts: %d\n", v.TotalAccounts())
		return err
	}
	return fmt.Errorf("unsupported instruction %T", ix)
}
