package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/solana-router/internal/instruction"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode router instruction data",
	}
	cmd.AddCommand(newEncodeSwapCmd(), newEncodeInitializeCmd())
	return cmd
}

func newEncodeSwapCmd() *cobra.Command {
	var (
		amountIn, minOut uint64
		routes           []string
		encoding         string
	)

	cmd := &cobra.Command{
		Use:     "swap",
		Short:   "Encode a Swap instruction",
		Example: "  router encode swap --amount-in 100 --min-out 90 --route 0:7:1 --route 0:7:2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configs := make([]instruction.DexConfig, 0, len(routes))
			for _, r := range routes {
				c, err := parseRoute(r)
				if err != nil {
					return err
				}
				configs = append(configs, c)
			}

			data, err := instruction.Encode(&instruction.Swap{
				AmountIn:         amountIn,
				MinimumAmountOut: minOut,
				DexConfigs:       configs,
			})
			if err != nil {
				return err
			}
			return printEncoded(cmd, data, encoding)
		},
	}

	cmd.Flags().Uint64Var(&amountIn, "amount-in", 0, "input amount")
	cmd.Flags().Uint64Var(&minOut, "min-out", 0, "minimum total output")
	cmd.Flags().StringArrayVar(&routes, "route", nil, "dex config as type:account_size:ratio, repeatable")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", defaultEncoding, "output encoding: base58, base64 or hex")
	_ = cmd.MarkFlagRequired("amount-in")
	_ = cmd.MarkFlagRequired("route")
	return cmd
}

func newEncodeInitializeCmd() *cobra.Command {
	var (
		nonce    uint8
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Encode an Initialize instruction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := instruction.Encode(&instruction.Initialize{Nonce: nonce})
			if err != nil {
				return err
			}
			return printEncoded(cmd, data, encoding)
		},
	}
	cmd.Flags().Uint8Var(&nonce, "nonce", 0, "authority nonce")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", defaultEncoding, "output encoding: base58, base64 or hex")
	_ = cmd.MarkFlagRequired("nonce")
	return cmd
}

// parseRoute parses type:account_size:ratio.
func parseRoute(s string) (instruction.DexConfig, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return instruction.DexConfig{}, fmt.Errorf("route %q: want type:account_size:ratio", s)
	}

	var vals [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return instruction.DexConfig{}, fmt.Errorf("route %q: %w", s, err)
		}
		vals[i] = uint8(v)
	}
	return instruction.NewDexConfig(vals[0], int(vals[1]), vals[2]), nil
}

func printEncoded(cmd *cobra.Command, data []byte, encoding string) error {
	out, err := encodeBytes(data, encoding)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
