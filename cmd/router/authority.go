package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/processor"
)

func newAuthorityCmd(a *app) *cobra.Command {
	var (
		pool, program string
		nonce         int
	)

	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Derive the pool authority address",
		Long: "Derives the authority from the pool key. Without --nonce the canonical nonce\n" +
			"is searched for; with it the address for that exact nonce is derived.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolKey, err := solana.PublicKeyFromBase58(pool)
			if err != nil {
				return fmt.Errorf("pool: %w", err)
			}

			programID, err := a.cfg.ProgramKey()
			if program != "" {
				programID, err = solana.PublicKeyFromBase58(program)
			}
			if err != nil {
				return fmt.Errorf("program: %w", err)
			}

			var (
				authority solana.PublicKey
				n         uint8
			)
			if cmd.Flags().Changed("nonce") {
				if nonce < 0 || nonce > 255 {
					return fmt.Errorf("nonce %d out of range", nonce)
				}
				n = uint8(nonce)
				authority, err = processor.AuthorityID(programID, poolKey, n)
			} else {
				authority, n, err = processor.FindAuthority(programID, poolKey)
			}
			if err != nil {
				return err
			}

			a.logger.WithProgram(programID.String()).Debug("Authority derived",
				zap.String("pool", poolKey.String()),
				zap.Uint8("nonce", n))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "authority: %s\nnonce: %d\n", authority, n)
			return err
		},
	}

	cmd.Flags().StringVar(&pool, "pool", "", "router pool account")
	cmd.Flags().StringVar(&program, "program", "", "router program id (defaults to program_id from config)")
	cmd.Flags().IntVar(&nonce, "nonce", 0, "derive with this nonce instead of searching")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}
