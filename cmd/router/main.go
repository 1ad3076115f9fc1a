// ====================================
// File: cmd/router/main.go
// ====================================
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/config"
	"github.com/rovshanmuradov/solana-router/internal/utils/logger"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logFile    string

	cfg    *config.Config
	logger *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "router",
		Short:         "Swap router instruction tooling and local simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = a.logFile
			}

			lc := cfg.LoggerConfig()
			lc.Console = cmd.ErrOrStderr()
			l, err := logger.New(lc)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "override log_file; empty disables the file log")

	root.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(),
		newAuthorityCmd(a),
		newSimulateCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) named(name string) *zap.Logger {
	return a.logger.WithComponent(name)
}
