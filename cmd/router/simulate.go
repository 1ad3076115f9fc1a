package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-router/internal/scenario"
	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

var errScenarioFailed = errors.New("scenario expectations not met")

func newSimulateCmd(a *app) *cobra.Command {
	var (
		file        string
		rpcURL      string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a swap scenario against the in-process runtime",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.logger.WithOperation("simulate")
			done := a.logger.TrackPerformance("simulate")
			defer done()

			f, err := scenario.LoadFile(file)
			if err != nil {
				return err
			}

			var m *metrics.Collector
			if showMetrics || a.cfg.MetricsEnabled {
				m = metrics.NewCollector()
			}

			opts := []scenario.RunnerOption{
				scenario.WithMetrics(m),
				scenario.WithTokenProgram(a.cfg.TokenProgramKey()),
				scenario.WithProcessorOptions(a.cfg.ProcessorOptions()...),
			}

			if rpcURL == "" {
				rpcURL = a.cfg.RPCURL
			}
			if rpcURL != "" {
				client := solbc.NewClient(rpcURL, log, m)
				opts = append(opts, scenario.WithLoader(solbc.NewLoader(client, log, a.cfg.RPCRetries, a.cfg.RetryDelay())))
			}

			if f.ProgramID == "" && a.cfg.ProgramID != "" {
				f.ProgramID = a.cfg.ProgramID
			}

			report, err := scenario.NewRunner(log, opts...).Run(cmd.Context(), f)
			if err != nil {
				a.logger.LogError("Scenario run failed", err, zap.String("file", file))
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.WriteText(out); err != nil {
				return err
			}
			if m != nil {
				fmt.Fprintln(out)
				if err := m.WriteText(out); err != nil {
					return err
				}
			}

			log.Info("Simulation done",
				zap.String("scenario", f.Name),
				zap.Bool("passed", report.Passed()))
			if !report.Passed() {
				return errScenarioFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "scenario yaml file")
	cmd.Flags().StringVar(&rpcURL, "rpc", "", "cluster RPC used to load accounts marked fetch (defaults to rpc_url)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print prometheus metrics after the report")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
