package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohan-0202/QuantForge/internal/engine"
	"github.com/rohan-0202/QuantForge/internal/ledger"
	"github.com/rohan-0202/QuantForge/internal/repository"
	"github.com/rohan-0202/QuantForge/strategies"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backtester",
		Short:         "Day-stepped strategy backtester",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newStrategiesCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest described by a YAML config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBacktest(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "backtest.yaml", "path to the backtest config file")
	return cmd
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the registered strategies",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range strategies.Default().List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func runBacktest(ctx context.Context, configPath string) error {
	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := repository.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect datasource: %w", err)
	}
	defer db.Close()

	portfolio, err := ledger.NewPortfolio(
		decimal.NewFromFloat(cfg.InitialCash),
		cfg.Items(),
		cfg.Start(),
		cfg.AllowMargin,
		cfg.AllowShort,
	)
	if err != nil {
		return err
	}

	strat, err := strategies.Default().Create(cfg.Strategy, portfolio)
	if err != nil {
		return err
	}

	summary, err := engine.NewEngine(cfg, portfolio, strat, &db, log).Run(ctx)
	if err != nil {
		return err
	}
	engine.PrintReport(os.Stdout, summary)
	return nil
}
