package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"TransferApi/internal/loadgen"
)

func loadtestCmd() *cobra.Command {
	cfg := loadgen.Config{}
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive concurrent transfers against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Duration = duration
			report, err := loadgen.Run(context.Background(), cfg)
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.TargetURL, "url", "http://localhost:8080/execute-transaction", "transfer endpoint")
	cmd.Flags().IntVar(&cfg.Rate, "rate", 100, "requests per second")
	cmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "test duration")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 100, "concurrent senders")
	cmd.Flags().StringVar(&cfg.WalletPrefix, "wallets", "SW", "wallet id prefix")
	cmd.Flags().IntVar(&cfg.WalletCount, "wallet-count", 100, "number of wallets to spread load over")
	cmd.Flags().Int64Var(&cfg.MaxAmount, "max-amount", 100, "maximum per-request amount")
	cmd.Flags().IntVar(&cfg.MaxRetries, "max-retries", 3, "per-request retry limit")
	cmd.Flags().Float64Var(&cfg.RetryDelay, "retry-delay", 1, "per-request retry delay in seconds")
	cmd.Flags().Float64Var(&cfg.CommitSleep, "sleep", 0, "per-request pre-commit delay in milliseconds")

	return cmd
}
