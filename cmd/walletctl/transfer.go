package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"TransferApi/internal/events"
	"TransferApi/internal/model"
	"TransferApi/internal/mongodb"
	"TransferApi/internal/repository"
	"TransferApi/internal/service"
)

const defaultDatabase = "starbucks"

func storeEnv() (uri, dbName string, err error) {
	uri = os.Getenv("MONGODB_URI")
	if uri == "" {
		return "", "", fmt.Errorf("environment variable MONGODB_URI is not set")
	}
	dbName = os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = defaultDatabase
	}
	return uri, dbName, nil
}

// transferCmd runs the same retry algorithm as the server, once, for manual
// reproduction of contention scenarios.
func transferCmd() *cobra.Command {
	var (
		walletID   string
		amount     int64
		maxRetries int
		retryDelay float64
		sleepMs    float64
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Execute one debit-and-record transaction with retry",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, dbName, err := storeEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool := mongodb.NewPool(uri)
			defer pool.Close(ctx)

			repo := repository.NewMongoRepository(pool, dbName)
			svc := service.NewTransferService(repo, events.NopPublisher{})

			result, err := svc.ExecuteTransfer(ctx, model.TransferParams{
				WalletID:    walletID,
				Amount:      amount,
				MaxRetries:  maxRetries,
				RetryDelay:  time.Duration(retryDelay * float64(time.Second)),
				CommitDelay: time.Duration(sleepMs * float64(time.Millisecond)),
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !result.Success {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&walletID, "wallet", "w", "WALLET001", "id of the wallet to deduct from")
	cmd.Flags().Int64VarP(&amount, "amount", "a", 50, "amount to deduct")
	cmd.Flags().IntVarP(&maxRetries, "max-retries", "r", 2, "maximum transaction retry attempts")
	cmd.Flags().Float64VarP(&retryDelay, "retry-delay", "d", 5, "delay between retry attempts in seconds")
	cmd.Flags().Float64VarP(&sleepMs, "sleep", "s", 0, "delay in milliseconds before committing")

	return cmd
}
