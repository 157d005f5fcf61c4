package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"TransferApi/internal/mongodb"
	"TransferApi/internal/seed"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate wallet fixtures",
	}
	cmd.AddCommand(seedWalletsCmd())
	cmd.AddCommand(seedContentionCmd())
	return cmd
}

func seedWalletsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Recreate the bulk wallet fixtures (drops the collection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, dbName, err := storeEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool := mongodb.NewPool(uri)
			defer pool.Close(ctx)

			client, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			return seed.Wallets(ctx, client.Database(dbName), count, rng)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 100000, "number of wallets to create")
	return cmd
}

func seedContentionCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "contention",
		Short: "Recreate the shared contention wallets and their partial index",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, dbName, err := storeEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool := mongodb.NewPool(uri)
			defer pool.Close(ctx)

			client, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			return seed.ContentionWallets(ctx, client.Database(dbName), count, rng)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of contention wallets to create")
	return cmd
}
