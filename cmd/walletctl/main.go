package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletctl",
		Short: "Wallet transfer tooling: one-shot transfers, fixtures, load tests",
	}

	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(loadtestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
