// Package main provides the choreography CLI, which runs one service of the user -> order -> payment
// event chain per process.
//
// Usage:
//
//	choreography user-service --config configs/user-service.yaml
//	choreography order-service --config configs/order-service.yaml
//	choreography payment-service --config configs/payment-service.yaml
//	choreography emit-user --config configs/user-service.yaml --email a@b.com --name A
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "choreography",
		Short:         "Run the services of the user, order and payment event chain",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file (defaults to $CONFIG_FILE)")

	rootCmd.AddCommand(
		newUserServiceCmd(flags),
		newOrderServiceCmd(flags),
		newPaymentServiceCmd(flags),
		newEmitUserCmd(flags),
	)

	return rootCmd
}
