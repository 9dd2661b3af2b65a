package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thrift",
	Short: "ThriftStore - peer-to-peer secondhand clothing marketplace",
	Long: `ThriftStore runs the marketplace backend (orders, inventory, chat and
notifications) and ships small terminal clients for watching a user's
notification feed and chatting on an order.

Configuration comes from the environment or a .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
