package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/console"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the sample demonstration.",
	Long: "`demo` compares a direct-mapped cache with a fully associative " +
		"one, and write-through with write-back, on fixed access sequences.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := console.RunDemo(cmd.OutOrStdout(), tracingHooks(cmd)...)
		return err
	},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Ask for a configuration and accesses, then simulate them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(),
			tracingHooks(cmd)...).Interactive()

		return err
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(interactiveCmd)
}
