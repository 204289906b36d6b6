package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/console"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sequence of accesses and print every step.",
	Long: "`run --addresses 0,16,0x20 --ops w,r,r` performs the accesses on " +
		"a new cache. Missing operations are reads.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := configFromFlags(cmd)
		if err != nil {
			return err
		}

		addressList, _ := cmd.Flags().GetString("addresses")
		opList, _ := cmd.Flags().GetString("ops")

		addresses, err := console.ParseAddresses(addressList)
		if err != nil {
			return fmt.Errorf("--addresses: %w", err)
		}

		ops := console.ParseOperations(opList, len(addresses))

		_, err = console.RunAndPrint(console.NewPrinter(cmd.OutOrStdout()),
			"Cache", config, addresses, ops, tracingHooks(cmd)...)

		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("addresses", "",
		"Addresses to access, decimal or 0x hex, separated by commas.")
	runCmd.Flags().String("ops", "",
		"Operations (r, w, read, write) for the addresses, separated by commas.")
	_ = runCmd.MarkFlagRequired("addresses")
}
