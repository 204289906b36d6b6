// Package cmd provides the command-line interface of the cache simulator.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/console"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
)

// envFlags maps flags to the environment variables that provide their
// defaults.
var envFlags = map[string]string{
	"cache-size":   "CACHESIM_CACHE_SIZE",
	"block-size":   "CACHESIM_BLOCK_SIZE",
	"placement":    "CACHESIM_PLACEMENT",
	"write-policy": "CACHESIM_WRITE_POLICY",
	"port":         "CACHESIM_PORT",
	"record":       "CACHESIM_RECORD",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Cachesim simulates direct-mapped and fully associative caches.",
	Long: `Cachesim simulates direct-mapped and fully associative caches ` +
		`with write-through and write-back policies. Without a subcommand, ` +
		`it shows the menu of the interactive console.`,
	SilenceUsage:       true,
	PersistentPreRunE:  loadEnv,
	PersistentPostRunE: closeRecorder,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return console.NewPrompter(os.Stdin, cmd.OutOrStdout(),
			tracingHooks(cmd)...).Menu()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.Int("cache-size", 16, "Total size of the cache in bytes.")
	flags.Int("block-size", 4, "Size of a cache block in bytes.")
	flags.String("placement", "direct-mapped",
		"Placement of blocks, direct-mapped or fully-associative.")
	flags.String("write-policy", "write-back",
		"Write policy, write-through or write-back.")
	flags.Int("address-width", 32,
		"Width of an address in bits. Only used to report the tag bits.")
	flags.String("record", "",
		"Record every access into <record>.sqlite3.")
	flags.Bool("trace", false, "Log every access and its steps to stderr.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// loadEnv reads an optional .env file and applies the environment variables
// to the flags that are not set on the command line.
func loadEnv(cmd *cobra.Command, _ []string) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var setErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		name, ok := envFlags[f.Name]
		if !ok || f.Changed || setErr != nil {
			return
		}

		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}

		err := cmd.Flags().Set(f.Name, value)
		if err != nil {
			setErr = fmt.Errorf("%s: %w", name, err)
		}
	})

	return setErr
}

func configFromFlags(cmd *cobra.Command) (cache.Config, error) {
	flags := cmd.Flags()

	totalSize, _ := flags.GetInt("cache-size")
	blockSize, _ := flags.GetInt("block-size")
	addressWidth, _ := flags.GetInt("address-width")
	placementName, _ := flags.GetString("placement")
	policyName, _ := flags.GetString("write-policy")

	placement, err := cache.ParsePlacement(placementName)
	if err != nil {
		return cache.Config{}, err
	}

	policy, err := cache.ParseWritePolicy(policyName)
	if err != nil {
		return cache.Config{}, err
	}

	config := cache.MakeBuilder().
		WithTotalSize(totalSize).
		WithBlockSize(blockSize).
		WithPlacement(placement).
		WithWritePolicy(policy).
		WithAddressWidth(addressWidth).
		Config()

	return config, config.Validate()
}

// recorder is the recorder created for the --record flag, if any.
var recorder datarecording.DataRecorder

func closeRecorder(_ *cobra.Command, _ []string) error {
	if recorder == nil {
		return nil
	}

	err := recorder.Close()
	recorder = nil

	return err
}

// tracingHooks creates the hooks requested by the --trace and --record
// flags.
func tracingHooks(cmd *cobra.Command) []hooking.Hook {
	var hooks []hooking.Hook

	if enabled, _ := cmd.Flags().GetBool("trace"); enabled {
		hooks = append(hooks, trace.NewLogTracer(log.New(os.Stderr, "", 0)))
	}

	if name, _ := cmd.Flags().GetString("record"); name != "" {
		recorder = datarecording.NewDataRecorder(name)
		hooks = append(hooks, trace.NewDBTracer(recorder))
	}

	return hooks
}
