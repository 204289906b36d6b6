package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/server"
	"github.com/sarchlab/cachesim/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cache simulator over HTTP.",
	Long: "`serve` starts an HTTP server. A cache is created in the default " +
		"session when --cache-size, --block-size, --placement, or " +
		"--write-policy is given.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")

		manager := session.NewManager(tracingHooks(cmd)...)
		s := server.NewServer(manager).WithPortNumber(port)

		if configChanged(cmd) {
			config, err := configFromFlags(cmd)
			if err != nil {
				return err
			}

			_, err = s.DefaultSession().Create(config)
			if err != nil {
				return err
			}
		}

		url := s.StartServer()

		if open {
			err := browser.OpenURL(url + "/api/get_state")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	},
}

func configChanged(cmd *cobra.Command) bool {
	for _, name := range []string{
		"cache-size", "block-size", "placement", "write-policy",
	} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}

	return false
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"Port of the server. A random port is used when it is 0.")
	serveCmd.Flags().Bool("open", false, "Open the API in a browser.")
}
