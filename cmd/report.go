package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
)

var reportCmd = &cobra.Command{
	Use:   "report <recording.sqlite3>",
	Short: "Summarize the accesses of a recording.",
	Long: "`report` reads a database written with --record and prints one " +
		"line per recorded cache. With --steps, it also prints the steps of " +
		"every access.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		records, err := trace.ReadAccesses(cmd.Context(), reader)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "Cache\tAccesses\tHits\tCold\tConflict\t"+
			"Evictions\tWrite-backs\tMem Reads\tMem Writes")

		for _, s := range trace.Summarize(records) {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
				s.Location, s.Accesses, s.Hits, s.ColdMisses,
				s.ConflictMisses, s.Evictions, s.DirtyWriteBacks,
				s.MemoryReads, s.MemoryWrites)
		}

		err = w.Flush()
		if err != nil {
			return err
		}

		if showSteps, _ := cmd.Flags().GetBool("steps"); !showSteps {
			return nil
		}

		for _, r := range records {
			steps, err := trace.ReadSteps(cmd.Context(), reader, r.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%s #%d: %s 0x%x, %s\n",
				r.Location, r.AccessNumber, r.Operation, r.Address, r.MissKind)

			for _, s := range steps {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-13s %s\n",
					s.Kind, s.Description)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("steps", false, "Print the steps of every access.")
}
