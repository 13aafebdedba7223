package worker

import "github.com/spf13/cobra"

var concurrency int

// NewWorkerCmd returns the parent "worker" command. --concurrency overrides
// worker.count from config for every worker started under it.
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background workers",
	}
	cmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "processing goroutines (0 = from config)")
	cmd.AddCommand(normalizerCmd)

	return cmd
}
