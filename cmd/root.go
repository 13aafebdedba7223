package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohnsht/PhoneNumber/cmd/worker"
	"github.com/rohnsht/PhoneNumber/internal/config"
	"github.com/rohnsht/PhoneNumber/internal/logger"
)

var (
	cfgPath string
	cfg     config.Config
	rootCmd = &cobra.Command{
		Use:          "phonenumber",
		Short:        "Phone number parsing, validation and formatting",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(cfgPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return logger.Init(cfg.Log.Level, cfg.Log.Encoding)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (merged over built-in defaults)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(parseCmd, formatCmd, validateCmd, regionsCmd, verifyCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
