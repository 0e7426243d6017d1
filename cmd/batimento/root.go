package main

import (
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time with -ldflags.
	Version = "dev"

	logLevel  string
	logFormat string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "batimento",
		Short:         "Batch reconciliation of creditor ledgers against MAX",
		Long:          "Batch ETL that loads a creditor ledger and a MAX extract, treats and\nkeys both sides, computes the batimento and baixa anti-joins, splits them\ninto carteiras and exports timestamped archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newListCommand())
	root.AddCommand(newVersionCommand())
	return root
}
