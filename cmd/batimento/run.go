package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cobmax/batimento/internal/application/pipeline"
	"github.com/cobmax/batimento/internal/infrastructure/config"
	"github.com/cobmax/batimento/internal/infrastructure/csvio"
	"github.com/cobmax/batimento/internal/infrastructure/logger"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		sevenZip   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full reconciliation pipeline for one client",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log, err := logger.New(&logger.Config{Level: logLevel, Format: logFormat, Output: "stdout"})
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			loader := csvio.NewLoader(log, csvio.WithSevenZip(sevenZip))
			exporter := csvio.NewExporter(log, time.Now)
			runner := pipeline.NewRunner(log, loader, exporter, time.Now)

			summary, err := runner.Run(client)
			if err != nil {
				log.Error("pipeline failed", zap.Error(err))
				return err
			}

			for _, d := range summary.Directions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows -> %s\n", d.Name, d.Rows, d.ArchivePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "client configuration file (yaml)")
	cmd.Flags().StringVar(&sevenZip, "seven-zip", "7z", "path to the 7z binary for password-protected archives")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
