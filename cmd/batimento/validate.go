package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobmax/batimento/internal/infrastructure/config"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a client configuration without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: configuration valid (%d direction(s))\n",
				client.Name, len(client.Directions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "client configuration file (yaml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
