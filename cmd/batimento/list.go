package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cobmax/batimento/internal/infrastructure/config"
)

func newListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the client configurations found in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
			if err != nil {
				return err
			}
			yml, err := filepath.Glob(filepath.Join(dir, "*.yml"))
			if err != nil {
				return err
			}
			matches = append(matches, yml...)
			sort.Strings(matches)

			for _, path := range matches {
				client, err := config.Load(path)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tINVALID: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", client.Name, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "configs", "directory holding client yaml files")
	return cmd
}
