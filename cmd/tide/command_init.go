package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Builtbyjb/tide/pkg/lib/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a tide configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(opts.configPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", opts.configPath)
			return nil
		},
	}
	return cmd
}
