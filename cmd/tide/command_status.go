package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"github.com/Builtbyjb/tide/pkg/lib/control"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [command...]",
		Short: "Query a running tide instance",
		Long: "Query the control endpoint of a running tide instance. Without arguments only the\n" +
			"instance itself is reported; every argument is a command string to check.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configured := ""
			if cfg, err := opts.loadConfig(); err == nil {
				configured = cfg.Control.Address
			}
			addr := control.ResolveAddress(configured)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			conn, err := control.Dial(addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			statuses, err := control.Query(ctx, conn, append([]string{""}, args...))
			if err != nil {
				if control.Code(err) == codes.Unavailable || control.Code(err) == codes.DeadlineExceeded {
					return fmt.Errorf("no tide instance reachable at %s: %w", addr, err)
				}
				return err
			}
			printStatusTable(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	return cmd
}
