package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Builtbyjb/tide/pkg/lib/control"
	"github.com/Builtbyjb/tide/pkg/lib/output"
	"github.com/Builtbyjb/tide/pkg/lib/runloop"
	"github.com/Builtbyjb/tide/pkg/lib/supervisor"
	"github.com/Builtbyjb/tide/pkg/lib/watcher"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Run commands",
		Long:  "Run every command of the named command set until interrupted with Ctrl + C.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			commands, err := cfg.Select(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			printBanner(out, version)
			console := output.NewConsole(out)

			sup := supervisor.New(supervisor.Options{
				Console: console,
				Logger:  opts.logger("supervisor"),
			})
			defer sup.Close()

			if addr := cfg.Control.Address; addr != "" {
				logger := opts.logger("control")
				srv, err := control.NewServer(addr, sup, logger)
				if err != nil {
					return err
				}
				defer srv.Stop()
				go func() {
					if err := srv.Serve(); err != nil {
						logger.Warn("control endpoint stopped", "err", err)
					}
				}()
				logger.Debug("control endpoint listening", "addr", srv.Addr())
			}

			return runloop.Run(ctx, runloop.Options{
				Commands:   commands,
				Supervisor: sup,
				Watch:      watch,
				Root:       cfg.RootDir,
				Rules: watcher.Rules{
					Dirs:  cfg.Exclude.Dir,
					Files: cfg.Exclude.File,
					Exts:  cfg.Exclude.Ext,
				},
				OnModified: func(path string) {
					console.Notice("%s has been modified", path)
				},
				Logger: opts.logger("runloop"),
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for changes and re-run commands")
	return cmd
}
