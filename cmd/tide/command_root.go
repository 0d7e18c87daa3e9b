package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Builtbyjb/tide/pkg/lib"
	"github.com/Builtbyjb/tide/pkg/lib/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tide",
		Short:         "Run and re-run your development commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("tide v{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultFile, "Path to the configuration file")
	flags.BoolVar(&opts.verbose, "verbose", false, "Write debug logs to stderr")

	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newStatusCmd(opts))

	return root
}

// logger returns a debug logger on stderr when --verbose is set and a
// discarding one otherwise.
func (o *rootOptions) logger(prefix string) *log.Logger {
	if !o.verbose {
		return lib.DiscardLogger(prefix)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		Prefix:          prefix,
		ReportTimestamp: true,
	})
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	o.logger("config").Debug("loading configuration", "path", path)
	return config.Load(path)
}
