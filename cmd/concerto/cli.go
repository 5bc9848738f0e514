package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/log"
	"github.com/concerto-project/concerto-go/modelmanager"
)

// loadManager parses every named .cto file, in argument order, and adds
// each to a fresh [modelmanager.ModelManager] with one
// [modelmanager.ModelManager.AddModelText] call per file. Each file is
// validated as it is added, so a file may only reference namespaces
// loaded by files named before it.
func loadManager(logCfg *log.Config, files []string) (*modelmanager.ModelManager, error) {
	return loadManagerTo(logCfg, files, os.Stderr)
}

// loadManagerTo is [loadManager] with the log destination broken out, so
// a caller that also wants a copy of the manager's log stream (`browse`,
// which fans it into the TUI's log pane via a [log.Publisher]) can
// supply an [io.MultiWriter] in place of os.Stderr.
func loadManagerTo(logCfg *log.Config, files []string, w io.Writer) (*modelmanager.ModelManager, error) {
	handler, err := logCfg.NewHandler(w)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	mgr := modelmanager.New(modelmanager.WithLogger(slogFromHandler(handler)))

	for _, path := range files {
		text, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("reading %s: %w", path, readErr)
		}

		if addErr := mgr.AddModelText(path, text, modelmanager.AddOptions{Name: path}); addErr != nil {
			return nil, fmt.Errorf("loading %s: %w", path, addErr)
		}
	}

	return mgr, nil
}

// resolvedConfig runs [cliconfig.Config.Load] against flags and applies
// the result to logCfg, following spec §10.3's "flags always win, file
// values fill the rest" rule.
func resolvedConfig(cfg *cliconfig.Config, logCfg *log.Config, flags *pflag.FlagSet) (*cliconfig.RuntimeOptions, error) {
	opts, err := cfg.Load(flags)
	if err != nil {
		return nil, err
	}

	if !flags.Changed(logCfg.Flags.Level) {
		logCfg.Level = opts.Log.Level
	}

	if !flags.Changed(logCfg.Flags.Format) {
		logCfg.Format = opts.Log.Format
	}

	return opts, nil
}

// resolvedHandler resolves the CLI config and builds the resulting
// slog.Handler, for subcommands (jsonschema) that need a logger
// of their own beyond the one [loadManager] wires into the manager.
func resolvedHandler(cfg *cliconfig.Config, logCfg *log.Config, flags *pflag.FlagSet) (log.Handler, error) {
	if _, err := resolvedConfig(cfg, logCfg, flags); err != nil {
		return nil, err
	}

	return logCfg.NewHandler(os.Stderr)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd)
		},
	}
}
