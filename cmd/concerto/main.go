// Command concerto is the CLI surface spec §1 places outside this
// module's core, wrapping the library packages in the teacher's own
// cobra command shape: a root command, RunE closures,
// SilenceErrors/SilenceUsage, and per-subsystem Config.RegisterFlags
// calls.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	logCfg := log.NewConfig()
	cfg := cliconfig.NewConfig(logCfg)

	rootCmd := &cobra.Command{
		Use:           "concerto",
		Short:         "Describe, validate, and serialize business-domain data types",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	cfg.RegisterFlags(rootCmd.PersistentFlags())

	if err := logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(
		newValidateCmd(cfg, logCfg),
		newInstantiateCmd(cfg, logCfg),
		newToJSONCmd(cfg, logCfg),
		newFromJSONCmd(cfg, logCfg),
		newJSONSchemaCmd(cfg, logCfg),
		newUpdateExternalCmd(cfg, logCfg),
		newBrowseCmd(cfg, logCfg),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	return 0
}
