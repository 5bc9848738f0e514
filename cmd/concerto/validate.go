package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/log"
)

func newValidateCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <files...>",
		Short: "Load and validate a set of .cto files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolvedConfig(cfg, logCfg, cmd.Flags()); err != nil {
				return err
			}

			mgr, err := loadManager(logCfg, args)
			if err != nil {
				return err
			}

			for _, ns := range mgr.GetNamespaces() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", ns)
			}

			return nil
		},
	}

	return cmd
}
