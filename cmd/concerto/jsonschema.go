package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/jsonschemagen"
	"github.com/concerto-project/concerto-go/log"
)

func newJSONSchemaCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "jsonschema <fqn>",
		Short: "Render a declaration to JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := resolvedHandler(cfg, logCfg, cmd.Flags())
			if err != nil {
				return err
			}

			mgr, err := loadManager(logCfg, files)
			if err != nil {
				return err
			}

			gen := jsonschemagen.New(mgr, slogFromHandler(handler))

			schema, err := gen.Generate(args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "a .cto file to load (repeatable)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
