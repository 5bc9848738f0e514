package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/log"
	"github.com/concerto-project/concerto-go/serializer"
)

// jsonFlags are shared between `tojson`/`fromjson`: the files to load and
// the serializer [serializer.Options] overrides spec §4.6 names.
type jsonFlags struct {
	files         []string
	validate      bool
	noValidate    bool
	includeOpt    bool
	utcOffset     float64
	convertToRels bool
	permitRes     bool
}

func (jf *jsonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&jf.files, "file", "f", nil, "a .cto file to load (repeatable)")
	cmd.Flags().BoolVar(&jf.validate, "validate", true, "validate required/unexpected properties")
	cmd.Flags().BoolVar(&jf.noValidate, "no-validate", false, "disable validation (overrides --validate)")
	cmd.Flags().BoolVar(&jf.includeOpt, "include-optional", false, "emit/expect optional fields explicitly")
	cmd.Flags().Float64Var(&jf.utcOffset, "utc-offset", 0, "UTC offset hours for DateTime/$timestamp formatting")
	cmd.Flags().BoolVar(&jf.convertToRels, "convert-resources-to-relationships", false,
		"convert an embedded Resource on a relationship field into a relationship URI")
	cmd.Flags().BoolVar(&jf.permitRes, "permit-resources-for-relationships", false,
		"permit an embedded Resource value in place of a relationship")

	_ = cmd.MarkFlagRequired("file")
}

func (jf *jsonFlags) options() []serializer.Option {
	validate := jf.validate && !jf.noValidate

	return []serializer.Option{
		serializer.WithValidate(validate),
		serializer.WithIncludeOptionalFields(jf.includeOpt),
		serializer.WithUTCOffsetHours(jf.utcOffset),
		serializer.WithConvertResourcesToRelationships(jf.convertToRels),
		serializer.WithPermitResourcesForRelationships(jf.permitRes),
	}
}

func newToJSONCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	jf := &jsonFlags{}

	cmd := &cobra.Command{
		Use:   "tojson <fqn>",
		Short: "Build an instance and print its canonical JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolvedConfig(cfg, logCfg, cmd.Flags()); err != nil {
				return err
			}

			mgr, err := loadManager(logCfg, jf.files)
			if err != nil {
				return err
			}

			f := factory.New(mgr)

			inst, err := buildInstance(mgr, f, args[0], false, false, jf.includeOpt)
			if err != nil {
				return err
			}

			doc, err := serializer.New(mgr, f).ToJSON(inst, jf.options()...)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	jf.register(cmd)

	return cmd
}

func newFromJSONCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	jf := &jsonFlags{}
	input := ""

	cmd := &cobra.Command{
		Use:   "fromjson",
		Short: "Read canonical JSON from stdin (or --input) and validate it against the loaded model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := resolvedConfig(cfg, logCfg, cmd.Flags()); err != nil {
				return err
			}

			mgr, err := loadManager(logCfg, jf.files)
			if err != nil {
				return err
			}

			var raw []byte

			if input == "" || input == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(input)
			}

			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parsing JSON: %w", err)
			}

			f := factory.New(mgr)

			inst, err := serializer.New(mgr, f).FromJSON(doc, "", jf.options()...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", inst.FQN())

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "input file path (default: stdin)")
	jf.register(cmd)

	return cmd
}
