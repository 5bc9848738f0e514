package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/version"
)

// runVersion prints build-time version information, kept unchanged in
// shape from the teacher's own `version version` subcommand.
func runVersion(cmd *cobra.Command) error {
	v := version.Version
	if v == "" {
		v = "dev"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "concerto %s (%s, %s/%s, built with %s)\n",
		v, version.Revision, version.GoOS, version.GoArch, version.GoVersion)

	return nil
}
