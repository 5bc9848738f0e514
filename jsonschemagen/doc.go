package jsonschemagen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/collab"
)

// jsonschemaDialect is the $schema value stamped on the namespace
// documents built by [Generator.GenerateNamespace], matching
// magicschema.Generator's draft-07 default. [Generator.Generate] leaves
// $schema unset.
const jsonschemaDialect = "http://json-schema.org/draft-07/schema#"

func sortStrings(s []string) {
	sort.Strings(s)
}

// writeSchemaLines pretty-prints schema as indented JSON through w, one
// WriteLine call per source line -- the FileWriter contract spec §6
// describes for a code generator's per-file output.
func writeSchemaLines(w collab.FileWriter, schema *jsonschema.Schema) error {
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", cerror.ErrIO, err)
	}

	for _, line := range strings.Split(string(b), "\n") {
		if err := w.WriteLine(1, line); err != nil {
			return fmt.Errorf("%w: %w", cerror.ErrIO, err)
		}
	}

	return nil
}
