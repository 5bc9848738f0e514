// Package lockfile reads and writes the concerto CLI's external-model
// lock file (spec §12.4): a record of the content hash last fetched for
// each externally-imported namespace, so `update-external` can skip a
// namespace whose remote content has not changed without --force.
// Grounded on the teacher's YAML AST/marshal helpers
// (serializer/helpers.go's ParseYAMLValue) but reaching for
// [github.com/goccy/go-yaml]'s top-level Marshal/Unmarshal directly,
// since a lock file is a plain typed document, not an AST this module
// needs to walk.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Entry records the last-fetched state of one externally-imported
// namespace.
type Entry struct {
	URI  string `yaml:"uri"`
	Hash string `yaml:"hash"`
}

// Lockfile is the parsed contents of a concerto-lock.yaml file.
type Lockfile struct {
	Namespaces map[string]Entry `yaml:"namespaces"`
}

// Load reads and parses the lock file at path. A missing file is not an
// error: it yields an empty [Lockfile], matching a first run before any
// namespace has ever been fetched.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Lockfile{Namespaces: map[string]Entry{}}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading lock file %s: %w", path, err)
	}

	var lf Lockfile

	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lock file %s: %w", path, err)
	}

	if lf.Namespaces == nil {
		lf.Namespaces = map[string]Entry{}
	}

	return &lf, nil
}

// Save writes lf to path as YAML.
func (lf *Lockfile) Save(path string) error {
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("encoding lock file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing lock file %s: %w", path, err)
	}

	return nil
}

// NeedsFetch reports whether namespace must be (re)fetched from uri: it
// has never been recorded, its recorded URI no longer matches, or force
// is set.
func (lf *Lockfile) NeedsFetch(namespace, uri string, force bool) bool {
	if force {
		return true
	}

	entry, ok := lf.Namespaces[namespace]

	return !ok || entry.URI != uri
}

// Record stores the hash of a namespace's freshly-fetched content,
// keyed by the URI it came from.
func (lf *Lockfile) Record(namespace, uri string, content []byte) {
	if lf.Namespaces == nil {
		lf.Namespaces = map[string]Entry{}
	}

	lf.Namespaces[namespace] = Entry{URI: uri, Hash: HashContent(content)}
}

// HashContent returns the hex-encoded SHA-256 digest of content, the
// form stored in a [Lockfile.Namespaces] entry's Hash field.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)

	return hex.EncodeToString(sum[:])
}
