package instance

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/concerto-project/concerto-go/cerror"
)

const uriScheme = "resource:"

// ToURI renders r in the canonical relationship URI form
// "resource:<fqn>#<identifier>", URI-component-encoding the identifier.
// Uses [url.PathEscape] rather than [url.QueryEscape]: the identifier
// sits in a URI fragment, not a query string, so characters such as '@'
// that are valid unencoded in a path/fragment segment (and expected
// unencoded in identifiers like "alice@email.com") are left alone,
// while space and other unsafe characters are still percent-encoded.
func (r *Relationship) ToURI() string {
	return uriScheme + r.TargetFQN + "#" + url.PathEscape(r.TargetIdentifier)
}

// ParseURI parses a relationship URI of the form "resource:<fqn>#<id>".
// The namespace-less short form "resource:#<id>" is accepted when
// defaultFQN is non-empty, in which case it is used as the target type.
// Fails with [cerror.ErrInvalidURI] if the scheme or fragment is
// missing.
func ParseURI(raw, defaultFQN string) (*Relationship, error) {
	if !strings.HasPrefix(raw, uriScheme) {
		return nil, cerror.New(cerror.ErrInvalidURI, "relationship URI %q is missing the %q scheme", raw, uriScheme)
	}

	rest := strings.TrimPrefix(raw, uriScheme)

	idx := strings.Index(rest, "#")
	if idx < 0 {
		return nil, cerror.New(cerror.ErrInvalidURI, "relationship URI %q is missing a '#' fragment", raw)
	}

	fqn := rest[:idx]
	encodedID := rest[idx+1:]

	if fqn == "" {
		if defaultFQN == "" {
			return nil, cerror.New(cerror.ErrInvalidURI,
				"relationship URI %q has no namespace and no default type was supplied", raw)
		}

		fqn = defaultFQN
	}

	id, err := url.PathUnescape(encodedID)
	if err != nil {
		return nil, cerror.New(cerror.ErrInvalidURI, "relationship URI %q has a malformed identifier: %v", raw, err)
	}

	if id == "" {
		return nil, cerror.New(cerror.ErrInvalidURI, "relationship URI %q has an empty identifier", raw)
	}

	return &Relationship{TargetFQN: fqn, TargetIdentifier: id}, nil
}

// String implements [fmt.Stringer] for debugging/logging.
func (r *Relationship) String() string {
	return fmt.Sprintf("Relationship(%s)", r.ToURI())
}
