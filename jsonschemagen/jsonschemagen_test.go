package jsonschemagen_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/jsonschemagen"
	"github.com/concerto-project/concerto-go/modelmanager"
)

const schema = `namespace org.acme.sample

@title("A sample asset")
asset SampleAsset identified by assetId {
  o String assetId
  o String stringValue regex=/^[a-z]+$/
  o Double doubleValue range=[0.0,100.0]
  o String[] tags optional
  --> SampleParticipant owner
}

participant SampleParticipant identified by participantId {
  o String participantId
}

enum Status {
  o ACTIVE
  o INACTIVE
}
`

func newManager(t *testing.T) *modelmanager.ModelManager {
	t.Helper()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(schema), modelmanager.AddOptions{}))

	return mgr
}

func TestGenerateAssetSchema(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	gen := jsonschemagen.New(mgr, nil)

	s, err := gen.Generate("org.acme.sample.SampleAsset")
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, `{
	  "$id": "urn:concerto:org.acme.sample.SampleAsset",
	  "type": "object",
	  "title": "A sample asset",
	  "properties": {
	    "assetId": {"type": "string"},
	    "stringValue": {"type": "string", "pattern": "^[a-z]+$"},
	    "doubleValue": {"type": "number", "minimum": 0.0, "maximum": 100.0},
	    "tags": {"type": "array", "items": {"type": "string"}},
	    "owner": {"type": "string", "pattern": "^resource:[A-Za-z_][A-Za-z0-9_.]*#.+$"}
	  },
	  "required": ["assetId", "stringValue", "doubleValue", "owner"]
	}`, string(b))
}

func TestGenerateEnumSchema(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	gen := jsonschemagen.New(mgr, nil)

	s, err := gen.Generate("org.acme.sample.Status")
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, `{
	  "$id": "urn:concerto:org.acme.sample.Status",
	  "type": "string",
	  "enum": ["ACTIVE", "INACTIVE"]
	}`, string(b))
}

func TestGenerateNamespaceBundlesDefs(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	gen := jsonschemagen.New(mgr, nil)

	doc, err := gen.GenerateNamespace("org.acme.sample")
	require.NoError(t, err)

	assert.Contains(t, doc.Defs, "org.acme.sample.SampleAsset")
	assert.Contains(t, doc.Defs, "org.acme.sample.SampleParticipant")
	assert.Contains(t, doc.Defs, "org.acme.sample.Status")
}

func TestGenerateUnknownTypeFails(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	gen := jsonschemagen.New(mgr, nil)

	_, err := gen.Generate("org.acme.sample.NoSuchThing")
	require.Error(t, err)
}
