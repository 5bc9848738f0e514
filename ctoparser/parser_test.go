package ctoparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/ctoparser"
	"github.com/concerto-project/concerto-go/metamodel"
)

func TestParseBasicSchema(t *testing.T) {
	t.Parallel()

	const source = `namespace org.acme.sample

import org.acme.common.Shared from "https://example.org/common.cto"
import org.acme.other.*

@deprecated
abstract asset Base identified by baseId {
  o String baseId
}

asset SampleAsset extends Base {
  --> SampleParticipant owner
  o String[] tags optional
  o Double doubleValue range=[0.0,100.0]
  o String stringValue regex=/^[a-z]+$/i
}

enum Status {
  o ACTIVE
  o INACTIVE
}

participant SampleParticipant identified by participantId {
  o String participantId
}
`

	ast, err := ctoparser.Parser{}.Parse("sample.cto", []byte(source))
	require.NoError(t, err)
	require.Len(t, ast.Models, 1)

	m := ast.Models[0]
	assert.Equal(t, "org.acme.sample", m.Namespace)
	require.Len(t, m.Imports, 2)
	assert.Equal(t, "org.acme.common", m.Imports[0].Namespace)
	assert.Equal(t, "Shared", m.Imports[0].Name)
	assert.Equal(t, "https://example.org/common.cto", m.Imports[0].URI)
	assert.True(t, m.Imports[1].Wildcard())

	require.Len(t, m.Declarations, 4)

	base := m.Declarations[0]
	assert.Equal(t, metamodel.KindAsset, base.Kind)
	assert.True(t, base.IsAbstract)
	assert.Equal(t, "baseId", base.IdentifiedBy)
	require.Len(t, base.Decorators, 1)
	assert.Equal(t, "deprecated", base.Decorators[0].Name)

	asset := m.Declarations[1]
	assert.Equal(t, "Base", asset.SuperType)
	require.Len(t, asset.Properties, 4)

	owner := asset.Properties[0]
	assert.Equal(t, metamodel.PropertyRelationship, owner.Kind)
	assert.Equal(t, "SampleParticipant", owner.Type)

	tags := asset.Properties[1]
	assert.True(t, tags.IsArray)
	assert.True(t, tags.IsOptional)

	doubleValue := asset.Properties[2]
	require.NotNil(t, doubleValue.Validator)
	assert.Equal(t, metamodel.ValidatorRange, doubleValue.Validator.Kind)
	assert.Equal(t, 0.0, *doubleValue.Validator.Min)
	assert.Equal(t, 100.0, *doubleValue.Validator.Max)

	stringValue := asset.Properties[3]
	require.NotNil(t, stringValue.Validator)
	assert.Equal(t, metamodel.ValidatorStringRegex, stringValue.Validator.Kind)
	assert.Equal(t, "^[a-z]+$", stringValue.Validator.Pattern)
	assert.Equal(t, "i", stringValue.Validator.Flags)

	status := m.Declarations[2]
	assert.Equal(t, metamodel.KindEnum, status.Kind)
	require.Len(t, status.Properties, 2)
	assert.Equal(t, "ACTIVE", status.Properties[0].Name)
	assert.Equal(t, metamodel.PropertyEnumValue, status.Properties[0].Kind)
}

func TestParseRejectsMultipleNamespaces(t *testing.T) {
	t.Parallel()

	// A single .cto source file always describes exactly one namespace;
	// a second "namespace" keyword is a syntax error, not a second model.
	const source = "namespace a.b\nnamespace c.d\n"

	_, err := ctoparser.Parser{}.Parse("bad.cto", []byte(source))
	require.Error(t, err)
}
