package instancegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/instance"
	"github.com/concerto-project/concerto-go/instancegen"
	"github.com/concerto-project/concerto-go/modelmanager"
)

func newManager(t *testing.T, source string) *modelmanager.ModelManager {
	t.Helper()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("test.cto", []byte(source), modelmanager.AddOptions{}))

	return mgr
}

func TestGeneratorSampleAndEmpty(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
asset SampleAsset identified by assetId {
  o String assetId
  --> SampleParticipant owner
  o String stringValue
  o Double doubleValue
}
participant SampleParticipant identified by participantId {
  o String participantId
}
`

	tcs := map[string]struct {
		values instancegen.ValueGenerator
	}{
		"empty strategy":  {values: instancegen.Empty},
		"sample strategy": {values: instancegen.Sample},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mgr := newManager(t, schema)
			gen := instancegen.New(mgr, factory.New(mgr), tc.values)

			inst, err := gen.Generate("org.acme.sample.SampleAsset", instancegen.Options{})
			require.NoError(t, err)

			id, ok := inst.Identifier()
			assert.True(t, ok)
			assert.NotEmpty(t, id)

			owner, ok := inst.Get("owner")
			require.True(t, ok)

			rel, ok := owner.(*instance.Relationship)
			require.True(t, ok)
			assert.Equal(t, "org.acme.sample.SampleParticipant", rel.TargetFQN)
			assert.NotEmpty(t, rel.TargetIdentifier)

			_, hasStringValue := inst.Get("stringValue")
			assert.True(t, hasStringValue)
		})
	}
}

func TestGeneratorRequiredRecursionFails(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
asset MyAsset identified by assetId {
  o String assetId
  o MyAsset theValues
}
`

	mgr := newManager(t, schema)
	gen := instancegen.New(mgr, factory.New(mgr), instancegen.Sample)

	_, err := gen.Generate("org.acme.sample.MyAsset", instancegen.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrRecursion)
}

func TestGeneratorRecursiveArrayIsEmpty(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
asset MyAsset identified by assetId {
  o String assetId
  o MyAsset[] theValues
}
`

	mgr := newManager(t, schema)
	gen := instancegen.New(mgr, factory.New(mgr), instancegen.Sample)

	inst, err := gen.Generate("org.acme.sample.MyAsset", instancegen.Options{})
	require.NoError(t, err)

	values, ok := inst.Get("theValues")
	require.True(t, ok)
	assert.Equal(t, []any{}, values)
}

func TestGeneratorRecursiveOptionalIsOmittedUnlessIncluded(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
asset MyAsset identified by assetId {
  o String assetId
  o MyAsset theValues optional
}
`

	mgr := newManager(t, schema)
	gen := instancegen.New(mgr, factory.New(mgr), instancegen.Sample)

	inst, err := gen.Generate("org.acme.sample.MyAsset", instancegen.Options{})
	require.NoError(t, err)

	_, ok := inst.Get("theValues")
	assert.False(t, ok, "optional recursive field is left unset without IncludeOptionalFields")

	inst, err = gen.Generate("org.acme.sample.MyAsset", instancegen.Options{IncludeOptionalFields: true})
	require.NoError(t, err)

	v, ok := inst.Get("theValues")
	require.True(t, ok)
	assert.Nil(t, v, "recursive optional field generates as null when included")
}

func TestGeneratorAbstractFieldPicksConcreteSubclass(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
abstract concept Base {
  o String name
}
concept Derived extends Base {
  o String extra
}
concept Holder {
  o String holderId
  o Base base
}
`

	mgr := newManager(t, schema)
	gen := instancegen.New(mgr, factory.New(mgr), instancegen.Sample)

	inst, err := gen.Generate("org.acme.sample.Holder", instancegen.Options{})
	require.NoError(t, err)

	base, ok := inst.Get("base")
	require.True(t, ok)

	nested, ok := base.(*instance.Instance)
	require.True(t, ok)
	assert.Equal(t, "org.acme.sample.Derived", nested.FQN())
}

func TestGeneratorNoConcreteSubclassFails(t *testing.T) {
	t.Parallel()

	const schema = `namespace org.acme.sample
abstract concept Base {
  o String name
}
concept Holder {
  o String holderId
  o Base base
}
`

	mgr := newManager(t, schema)
	gen := instancegen.New(mgr, factory.New(mgr), instancegen.Sample)

	_, err := gen.Generate("org.acme.sample.Holder", instancegen.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrModelViolation)
}
