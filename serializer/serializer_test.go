package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/instance"
	"github.com/concerto-project/concerto-go/modelmanager"
	"github.com/concerto-project/concerto-go/serializer"
)

const sampleSchema = `namespace org.acme.sample
asset SampleAsset identified by assetId {
  o String assetId
  --> SampleParticipant owner
  o String stringValue
  o Double doubleValue
}
participant SampleParticipant identified by participantId {
  o String participantId
  o String firstName
  o String lastName
}
concept Address {
  o String city
  o String country
  o Double elevation
}
`

func newFixture(t *testing.T) (*modelmanager.ModelManager, *factory.Factory, *serializer.Serializer) {
	t.Helper()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(sampleSchema), modelmanager.AddOptions{}))

	f := factory.New(mgr)
	ser := serializer.New(mgr, f)

	return mgr, f, ser
}

// S1 -- round-trip asset.
func TestToJSONRoundTripAsset(t *testing.T) {
	t.Parallel()

	_, f, ser := newFixture(t)

	asset, err := f.Create("org.acme.sample", "SampleAsset", factory.Options{Identifier: "1"})
	require.NoError(t, err)

	asset.Set("owner", instance.NewRelationship("org.acme.sample.SampleParticipant", "alice@email.com"))
	asset.Set("stringValue", "the value")
	asset.Set("doubleValue", 3.14)

	out, err := ser.ToJSON(asset)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"$class":      "org.acme.sample.SampleAsset",
		"$identifier": "1",
		"assetId":     "1",
		"owner":       "resource:org.acme.sample.SampleParticipant#alice@email.com",
		"stringValue": "the value",
		"doubleValue": 3.14,
	}, out)

	back, err := ser.FromJSON(out, "")
	require.NoError(t, err)

	assert.Equal(t, asset.FQN(), back.FQN())

	id, _ := back.Identifier()
	assert.Equal(t, "1", id)

	sv, _ := back.Get("stringValue")
	assert.Equal(t, "the value", sv)

	dv, _ := back.Get("doubleValue")
	assert.Equal(t, 3.14, dv)

	owner, _ := back.Get("owner")
	rel, ok := owner.(*instance.Relationship)
	require.True(t, ok)
	assert.Equal(t, "alice@email.com", rel.TargetIdentifier)
}

// S2 -- validation failure on missing required field.
func TestToJSONMissingRequiredField(t *testing.T) {
	t.Parallel()

	_, f, ser := newFixture(t)

	asset, err := f.Create("org.acme.sample", "SampleAsset", factory.Options{Identifier: "1"})
	require.NoError(t, err)

	_, err = ser.ToJSON(asset)
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrModelViolation)

	out, err := ser.ToJSON(asset, serializer.WithValidate(false))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"$class":      "org.acme.sample.SampleAsset",
		"$identifier": "1",
		"assetId":     "1",
	}, out)
}

// S3 -- non-finite numeric values fail.
func TestToJSONNonFiniteNumeric(t *testing.T) {
	t.Parallel()

	for name, v := range map[string]float64{
		"NaN":  nan(),
		"+Inf": posInf(),
		"-Inf": negInf(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, f, ser := newFixture(t)

			asset, err := f.Create("org.acme.sample", "SampleAsset", factory.Options{Identifier: "1"})
			require.NoError(t, err)

			asset.Set("owner", instance.NewRelationship("org.acme.sample.SampleParticipant", "alice@email.com"))
			asset.Set("stringValue", "the value")
			asset.Set("doubleValue", v)

			_, err = ser.ToJSON(asset)
			require.Error(t, err)
			assert.ErrorIs(t, err, cerror.ErrModelViolation)
		})
	}
}

// S4 -- concept without identifier.
func TestToJSONConceptHasNoIdentifier(t *testing.T) {
	t.Parallel()

	_, f, ser := newFixture(t)

	addr, err := f.Create("org.acme.sample", "Address", factory.Options{})
	require.NoError(t, err)

	addr.Set("city", "Winchester")
	addr.Set("country", "UK")
	addr.Set("elevation", 3.14)

	out, err := ser.ToJSON(addr)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"$class":    "org.acme.sample.Address",
		"city":      "Winchester",
		"country":   "UK",
		"elevation": 3.14,
	}, out)
}

// S5 -- unexpected property on deserialization.
func TestFromJSONUnexpectedProperty(t *testing.T) {
	t.Parallel()

	_, _, ser := newFixture(t)

	data := map[string]any{
		"$class":        "org.acme.sample.SampleParticipant",
		"$identifier":   "alphablock",
		"participantId": "alphablock",
		"firstName":     "Block",
		"lastName":      "Norris",
		"WRONG":         "blah",
	}

	_, err := ser.FromJSON(data, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrModelViolation)

	delete(data, "WRONG")
	data["WRONG"] = nil
	_, err = ser.FromJSON(data, "")
	require.NoError(t, err)
}

func nan() float64    { var z float64; return z / z }
func posInf() float64 { var z float64; return 1 / z }
func negInf() float64 { var z float64; return -1 / z }
