package instance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/instance"
)

// Testable property 5: fromURI(toURI(u)) == u.
func TestRelationshipURIRoundTrip(t *testing.T) {
	t.Parallel()

	tcs := map[string]*instance.Relationship{
		"simple identifier": instance.NewRelationship("org.acme.sample.SampleParticipant", "alice"),
		"email identifier":  instance.NewRelationship("org.acme.sample.SampleParticipant", "alice@email.com"),
		"identifier with #": instance.NewRelationship("org.acme.sample.SampleAsset", "has#fragment"),
	}

	for name, rel := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			back, err := instance.ParseURI(rel.ToURI(), "")
			require.NoError(t, err)
			assert.Equal(t, rel, back)
		})
	}
}

func TestParseURIShortFormUsesDefaultFQN(t *testing.T) {
	t.Parallel()

	rel, err := instance.ParseURI("resource:#alice", "org.acme.sample.SampleParticipant")
	require.NoError(t, err)
	assert.Equal(t, "org.acme.sample.SampleParticipant", rel.TargetFQN)
	assert.Equal(t, "alice", rel.TargetIdentifier)
}

func TestParseURIMissingSchemeFails(t *testing.T) {
	t.Parallel()

	_, err := instance.ParseURI("org.acme.sample.SampleParticipant#alice", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrInvalidURI)
}

func TestParseURIMissingFragmentFails(t *testing.T) {
	t.Parallel()

	_, err := instance.ParseURI("resource:org.acme.sample.SampleParticipant", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrInvalidURI)
}

func TestParseURIShortFormWithoutDefaultFails(t *testing.T) {
	t.Parallel()

	_, err := instance.ParseURI("resource:#alice", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrInvalidURI)
}
