package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/modelmanager"
)

const schema = `namespace org.acme.sample
abstract asset AbstractAsset identified by id {
  o String id
}
asset ConcreteAsset extends AbstractAsset {
}
transaction MyTransaction extends Transaction {
  o String note
}
concept MyConcept {
  o String value
}
`

func newManager(t *testing.T) *modelmanager.ModelManager {
	t.Helper()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(schema), modelmanager.AddOptions{}))

	return mgr
}

func TestCreateConcreteAssetWithExplicitIdentifier(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	f := factory.New(mgr)

	inst, err := f.Create("org.acme.sample", "ConcreteAsset", factory.Options{Identifier: "a1"})
	require.NoError(t, err)

	id, ok := inst.Identifier()
	assert.True(t, ok)
	assert.Equal(t, "a1", id)
}

func TestCreateAbstractFailsWithoutSample(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	f := factory.New(mgr)

	_, err := f.Create("org.acme.sample", "AbstractAsset", factory.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrModelViolation)
}

func TestCreateAbstractWithSamplePicksConcreteSubclass(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	f := factory.New(mgr)

	inst, err := f.Create("org.acme.sample", "AbstractAsset", factory.Options{GenerateSample: true})
	require.NoError(t, err)
	assert.Equal(t, "org.acme.sample.ConcreteAsset", inst.FQN())

	_, hasID := inst.Identifier()
	assert.False(t, hasID)
}

func TestCreateTransactionGetsIdentifierAndTimestamp(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := factory.New(mgr, factory.WithClock(func() time.Time { return fixed }))

	inst, err := f.Create("org.acme.sample", "MyTransaction", factory.Options{})
	require.NoError(t, err)

	_, hasID := inst.Identifier()
	assert.True(t, hasID)

	ts, hasTS := inst.Timestamp()
	require.True(t, hasTS)
	assert.True(t, ts.Equal(fixed))
}

func TestCreateTransactionSuppressTimestamp(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	f := factory.New(mgr)

	inst, err := f.Create("org.acme.sample", "MyTransaction", factory.Options{SuppressTimestamp: true})
	require.NoError(t, err)

	_, hasTS := inst.Timestamp()
	assert.False(t, hasTS)
}

func TestCreateConceptHasNoIdentifier(t *testing.T) {
	t.Parallel()

	mgr := newManager(t)
	f := factory.New(mgr)

	inst, err := f.Create("org.acme.sample", "MyConcept", factory.Options{})
	require.NoError(t, err)

	_, hasID := inst.Identifier()
	assert.False(t, hasID)
}
