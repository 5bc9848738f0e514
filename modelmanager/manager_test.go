package modelmanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/ctoparser"
	"github.com/concerto-project/concerto-go/modelmanager"
)

const assetSchema = `namespace org.acme.sample
asset SampleAsset identified by assetId {
  o String assetId
  o String stringValue
}
asset DerivedAsset extends SampleAsset {
  o String extra
}
`

const badSchema = `namespace org.acme.broken
asset Broken identified by brokenId {
  o NoSuchType brokenId
}
`

// Testable property 1: getType and ModelFile.GetLocalType agree.
func TestGetTypeMatchesModelFile(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))

	mf, ok := mgr.GetModelFile("org.acme.sample")
	require.True(t, ok)

	local, ok := mf.GetLocalType("SampleAsset")
	require.True(t, ok)

	byFQN, err := mgr.GetType("org.acme.sample.SampleAsset")
	require.NoError(t, err)

	assert.Same(t, local, byFQN)
}

// Testable property 2: derivesFrom matches the ancestor chain.
func TestDerivesFrom(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))

	assert.True(t, mgr.DerivesFrom("org.acme.sample.DerivedAsset", "org.acme.sample.SampleAsset"))
	assert.True(t, mgr.DerivesFrom("org.acme.sample.DerivedAsset", "org.acme.sample.DerivedAsset"))
	assert.False(t, mgr.DerivesFrom("org.acme.sample.DerivedAsset", "concerto.Asset"))
	assert.False(t, mgr.DerivesFrom("org.acme.sample.SampleAsset", "org.acme.sample.DerivedAsset"))
}

// Testable property 6: add then delete restores the namespace set.
func TestAddDeleteRestoresNamespaceSet(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()

	before := append([]string(nil), mgr.GetNamespaces()...)

	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))
	require.NoError(t, mgr.Delete("org.acme.sample"))

	assert.ElementsMatch(t, before, mgr.GetNamespaces())
}

func TestDeleteUnknownNamespaceFails(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()

	err := mgr.Delete("does.not.exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrTypeNotFound)
}

// Testable property 7: a failing batch add leaves the namespace set
// unchanged.
func TestAddAllModelsRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))

	before := append([]string(nil), mgr.GetNamespaces()...)

	ast, err := ctoparser.Parser{}.Parse("broken.cto", []byte(badSchema))
	require.NoError(t, err)

	err = mgr.AddAllModels(ast.Models, modelmanager.AddOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrIllegalModel)

	assert.ElementsMatch(t, before, mgr.GetNamespaces())
}

func TestGetAstRoundTrip(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))

	ast, err := mgr.GetAst(true)
	require.NoError(t, err)

	other := modelmanager.New()
	require.NoError(t, other.FromAst(ast))

	assert.ElementsMatch(t, mgr.GetNamespaces(), other.GetNamespaces())

	d, err := other.GetType("org.acme.sample.SampleAsset")
	require.NoError(t, err)
	assert.Equal(t, "SampleAsset", d.Name)
}

func TestClearModelFilesReinstatesOnlyRoot(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()
	require.NoError(t, mgr.AddModelText("sample.cto", []byte(assetSchema), modelmanager.AddOptions{}))

	mgr.ClearModelFiles()

	assert.Equal(t, []string{"concerto"}, mgr.GetNamespaces())
}

func TestUpdateRequiresExistingNamespace(t *testing.T) {
	t.Parallel()

	mgr := modelmanager.New()

	ast, err := ctoparser.Parser{}.Parse("sample.cto", []byte(assetSchema))
	require.NoError(t, err)

	err = mgr.Update(ast.Models[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, cerror.ErrTypeNotFound)
}
