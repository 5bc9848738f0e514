package modelmanager

import (
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
)

// newRootModelFile builds the synthetic "concerto" namespace installed
// by every [ModelManager] at construction: the abstract declarations
// Concept, Asset, Participant, Transaction, and Event, each carrying its
// conventional system-identifier field ($identifier for the four
// identifiable kinds). $timestamp is not modeled as a regular property;
// [github.com/concerto-project/concerto-go/serializer] emits it directly
// from the instance's timestamp field for Transaction/Event kinds, since
// spec §4.6 describes it as always present (unless suppressed) rather
// than as an ordinary inherited field.
func newRootModelFile() *modelfile.ModelFile {
	identifierField := func() *declaration.Property {
		return &declaration.Property{
			Kind: declaration.PropertyField,
			Name: "$identifier",
			Type: metamodel.PrimitiveString,
		}
	}

	newAbstractIdentifiable := func(kind declaration.Kind, name string) *declaration.ClassDeclaration {
		d := &declaration.ClassDeclaration{
			Kind:       kind,
			Namespace:  metamodel.RootNamespace,
			Name:       name,
			IsAbstract: true,
			Properties: []*declaration.Property{identifierField()},
		}
		d.SetOwnIdentifier("$identifier")

		return d
	}

	concept := &declaration.ClassDeclaration{
		Kind:       declaration.KindConcept,
		Namespace:  metamodel.RootNamespace,
		Name:       "Concept",
		IsAbstract: true,
	}

	decls := []*declaration.ClassDeclaration{
		concept,
		newAbstractIdentifiable(declaration.KindAsset, "Asset"),
		newAbstractIdentifiable(declaration.KindParticipant, "Participant"),
		newAbstractIdentifiable(declaration.KindTransaction, "Transaction"),
		newAbstractIdentifiable(declaration.KindEvent, "Event"),
	}

	return modelfile.NewRoot(metamodel.RootNamespace, decls)
}
