// Package visitor defines the single dispatch contract spec §4.8
// describes for traversal engines over the declaration graph. In this
// module the JSON Schema generator (jsonschemagen) implements it; the
// serializer and the instance generator walk declarations directly and
// do not. Implementations self-select behavior by asking which kind
// predicate a node matches (IsClassDeclaration, IsField, ...) rather
// than through a type-switch over a closed set of node types, so a new
// node type introduced elsewhere in this module does not require
// touching this package.
package visitor

import (
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
	"github.com/concerto-project/concerto-go/modelmanager"
)

// Visitor is the single-method dispatch contract every traversal engine
// over the declaration graph implements. parameters carries whatever
// accumulator the concrete visitor needs (for example a
// [github.com/concerto-project/concerto-go/collab.FileWriter] sink for a
// code generator); Visit returns whatever result makes sense for that
// visitor, or an error to abort the traversal.
type Visitor interface {
	Visit(node any, parameters any) (any, error)
}

// IsModelManager reports whether node is a [modelmanager.ModelManager].
func IsModelManager(node any) (*modelmanager.ModelManager, bool) {
	m, ok := node.(*modelmanager.ModelManager)

	return m, ok
}

// IsModelFile reports whether node is a [modelfile.ModelFile].
func IsModelFile(node any) (*modelfile.ModelFile, bool) {
	mf, ok := node.(*modelfile.ModelFile)

	return mf, ok
}

// IsClassDeclaration reports whether node is a
// [declaration.ClassDeclaration].
func IsClassDeclaration(node any) (*declaration.ClassDeclaration, bool) {
	d, ok := node.(*declaration.ClassDeclaration)

	return d, ok
}

// IsEnum reports whether node is an enum [declaration.ClassDeclaration].
func IsEnum(node any) (*declaration.ClassDeclaration, bool) {
	d, ok := IsClassDeclaration(node)
	if !ok || d.Kind != metamodel.KindEnum {
		return nil, false
	}

	return d, true
}

// IsField reports whether node is a plain-field [declaration.Property].
func IsField(node any) (*declaration.Property, bool) {
	p, ok := node.(*declaration.Property)
	if !ok || p.Kind != declaration.PropertyField {
		return nil, false
	}

	return p, true
}

// IsRelationship reports whether node is a relationship
// [declaration.Property].
func IsRelationship(node any) (*declaration.Property, bool) {
	p, ok := node.(*declaration.Property)
	if !ok || p.Kind != declaration.PropertyRelationship {
		return nil, false
	}

	return p, true
}

// IsEnumValue reports whether node is an enum-value
// [declaration.Property].
func IsEnumValue(node any) (*declaration.Property, bool) {
	p, ok := node.(*declaration.Property)
	if !ok || p.Kind != declaration.PropertyEnumValue {
		return nil, false
	}

	return p, true
}
