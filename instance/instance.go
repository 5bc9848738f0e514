// Package instance holds the runtime records the Factory produces and
// the Serializer and InstanceGenerator consume: [Instance] (a Resource,
// Concept, Transaction, or Event -- which one is just its declaration's
// [declaration.Kind]) and [Relationship] (a by-reference pointer to
// another identifiable instance, never an embedded value).
//
// Following this module's flat, kind-tagged convention rather than a
// Typed/Identifiable/Resource/Concept/Event/Transaction class hierarchy,
// [Instance] is one record for all four identifiable-or-not kinds;
// Identifier and Timestamp simply sit unset on the kinds that don't
// carry them (concepts have no identifier, assets/participants have no
// timestamp).
package instance

import (
	"time"

	"github.com/concerto-project/concerto-go/declaration"
)

// Instance is a concrete, in-memory record of a Resource, Concept,
// Transaction, or Event, tied to the [declaration.ClassDeclaration] that
// describes its dynamic (not necessarily static) type.
type Instance struct {
	decl       *declaration.ClassDeclaration
	identifier string
	hasID      bool
	timestamp  time.Time
	hasTS      bool
	values     map[string]any
}

// New creates an empty [Instance] of the dynamic type decl.
func New(decl *declaration.ClassDeclaration) *Instance {
	return &Instance{decl: decl, values: make(map[string]any)}
}

// FQN returns the instance's dynamic $class.
func (i *Instance) FQN() string {
	return i.decl.FQN()
}

// Declaration returns the declaration this instance was constructed
// against.
func (i *Instance) Declaration() *declaration.ClassDeclaration {
	return i.decl
}

// Identifier returns the instance's identifier value and whether one has
// been set. Concepts, and identifiable instances that have not yet had
// their identifier assigned, report false.
func (i *Instance) Identifier() (string, bool) {
	return i.identifier, i.hasID
}

// SetIdentifier assigns the instance's identifier. It does not check
// that the dynamic declaration is identifiable; callers (the Factory)
// are expected to have already checked.
func (i *Instance) SetIdentifier(id string) {
	i.identifier = id
	i.hasID = true
}

// Timestamp returns the instance's $timestamp and whether one is set.
// Only transactions and events carry one.
func (i *Instance) Timestamp() (time.Time, bool) {
	return i.timestamp, i.hasTS
}

// SetTimestamp assigns the instance's $timestamp.
func (i *Instance) SetTimestamp(t time.Time) {
	i.timestamp = t
	i.hasTS = true
}

// Get returns the value stored for property name, and whether it has
// been set at all (as opposed to set to a Go nil/zero value).
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]

	return v, ok
}

// Set stores value for property name. value's shape follows the
// property's kind: a native Go scalar for a primitive field, a
// []any for an array, a nested *Instance for an object field, a
// *Relationship for a relationship field.
func (i *Instance) Set(name string, value any) {
	i.values[name] = value
}

// Unset removes any stored value for name, used when a property should
// be omitted entirely from serialization rather than emitted as a zero
// value.
func (i *Instance) Unset(name string) {
	delete(i.values, name)
}

// PropertyNames returns the names of every property this instance has a
// stored value for. Order is unspecified; callers needing declaration
// order should iterate the declaration's properties instead and call Get
// per name.
func (i *Instance) PropertyNames() []string {
	names := make([]string, 0, len(i.values))
	for name := range i.values {
		names = append(names, name)
	}

	return names
}

// Relationship is a typed, by-reference pointer to another identifiable
// instance: the target declaration's FQN and the target's identifier.
// It never embeds the referenced instance's values.
type Relationship struct {
	TargetFQN        string
	TargetIdentifier string
}

// NewRelationship builds a [Relationship] to the instance of targetFQN
// identified by targetID.
func NewRelationship(targetFQN, targetID string) *Relationship {
	return &Relationship{TargetFQN: targetFQN, TargetIdentifier: targetID}
}

