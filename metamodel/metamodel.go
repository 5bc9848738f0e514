// Package metamodel defines the abstract syntax tree that a textual .cto
// parser (see package ctoparser) produces and that [ModelManager]
// consumes: a [Models] node holding one [Model] per namespace, each
// [Model] carrying its imports and [Declaration] nodes, each declaration
// carrying [Property] nodes, optional [Validator]s, and optional
// [Decorator]s.
//
// Every node in this package self-identifies via a Kind field rather
// than through a type hierarchy, following the "single record, kind tag,
// per-kind optional fields" shape used throughout this module (see
// [go.jacobcolvin.com/x/magicschema]'s own flat, kind-dispatched AST
// walk for the model this follows) instead of deep class hierarchies.
package metamodel

import "github.com/concerto-project/concerto-go/cerror"

// DeclarationKind identifies the kind of a [Declaration].
type DeclarationKind int

const (
	KindConcept DeclarationKind = iota
	KindAsset
	KindParticipant
	KindTransaction
	KindEvent
	KindEnum
)

// String returns the textual keyword for k (as would appear in .cto
// source), e.g. "asset".
func (k DeclarationKind) String() string {
	switch k {
	case KindConcept:
		return "concept"
	case KindAsset:
		return "asset"
	case KindParticipant:
		return "participant"
	case KindTransaction:
		return "transaction"
	case KindEvent:
		return "event"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Identifiable reports whether declarations of this kind carry an
// identifier field (every root kind except concept and enum).
func (k DeclarationKind) Identifiable() bool {
	switch k {
	case KindAsset, KindParticipant, KindTransaction, KindEvent:
		return true
	default:
		return false
	}
}

// PropertyKind identifies the kind of a [Property].
type PropertyKind int

const (
	PropertyField PropertyKind = iota
	PropertyRelationship
	PropertyEnumValue
)

// ValidatorKind identifies the kind of a [Validator].
type ValidatorKind int

const (
	ValidatorStringRegex ValidatorKind = iota
	ValidatorRange
)

// Models is the root AST node: the union of every [Model] parsed (or
// otherwise constructed) across one or more input files.
type Models struct {
	Models []*Model
}

// Model is one namespace's worth of declarations plus its import table,
// as produced by a single .cto source file.
type Model struct {
	Namespace       string
	Imports         []*Import
	Declarations    []*Declaration
	ConcertoVersion string // semver range expression, empty if unconstrained
	Location        cerror.FileLocation
}

// Import is a `import <ns>.<name>` or `import <ns>.*` declaration,
// optionally annotated with a `from <uri>` clause that lets
// [ModelManager.UpdateExternalModels] fetch the referenced schema text.
type Import struct {
	Namespace string
	Name      string // empty for a wildcard import
	URI       string // empty unless annotated with "from <uri>"
}

// Wildcard reports whether this import has no named type (an `import
// <ns>.*`).
func (i *Import) Wildcard() bool {
	return i.Name == ""
}

// Declaration is one typed entity: `abstract? (asset|participant|
// transaction|event|concept|enum) Name [identified by field]
// [extends Type] { ... }`.
type Declaration struct {
	Kind         DeclarationKind
	Name         string
	IsAbstract   bool
	IdentifiedBy string // explicit `identified by <field>`, empty if system-identified or not identifiable
	SuperType    string // short name or FQN of the extended declaration, empty if none
	Properties   []*Property
	Decorators   []*Decorator
	Location     cerror.FileLocation
}

// Property is one field, relationship, or enum value within a
// [Declaration].
type Property struct {
	Kind       PropertyKind
	Name       string
	Type       string // primitive name or short/FQN type name; empty for enum values
	IsArray    bool
	IsOptional bool
	Default    string // literal text of a default value expression, empty if none
	HasDefault bool
	Validator  *Validator
	Decorators []*Decorator
	Location   cerror.FileLocation
}

// Validator constrains the values a [Property] may take: either a
// string regular expression or a numeric range.
type Validator struct {
	Kind ValidatorKind

	// StringRegex fields.
	Pattern string
	Flags   string

	// Range fields. Nil means unbounded on that side.
	Min *float64
	Max *float64
}

// ArgKind identifies the kind of a [DecoratorArg].
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBoolean
	ArgTypeRef
	ArgIdentifier
)

// DecoratorArg is one positional argument to a [Decorator]: a string,
// number, boolean, bare identifier, or type reference.
type DecoratorArg struct {
	Kind      ArgKind
	String    string
	Number    float64
	Boolean   bool
	TypeRef   string
	Identifer string
}

// Decorator is a `@name(arg, ...)` annotation attached to a declaration
// or property.
type Decorator struct {
	Name      string
	Arguments []DecoratorArg
}
