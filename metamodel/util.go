package metamodel

import "strings"

// RootNamespace is the reserved namespace hosting the bootstrap root
// types Concept, Asset, Participant, Transaction, and Event. Users may
// not define it themselves.
const RootNamespace = "concerto"

// Primitive type names. This is the closed set; no other bare
// identifier is a primitive.
const (
	PrimitiveString   = "String"
	PrimitiveBoolean  = "Boolean"
	PrimitiveDateTime = "DateTime"
	PrimitiveDouble   = "Double"
	PrimitiveLong     = "Long"
	PrimitiveInteger  = "Integer"
)

var primitives = map[string]bool{
	PrimitiveString:   true,
	PrimitiveBoolean:  true,
	PrimitiveDateTime: true,
	PrimitiveDouble:   true,
	PrimitiveLong:     true,
	PrimitiveInteger:  true,
}

// IsPrimitiveType reports whether name is one of the six built-in
// primitive type names.
func IsPrimitiveType(name string) bool {
	return primitives[name]
}

// IsNumericPrimitive reports whether name is one of the three numeric
// primitives eligible for a range [Validator].
func IsNumericPrimitive(name string) bool {
	return name == PrimitiveDouble || name == PrimitiveLong || name == PrimitiveInteger
}

// SplitFQN splits a fully qualified name into its namespace and short
// name. If fqn contains no '.', the namespace is empty and the short
// name is fqn itself (this is never a valid FQN, but callers use this
// to detect that case).
func SplitFQN(fqn string) (namespace, shortName string) {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return "", fqn
	}

	return fqn[:idx], fqn[idx+1:]
}

// JoinFQN builds a fully qualified name from a namespace and short name.
func JoinFQN(namespace, shortName string) string {
	if namespace == "" {
		return shortName
	}

	return namespace + "." + shortName
}

// RootTypeFQN returns the fully qualified name of one of the five
// bootstrap root types, e.g. RootTypeFQN("Asset") == "concerto.Asset".
func RootTypeFQN(shortName string) string {
	return JoinFQN(RootNamespace, shortName)
}

// RootShortNames lists the five bootstrap root declaration short names,
// in the order they are installed by the root model.
var RootShortNames = []string{"Concept", "Asset", "Participant", "Transaction", "Event"}
