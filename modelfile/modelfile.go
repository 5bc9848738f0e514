// Package modelfile implements [ModelFile], the owner of one namespace's
// declarations and import table, and the namespace-local half of the
// name-resolution algorithm described in spec §4.2. The cross-file half
// (resolving a wildcard import against another file's local types) is
// reached through the [Resolver] interface, which
// [github.com/concerto-project/concerto-go/modelmanager.ModelManager]
// implements, so this package never imports the registry that owns it.
package modelfile

import (
	"sort"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
)

// Resolver is the cross-file lookup seam a [ModelFile] needs during
// validation: whether another namespace is loaded at all, and whether it
// declares a given local short name. [ModelFile] never needs more than
// this from its owner.
type Resolver interface {
	HasNamespace(namespace string) bool
	HasLocalType(namespace, shortName string) bool
}

// ModelFile owns one namespace's declarations and import table.
type ModelFile struct {
	Namespace       string
	Source          string // original .cto text, if constructed from text; empty otherwise
	External        bool   // true if installed via UpdateExternalModels
	ConcertoVersion string

	declarations  []*declaration.ClassDeclaration
	byName        map[string]*declaration.ClassDeclaration
	namedImports  map[string]string // local short name -> source FQN, includes implicit root imports
	explicitNamed map[string]string // local short name -> source FQN, explicit only (for AST round-trip)
	wildcardNS    []string          // wildcard-imported namespaces, in declaration order
	importURIs    map[string]string // namespace -> "from <uri>" URI, for external-model fetch
}

// New builds a [ModelFile] from a parsed [metamodel.Model]. It does not
// validate declarations against the rest of the graph; the owning
// registry (modelmanager) does that, together with
// [ModelFile.ValidateImports], when it installs the file.
//
// Every non-root namespace implicitly imports the five bootstrap root
// type names from [metamodel.RootNamespace], so that a bare Asset/
// Participant/Transaction/Event/Concept reference resolves without an
// explicit import (spec §4.2). An explicit import of the same short name
// overrides the implicit one.
func New(m *metamodel.Model) (*ModelFile, error) {
	mf := &ModelFile{
		Namespace:       m.Namespace,
		ConcertoVersion: m.ConcertoVersion,
		byName:          make(map[string]*declaration.ClassDeclaration, len(m.Declarations)),
		namedImports:    make(map[string]string),
		explicitNamed:   make(map[string]string),
		importURIs:      make(map[string]string),
	}

	if m.Namespace != metamodel.RootNamespace {
		for _, short := range metamodel.RootShortNames {
			mf.namedImports[short] = metamodel.RootTypeFQN(short)
		}
	}

	for _, imp := range m.Imports {
		if imp.Wildcard() {
			mf.wildcardNS = append(mf.wildcardNS, imp.Namespace)
		} else {
			mf.namedImports[imp.Name] = metamodel.JoinFQN(imp.Namespace, imp.Name)
			mf.explicitNamed[imp.Name] = metamodel.JoinFQN(imp.Namespace, imp.Name)
		}

		if imp.URI != "" {
			mf.importURIs[imp.Namespace] = imp.URI
		}
	}

	for _, d := range m.Declarations {
		cd, err := buildDeclaration(m.Namespace, d)
		if err != nil {
			return nil, err
		}

		if _, dup := mf.byName[cd.Name]; dup {
			return nil, cerror.New(cerror.ErrIllegalModel,
				"duplicate declaration %q in namespace %q", cd.Name, m.Namespace)
		}

		mf.byName[cd.Name] = cd
		mf.declarations = append(mf.declarations, cd)
	}

	return mf, nil
}

func buildDeclaration(namespace string, d *metamodel.Declaration) (*declaration.ClassDeclaration, error) {
	cd := &declaration.ClassDeclaration{
		Kind:            d.Kind,
		Namespace:       namespace,
		Name:            d.Name,
		IsAbstract:      d.IsAbstract,
		SuperTypeFQN:    d.SuperType, // resolved to an FQN during Validate
		Decorators:      d.Decorators,
		ConcertoVersion: "",
	}

	if d.IdentifiedBy != "" {
		cd.SetOwnIdentifier(d.IdentifiedBy)
	}

	for _, p := range d.Properties {
		cd.Properties = append(cd.Properties, &declaration.Property{
			Kind:       p.Kind,
			Name:       p.Name,
			Type:       p.Type,
			IsArray:    p.IsArray,
			IsOptional: p.IsOptional,
			Default:    p.Default,
			HasDefault: p.HasDefault,
			Validator:  p.Validator,
			Decorators: p.Decorators,
		})
	}

	if err := cd.ValidateOwnShape(); err != nil {
		return nil, err
	}

	return cd, nil
}

// NewRoot builds the bootstrap root [ModelFile] for namespace directly
// from already-constructed declarations, bypassing [metamodel] parsing
// and [declaration.ClassDeclaration.ValidateOwnShape]'s reserved-name
// check -- the root declarations are the only ones permitted to own a
// property literally named "$identifier", since they define what that
// name means. Callers outside this module's bootstrap should use [New]
// instead.
func NewRoot(namespace string, decls []*declaration.ClassDeclaration) *ModelFile {
	mf := &ModelFile{
		Namespace:     namespace,
		byName:        make(map[string]*declaration.ClassDeclaration, len(decls)),
		namedImports:  make(map[string]string),
		explicitNamed: make(map[string]string),
		importURIs:    make(map[string]string),
	}

	for _, d := range decls {
		mf.byName[d.Name] = d
		mf.declarations = append(mf.declarations, d)
	}

	return mf
}

// Declarations returns every declaration owned by this file, in source
// order.
func (mf *ModelFile) Declarations() []*declaration.ClassDeclaration {
	return mf.declarations
}

// GetLocalType returns the declaration named shortName if it is declared
// directly in this file.
func (mf *ModelFile) GetLocalType(shortName string) (*declaration.ClassDeclaration, bool) {
	d, ok := mf.byName[shortName]

	return d, ok
}

// HasLocalType implements the predicate half of [Resolver] for this
// file's own namespace.
func (mf *ModelFile) HasLocalType(shortName string) bool {
	_, ok := mf.byName[shortName]

	return ok
}

// WildcardNamespaces returns the namespaces this file wildcard-imports,
// in declaration order.
func (mf *ModelFile) WildcardNamespaces() []string {
	return mf.wildcardNS
}

// ImportURI returns the "from <uri>" clause recorded for namespace, if
// any.
func (mf *ModelFile) ImportURI(namespace string) (string, bool) {
	uri, ok := mf.importURIs[namespace]

	return uri, ok
}

// ExternalNamespaceURIs returns every namespace imported with a "from
// <uri>" clause, used by UpdateExternalModels to discover fetch targets.
func (mf *ModelFile) ExternalNamespaceURIs() map[string]string {
	return mf.importURIs
}

// NamedImports returns this file's explicit named imports (local short
// name -> source FQN), excluding the five implicitly-imported root
// types. Used to reconstruct an AST faithful to what was actually
// written, rather than one cluttered with implicit imports.
func (mf *ModelFile) NamedImports() map[string]string {
	return mf.explicitNamed
}

// Resolve implements the name-resolution algorithm of spec §4.2 for a
// short name T referenced from within this file.
func (mf *ModelFile) Resolve(shortName string, resolver Resolver) (string, error) {
	if metamodel.IsPrimitiveType(shortName) {
		return shortName, nil
	}

	if mf.HasLocalType(shortName) {
		return metamodel.JoinFQN(mf.Namespace, shortName), nil
	}

	if fqn, ok := mf.namedImports[shortName]; ok {
		return fqn, nil
	}

	for _, ns := range mf.wildcardNS {
		if resolver.HasLocalType(ns, shortName) {
			return metamodel.JoinFQN(ns, shortName), nil
		}
	}

	return "", cerror.New(cerror.ErrIllegalModel, "undeclared type %q referenced from namespace %q", shortName, mf.Namespace)
}

// ValidateImports checks that every import this file declares resolves
// to a loaded namespace, and that named imports resolve to a local type
// of that namespace.
func (mf *ModelFile) ValidateImports(resolver Resolver) error {
	for short, fqn := range mf.namedImports {
		ns, name := metamodel.SplitFQN(fqn)

		if !resolver.HasNamespace(ns) {
			return cerror.New(cerror.ErrIllegalModel,
				"import %q: namespace %q is not loaded", short, ns).WithFQN(metamodel.JoinFQN(mf.Namespace, ""))
		}

		if !resolver.HasLocalType(ns, name) {
			return cerror.New(cerror.ErrIllegalModel,
				"import %q: namespace %q has no local type %q", short, ns, name)
		}
	}

	for _, ns := range mf.wildcardNS {
		if !resolver.HasNamespace(ns) {
			return cerror.New(cerror.ErrIllegalModel, "wildcard import: namespace %q is not loaded", ns)
		}
	}

	return nil
}

// SortedDeclarationNames returns the short names of this file's
// declarations in a stable, deterministic order. Used by callers (the
// AST emitter, the CLI) that need reproducible output independent of map
// iteration order.
func (mf *ModelFile) SortedDeclarationNames() []string {
	names := make([]string, 0, len(mf.byName))
	for name := range mf.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
