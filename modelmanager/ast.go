package modelmanager

import (
	"sort"

	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
)

// GetAst reconstructs a [metamodel.Models] AST of every loaded namespace
// except the bootstrap root. When resolve is true, every type reference
// (super-type and property type) is emitted as its canonical FQN; when
// false, references are shortened back to the bare name a user would
// have written, wherever that is unambiguous (same namespace, or one of
// the five implicitly imported root types).
func (m *ModelManager) GetAst(resolve bool) (*metamodel.Models, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := &metamodel.Models{}

	for _, ns := range m.sortedNamespacesLocked() {
		if ns == metamodel.RootNamespace {
			continue
		}

		mf := m.files[ns]
		out.Models = append(out.Models, m.toModel(mf, resolve))
	}

	return out, nil
}

func (m *ModelManager) toModel(mf *modelfile.ModelFile, resolve bool) *metamodel.Model {
	model := &metamodel.Model{
		Namespace:       mf.Namespace,
		ConcertoVersion: mf.ConcertoVersion,
	}

	uris := mf.ExternalNamespaceURIs()

	namedShorts := make([]string, 0, len(mf.NamedImports()))
	for short := range mf.NamedImports() {
		namedShorts = append(namedShorts, short)
	}

	sort.Strings(namedShorts)

	for _, short := range namedShorts {
		fqn := mf.NamedImports()[short]
		ns, _ := metamodel.SplitFQN(fqn)
		model.Imports = append(model.Imports, &metamodel.Import{Namespace: ns, Name: short, URI: uris[ns]})
	}

	for _, ns := range mf.WildcardNamespaces() {
		model.Imports = append(model.Imports, &metamodel.Import{Namespace: ns, URI: uris[ns]})
	}

	for _, name := range mf.SortedDeclarationNames() {
		d, _ := mf.GetLocalType(name)
		model.Declarations = append(model.Declarations, toDeclaration(mf.Namespace, d, resolve))
	}

	return model
}

func toDeclaration(namespace string, d *declaration.ClassDeclaration, resolve bool) *metamodel.Declaration {
	out := &metamodel.Declaration{
		Kind:       d.Kind,
		Name:       d.Name,
		IsAbstract: d.IsAbstract,
		Decorators: d.Decorators,
	}

	if d.HasOwnIdentifier() {
		out.IdentifiedBy = d.IdentifierField
	}

	if d.SuperTypeFQN != "" {
		out.SuperType = shortenType(namespace, d.SuperTypeFQN, resolve)
	}

	for _, p := range d.Properties {
		out.Properties = append(out.Properties, &metamodel.Property{
			Kind:       p.Kind,
			Name:       p.Name,
			Type:       shortenType(namespace, p.Type, resolve),
			IsArray:    p.IsArray,
			IsOptional: p.IsOptional,
			Default:    p.Default,
			HasDefault: p.HasDefault,
			Validator:  p.Validator,
			Decorators: p.Decorators,
		})
	}

	return out
}

// shortenType returns fqn as-is when resolve is true; otherwise it
// strips the namespace prefix when the type is local to namespace or is
// one of the implicitly imported root types, leaving every other
// reference fully qualified (it was necessarily imported explicitly to
// be usable at all).
func shortenType(namespace, fqn string, resolve bool) string {
	if resolve || metamodel.IsPrimitiveType(fqn) {
		return fqn
	}

	ns, short := metamodel.SplitFQN(fqn)
	if ns == namespace {
		return short
	}

	if ns == metamodel.RootNamespace {
		for _, root := range metamodel.RootShortNames {
			if root == short {
				return short
			}
		}
	}

	return fqn
}

// FromAst discards every currently loaded namespace (other than the
// bootstrap root) and installs ast in its place, atomically: if any
// namespace in ast fails to validate, the manager is left exactly as it
// was before the call.
func (m *ModelManager) FromAst(ast *metamodel.Models) error {
	m.mu.Lock()
	previous := m.files
	m.mu.Unlock()

	m.ClearModelFiles()

	if err := m.AddAllModels(ast.Models, AddOptions{}); err != nil {
		m.mu.Lock()
		m.files = previous
		m.mu.Unlock()

		return err
	}

	return nil
}
