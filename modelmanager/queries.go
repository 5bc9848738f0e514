package modelmanager

import (
	"sort"
	"strings"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
)

// GetType returns the declaration named fqn.
func (m *ModelManager) GetType(fqn string) (*declaration.ClassDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := lookupType(m.files, fqn)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", fqn)
	}

	return d, nil
}

// ResolveType resolves shortName as written from within contextNamespace
// to its canonical FQN, per spec §4.2.
func (m *ModelManager) ResolveType(contextNamespace, shortName string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mf, ok := m.files[contextNamespace]
	if !ok {
		return "", cerror.New(cerror.ErrTypeNotFound, "namespace %q is not loaded", contextNamespace)
	}

	return mf.Resolve(shortName, snapshotResolver{files: m.files})
}

// DerivesFrom reports whether a's super-type chain contains b, or a == b.
func (m *ModelManager) DerivesFrom(a, b string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if a == b {
		return true
	}

	d, ok := lookupType(m.files, a)
	if !ok {
		return false
	}

	for _, ancestor := range superChain(m.files, d) {
		if ancestor.FQN() == b {
			return true
		}
	}

	return false
}

// GetProperties returns every property visible on fqn, ancestors first
// (root-most ancestor to most-derived), then fqn's own properties.
func (m *ModelManager) GetProperties(fqn string) ([]*declaration.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := lookupType(m.files, fqn)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", fqn)
	}

	chain := superChain(m.files, d)

	var props []*declaration.Property

	for i := len(chain) - 1; i >= 0; i-- {
		props = append(props, chain[i].Properties...)
	}

	props = append(props, d.Properties...)

	return props, nil
}

// GetProperty looks up a property named name, visible (own or inherited)
// on fqn.
func (m *ModelManager) GetProperty(fqn, name string) (*declaration.Property, bool) {
	props, err := m.GetProperties(fqn)
	if err != nil {
		return nil, false
	}

	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// GetNestedProperty descends a dotted path of property names starting at
// fqn, following relationship/field types declared against another
// declaration across as many segments as the path names, per spec §4.4.
func (m *ModelManager) GetNestedProperty(fqn, path string) (*declaration.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cur, ok := lookupType(m.files, fqn)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", fqn)
	}

	segments := strings.Split(path, ".")

	for i, seg := range segments {
		prop, ok := m.findVisibleProperty(cur, seg)
		if !ok {
			return nil, cerror.New(cerror.ErrIllegalModel, "no such property %q", seg).WithFQN(cur.FQN())
		}

		if i == len(segments)-1 {
			return prop, nil
		}

		if metamodel.IsPrimitiveType(prop.Type) || prop.Kind == declaration.PropertyEnumValue {
			return nil, cerror.New(cerror.ErrIllegalModel,
				"cannot descend into primitive property %q", seg).WithFQN(cur.FQN())
		}

		next, ok := lookupType(m.files, prop.Type)
		if !ok {
			return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", prop.Type)
		}

		cur = next
	}

	return nil, cerror.New(cerror.ErrIllegalModel, "empty property path")
}

func (m *ModelManager) findVisibleProperty(d *declaration.ClassDeclaration, name string) (*declaration.Property, bool) {
	if p, ok := d.GetOwnProperty(name); ok {
		return p, true
	}

	for _, ancestor := range superChain(m.files, d) {
		if p, ok := ancestor.GetOwnProperty(name); ok {
			return p, true
		}
	}

	return nil, false
}

// GetAllSuperTypeDeclarations returns fqn's ancestors, nearest first.
func (m *ModelManager) GetAllSuperTypeDeclarations(fqn string) ([]*declaration.ClassDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := lookupType(m.files, fqn)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", fqn)
	}

	return superChain(m.files, d), nil
}

// GetAssignableClassDeclarations returns every non-abstract declaration
// assignable to fqn: fqn itself if concrete, plus every non-abstract
// declaration whose super-type chain includes fqn. Results are sorted by
// FQN so callers needing a stable pick (instance generation's abstract
// placeholder, spec §4.5) can deterministically choose the first.
func (m *ModelManager) GetAssignableClassDeclarations(fqn string) ([]*declaration.ClassDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target, ok := lookupType(m.files, fqn)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "type %q not found", fqn)
	}

	var out []*declaration.ClassDeclaration

	if !target.IsAbstract {
		out = append(out, target)
	}

	for _, mf := range m.files {
		for _, d := range mf.Declarations() {
			if d.IsAbstract || d.FQN() == fqn {
				continue
			}

			for _, ancestor := range superChain(m.files, d) {
				if ancestor.FQN() == fqn {
					out = append(out, d)

					break
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FQN() < out[j].FQN() })

	return out, nil
}
