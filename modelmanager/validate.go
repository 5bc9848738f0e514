package modelmanager

import (
	"log/slog"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
)

// validateFiles validates every declaration in fresh against the full
// candidate namespace set files (which already contains fresh). Only
// fresh's declarations are mutated (their super-type and property types
// are resolved from short names to FQNs in place) -- previously
// committed declarations are assumed already valid and are never
// revisited, which is what makes repeated Add calls cheap and keeps
// resolution idempotent.
func validateFiles(files map[string]*modelfile.ModelFile, fresh []*modelfile.ModelFile, logger *slog.Logger) error {
	resolver := snapshotResolver{files: files}

	for _, mf := range fresh {
		if err := mf.ValidateImports(resolver); err != nil {
			return err
		}
	}

	for _, mf := range fresh {
		for _, d := range mf.Declarations() {
			if err := validateDeclaration(files, mf, d, resolver); err != nil {
				return err
			}

			logger.Debug("validated declaration", slog.String("fqn", d.FQN()))
		}
	}

	return nil
}

func lookupType(files map[string]*modelfile.ModelFile, fqn string) (*declaration.ClassDeclaration, bool) {
	ns, name := metamodel.SplitFQN(fqn)

	mf, ok := files[ns]
	if !ok {
		return nil, false
	}

	return mf.GetLocalType(name)
}

func validateDeclaration(
	files map[string]*modelfile.ModelFile,
	mf *modelfile.ModelFile,
	d *declaration.ClassDeclaration,
	resolver modelfile.Resolver,
) error {
	if err := resolveSuperType(files, mf, d, resolver); err != nil {
		return err
	}

	if err := resolveIdentifier(files, d); err != nil {
		return err
	}

	if err := resolvePropertyTypes(files, mf, d, resolver); err != nil {
		return err
	}

	return checkPropertyNameUniqueness(files, d)
}

// resolveSuperType resolves d's raw super-type reference (a short name
// as written in source, or already an FQN) to a canonical FQN, checks it
// exists, checks kind compatibility, and rejects a cycle.
func resolveSuperType(
	files map[string]*modelfile.ModelFile,
	mf *modelfile.ModelFile,
	d *declaration.ClassDeclaration,
	resolver modelfile.Resolver,
) error {
	if d.SuperTypeFQN == "" {
		return nil
	}

	fqn, err := mf.Resolve(d.SuperTypeFQN, resolver)
	if err != nil {
		ns, short := metamodel.SplitFQN(d.SuperTypeFQN)
		if ns != "" {
			if superFiles, ok := files[ns]; ok && superFiles.HasLocalType(short) {
				fqn = d.SuperTypeFQN
			} else {
				return cerror.New(cerror.ErrIllegalModel,
					"%s: cannot resolve super-type %q: %v", d.FQN(), d.SuperTypeFQN, err)
			}
		} else {
			return cerror.New(cerror.ErrIllegalModel,
				"%s: cannot resolve super-type %q: %v", d.FQN(), d.SuperTypeFQN, err)
		}
	}

	if fqn == d.FQN() {
		return cerror.New(cerror.ErrIllegalModel, "declaration cannot extend itself").WithFQN(d.FQN())
	}

	super, ok := lookupType(files, fqn)
	if !ok {
		return cerror.New(cerror.ErrIllegalModel, "super-type %q not found", fqn).WithFQN(d.FQN())
	}

	if super.Kind != d.Kind {
		return cerror.New(cerror.ErrIllegalModel,
			"declaration of kind %s cannot extend %q of kind %s", d.Kind, fqn, super.Kind).WithFQN(d.FQN())
	}

	d.SuperTypeFQN = fqn

	// Walk the ancestor chain to detect a cycle introduced by this edge.
	seen := map[string]bool{d.FQN(): true}
	cur := super

	for {
		if seen[cur.FQN()] {
			return cerror.New(cerror.ErrIllegalModel, "super-type chain contains a cycle").WithFQN(d.FQN())
		}

		seen[cur.FQN()] = true

		if cur.SuperTypeFQN == "" {
			break
		}

		next, ok := lookupType(files, cur.SuperTypeFQN)
		if !ok {
			break
		}

		cur = next
	}

	return nil
}

// resolveIdentifier implements spec §4.3 step 2: determine d's
// identifier field, explicit or inherited, or fail if a non-abstract
// identifiable declaration has none.
func resolveIdentifier(files map[string]*modelfile.ModelFile, d *declaration.ClassDeclaration) error {
	if d.HasOwnIdentifier() {
		field, ok := d.GetOwnProperty(d.IdentifierField)
		if !ok || field.Kind != declaration.PropertyField || field.Type != metamodel.PrimitiveString || field.IsArray {
			return cerror.New(cerror.ErrIllegalModel,
				"identifier field %q must be a locally declared non-array String field", d.IdentifierField).WithFQN(d.FQN())
		}

		for _, ancestor := range superChain(files, d) {
			if ancestor.HasOwnIdentifier() {
				return cerror.New(cerror.ErrIllegalModel,
					"cannot redeclare identifier field; ancestor %q already declares %q",
					ancestor.FQN(), ancestor.IdentifierField).WithFQN(d.FQN())
			}
		}

		return nil
	}

	for _, ancestor := range superChain(files, d) {
		if ancestor.HasOwnIdentifier() {
			d.IdentifierField = ancestor.IdentifierField

			return nil
		}
	}

	if d.IsIdentifiable() && !d.IsAbstract {
		return cerror.New(cerror.ErrIllegalModel,
			"non-abstract %s declaration has no identifier field", d.Kind).WithFQN(d.FQN())
	}

	return nil
}

// superChain returns d's ancestors, nearest first, without d itself.
func superChain(files map[string]*modelfile.ModelFile, d *declaration.ClassDeclaration) []*declaration.ClassDeclaration {
	var chain []*declaration.ClassDeclaration

	seen := map[string]bool{d.FQN(): true}
	cur := d

	for cur.SuperTypeFQN != "" {
		next, ok := lookupType(files, cur.SuperTypeFQN)
		if !ok || seen[next.FQN()] {
			break
		}

		seen[next.FQN()] = true
		chain = append(chain, next)
		cur = next
	}

	return chain
}

// resolvePropertyTypes resolves each property's declared type to a
// primitive name or canonical FQN, and checks that relationship targets
// resolve to an identifiable declaration.
func resolvePropertyTypes(
	files map[string]*modelfile.ModelFile,
	mf *modelfile.ModelFile,
	d *declaration.ClassDeclaration,
	resolver modelfile.Resolver,
) error {
	for _, p := range d.Properties {
		if p.Kind == declaration.PropertyEnumValue {
			continue
		}

		if metamodel.IsPrimitiveType(p.Type) {
			if p.Kind == declaration.PropertyRelationship {
				return cerror.New(cerror.ErrIllegalModel,
					"relationship %q cannot target a primitive type", p.Name).WithFQN(d.FQN())
			}

			continue
		}

		fqn, err := mf.Resolve(p.Type, resolver)
		if err != nil {
			return cerror.New(cerror.ErrIllegalModel,
				"property %q: %v", p.Name, err).WithFQN(d.FQN())
		}

		target, ok := lookupType(files, fqn)
		if !ok {
			return cerror.New(cerror.ErrIllegalModel, "property %q: type %q not found", p.Name, fqn).WithFQN(d.FQN())
		}

		if p.Kind == declaration.PropertyRelationship && !target.IsIdentifiable() {
			return cerror.New(cerror.ErrIllegalModel,
				"relationship %q must target an identifiable declaration, %q is not", p.Name, fqn).WithFQN(d.FQN())
		}

		p.Type = fqn
	}

	return nil
}

// checkPropertyNameUniqueness verifies d's own property names do not
// collide with an inherited name (spec §3 invariant: unique within the
// inherited set, case-sensitive).
func checkPropertyNameUniqueness(files map[string]*modelfile.ModelFile, d *declaration.ClassDeclaration) error {
	inherited := make(map[string]bool)

	for _, ancestor := range superChain(files, d) {
		for _, p := range ancestor.Properties {
			inherited[p.Name] = true
		}
	}

	for _, p := range d.Properties {
		if inherited[p.Name] {
			return cerror.New(cerror.ErrIllegalModel,
				"property %q is already declared on an ancestor", p.Name).WithFQN(d.FQN())
		}
	}

	return nil
}
