// Package jsonschemagen is a concrete external code generator (spec §2
// item 10, §4.8): it implements [visitor.Visitor] over a declaration
// graph and renders each [declaration.ClassDeclaration] to a
// [jsonschema.Schema], the same way the teacher's magicschema.Generator
// renders a YAML document to one. Primitive types, arrays, object
// references, relationships and enums each get a fixed mapping (see
// primitiveSchema); `required` mirrors
// [github.com/concerto-project/concerto-go/serializer]'s validate=true
// semantics; `@title`/`@description`/`@deprecated` decorators merge into
// the schema the same way the teacher's annotators merge a `@schema`
// comment block.
package jsonschemagen

import (
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/collab"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelmanager"
	"github.com/concerto-project/concerto-go/visitor"
)

// relationshipPattern matches the canonical relationship URI grammar
// (spec §6): "resource:<fqn>#<percent-encoded identifier>".
const relationshipPattern = `^resource:[A-Za-z_][A-Za-z0-9_.]*#.+$`

// Generator walks a [modelmanager.ModelManager]'s declaration graph and
// renders it to JSON Schema. It implements [visitor.Visitor] so it can
// be driven by the same single-dispatch contract the [instancegen] and
// serializer packages use, though callers normally use the typed
// [Generator.Generate]/[Generator.GenerateNamespace] entry points
// directly.
type Generator struct {
	manager *modelmanager.ModelManager
	logger  *slog.Logger
}

// New creates a Generator over manager. A nil logger defaults to
// [slog.Default].
func New(manager *modelmanager.ModelManager, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{manager: manager, logger: logger}
}

// Generate renders the declaration named fqn to a standalone JSON
// Schema document.
func (g *Generator) Generate(fqn string) (*jsonschema.Schema, error) {
	d, err := g.manager.GetType(fqn)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("generating json schema", slog.String("fqn", fqn))

	return g.declarationSchema(d)
}

// GenerateNamespace renders every declaration in namespace into one
// document whose root carries only $schema and Defs: each declaration
// is placed under Defs by its FQN, so `$ref`s between sibling
// declarations resolve within a single document. No declaration is
// inlined at the root.
func (g *Generator) GenerateNamespace(namespace string) (*jsonschema.Schema, error) {
	mf, ok := g.manager.GetModelFile(namespace)
	if !ok {
		return nil, cerror.New(cerror.ErrTypeNotFound, "namespace %q not loaded", namespace)
	}

	root := &jsonschema.Schema{
		Schema: jsonschemaDialect,
		Defs:   make(map[string]*jsonschema.Schema),
	}

	for _, d := range mf.Declarations() {
		s, err := g.declarationSchema(d)
		if err != nil {
			return nil, err
		}

		root.Defs[d.FQN()] = s
	}

	return root, nil
}

// WriteNamespace renders the single given namespace into one file,
// "<namespace>.schema.json", through w -- the "one file per namespace"
// mode spec §6 describes for code generators. The CLI does not call it.
func (g *Generator) WriteNamespace(w collab.FileWriter, namespace string) error {
	schema, err := g.GenerateNamespace(namespace)
	if err != nil {
		return err
	}

	if err := w.OpenFile(namespace + ".schema.json"); err != nil {
		return fmt.Errorf("%w: %w", cerror.ErrIO, err)
	}

	for _, fqn := range sortedKeys(schema.Defs) {
		def := schema.Defs[fqn]

		if err := w.WriteLine(0, fmt.Sprintf("// %s", fqn)); err != nil {
			return fmt.Errorf("%w: %w", cerror.ErrIO, err)
		}

		if err := writeSchemaLines(w, def); err != nil {
			return err
		}
	}

	if err := w.CloseFile(); err != nil {
		return fmt.Errorf("%w: %w", cerror.ErrIO, err)
	}

	return nil
}

// Visit implements [visitor.Visitor]. node is expected to be a
// [*declaration.ClassDeclaration]; parameters is unused.
func (g *Generator) Visit(node any, _ any) (any, error) {
	d, ok := visitor.IsClassDeclaration(node)
	if !ok {
		return nil, cerror.New(cerror.ErrIllegalModel, "jsonschemagen: unsupported node type %T", node)
	}

	return g.declarationSchema(d)
}

func (g *Generator) declarationSchema(d *declaration.ClassDeclaration) (*jsonschema.Schema, error) {
	if d.Kind == metamodel.KindEnum {
		return g.enumSchema(d), nil
	}

	props, err := g.manager.GetProperties(d.FQN())
	if err != nil {
		return nil, err
	}

	schema := &jsonschema.Schema{
		ID:         "urn:concerto:" + d.FQN(),
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}

	var required []string

	for _, p := range props {
		if p.Name == "$identifier" {
			continue
		}

		ps, err := g.propertySchema(p)
		if err != nil {
			return nil, err
		}

		schema.Properties[p.Name] = ps

		if !p.IsOptional {
			required = append(required, p.Name)
		}
	}

	schema.Required = required

	applyDecorators(schema, d.Decorators)

	return schema, nil
}

func (g *Generator) enumSchema(d *declaration.ClassDeclaration) *jsonschema.Schema {
	values := make([]any, 0, len(d.Properties))
	for _, p := range d.Properties {
		values = append(values, p.Name)
	}

	schema := &jsonschema.Schema{
		ID:   "urn:concerto:" + d.FQN(),
		Type: "string",
		Enum: values,
	}

	applyDecorators(schema, d.Decorators)

	return schema
}

func (g *Generator) propertySchema(p *declaration.Property) (*jsonschema.Schema, error) {
	var (
		base *jsonschema.Schema
		err  error
	)

	switch {
	case p.IsRelationship():
		base = &jsonschema.Schema{Type: "string", Pattern: relationshipPattern}
	case metamodel.IsPrimitiveType(p.Type):
		base = primitiveSchema(p.Type)
	default:
		base, err = g.refSchema(p.Type)
		if err != nil {
			return nil, err
		}
	}

	if p.Validator != nil {
		applyValidator(base, p.Validator)
	}

	if p.IsArray {
		base = &jsonschema.Schema{Type: "array", Items: base}
	}

	applyDecorators(base, p.Decorators)

	return base, nil
}

func (g *Generator) refSchema(fqn string) (*jsonschema.Schema, error) {
	target, err := g.manager.GetType(fqn)
	if err != nil {
		return nil, err
	}

	if target.Kind == metamodel.KindEnum {
		return g.enumSchema(target), nil
	}

	return &jsonschema.Schema{Ref: "urn:concerto:" + fqn}, nil
}

func primitiveSchema(primitive string) *jsonschema.Schema {
	switch primitive {
	case metamodel.PrimitiveString:
		return &jsonschema.Schema{Type: "string"}
	case metamodel.PrimitiveBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case metamodel.PrimitiveDateTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case metamodel.PrimitiveDouble:
		return &jsonschema.Schema{Type: "number"}
	case metamodel.PrimitiveLong, metamodel.PrimitiveInteger:
		return &jsonschema.Schema{Type: "integer"}
	default:
		return &jsonschema.Schema{}
	}
}

func applyValidator(schema *jsonschema.Schema, v *declaration.Validator) {
	switch v.Kind {
	case declaration.ValidatorStringRegex:
		schema.Pattern = v.Pattern
	case declaration.ValidatorRange:
		if v.Min != nil {
			schema.Minimum = v.Min
		}

		if v.Max != nil {
			schema.Maximum = v.Max
		}
	}
}

// applyDecorators merges `@title(...)`, `@description(...)` and
// `@deprecated` decorators into schema, first decorator wins per field,
// mirroring magicschema's mergeAnnotations priority-merge shape adapted
// to a decorator list instead of YAML comments.
func applyDecorators(schema *jsonschema.Schema, decorators []*declaration.Decorator) {
	for _, dec := range decorators {
		switch dec.Name {
		case "title":
			if schema.Title == "" && len(dec.Arguments) > 0 {
				schema.Title = decoratorArgString(dec.Arguments[0])
			}
		case "description":
			if schema.Description == "" && len(dec.Arguments) > 0 {
				schema.Description = decoratorArgString(dec.Arguments[0])
			}
		case "deprecated":
			schema.Deprecated = true
		}
	}
}

func decoratorArgString(arg metamodel.DecoratorArg) string {
	switch arg.Kind {
	case metamodel.ArgString:
		return arg.String
	case metamodel.ArgIdentifier:
		return arg.Identifer
	case metamodel.ArgTypeRef:
		return arg.TypeRef
	default:
		return ""
	}
}

func sortedKeys(m map[string]*jsonschema.Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sortStrings(keys)

	return keys
}
