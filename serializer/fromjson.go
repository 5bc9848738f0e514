package serializer

import (
	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/instance"
	"github.com/concerto-project/concerto-go/metamodel"
)

// FromJSON reads $class from data and reconstructs the validated
// instance it describes (spec §4.6). expectedFQN, if non-empty, asserts
// the dynamic $class is assignable to it (honoring polymorphism) before
// proceeding; pass "" at the top level, where there is no static type to
// check against.
func (s *Serializer) FromJSON(data map[string]any, expectedFQN string, overrides ...Option) (*instance.Instance, error) {
	o := s.resolveOptions(overrides)

	return s.fromJSON(data, expectedFQN, o)
}

func (s *Serializer) fromJSON(data map[string]any, expectedFQN string, o Options) (*instance.Instance, error) {
	rawClass, ok := data["$class"]
	if !ok {
		return nil, cerror.New(cerror.ErrModelViolation, "object has no $class")
	}

	fqn, ok := rawClass.(string)
	if !ok || fqn == "" {
		return nil, cerror.New(cerror.ErrModelViolation, "$class must be a non-empty string")
	}

	decl, err := s.manager.GetType(fqn)
	if err != nil {
		return nil, err
	}

	if expectedFQN != "" && !s.manager.DerivesFrom(fqn, expectedFQN) {
		return nil, cerror.New(cerror.ErrModelViolation,
			"$class %q is not assignable to expected type %q", fqn, expectedFQN)
	}

	if decl.IsAbstract {
		return nil, cerror.New(cerror.ErrModelViolation, "cannot instantiate abstract declaration").WithFQN(fqn)
	}

	ns, shortName := metamodel.SplitFQN(fqn)

	identifier := ""
	if rawID, ok := data["$identifier"]; ok {
		if id, ok := rawID.(string); ok {
			identifier = id
		}
	}

	inst, err := s.factory.Create(ns, shortName, factory.Options{Identifier: identifier, SuppressTimestamp: true})
	if err != nil {
		return nil, err
	}

	if decl.IsIdentifiable() {
		if _, hasID := inst.Identifier(); !hasID && o.Validate {
			return nil, cerror.New(cerror.ErrModelViolation, "identifiable object has no $identifier").WithFQN(fqn)
		}
	}

	if decl.Kind == declaration.KindTransaction || decl.Kind == declaration.KindEvent {
		if err := s.readTimestamp(data, fqn, inst, o); err != nil {
			return nil, err
		}
	}

	props, err := s.manager.GetProperties(fqn)
	if err != nil {
		return nil, err
	}

	if o.Validate {
		known := knownPropertyNames(props)
		known["$class"] = true
		known["$identifier"] = true
		known["$timestamp"] = true

		for key, value := range data {
			// A key whose value is nil carries no data and is tolerated.
			if value != nil && !known[key] {
				return nil, cerror.New(cerror.ErrModelViolation, "unexpected property %q", key).WithFQN(fqn)
			}
		}
	}

	for _, p := range props {
		if isIdentifierAlias(p) || p.Name == decl.IdentifierField {
			continue
		}

		if err := s.readProperty(data, fqn, inst, p, o); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func (s *Serializer) readTimestamp(data map[string]any, fqn string, inst *instance.Instance, o Options) error {
	raw, ok := data["$timestamp"]
	if !ok {
		if o.Validate {
			return cerror.New(cerror.ErrModelViolation, "transaction/event object has no $timestamp").WithFQN(fqn)
		}

		return nil
	}

	str, ok := raw.(string)
	if !ok {
		return cerror.New(cerror.ErrModelViolation, "$timestamp must be a string").WithFQN(fqn)
	}

	t, err := s.parseDateTime(str)
	if err != nil {
		return err
	}

	inst.SetTimestamp(t)

	return nil
}

func (s *Serializer) readProperty(data map[string]any, fqn string, inst *instance.Instance, p *declaration.Property, o Options) error {
	raw, present := data[p.Name]
	if !present || raw == nil {
		if !p.IsOptional && o.Validate {
			return cerror.New(cerror.ErrModelViolation, "missing required property %q", p.Name).WithFQN(fqn)
		}

		return nil
	}

	value, err := s.readValue(fqn, p, raw, o)
	if err != nil {
		return err
	}

	inst.Set(p.Name, value)

	return nil
}

func (s *Serializer) readValue(fqn string, p *declaration.Property, raw any, o Options) (any, error) {
	if p.IsArray {
		items, ok := raw.([]any)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects an array", p.Name).WithFQN(fqn)
		}

		out := make([]any, 0, len(items))

		for _, item := range items {
			v, err := s.readScalar(fqn, p, item, o)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil
	}

	return s.readScalar(fqn, p, raw, o)
}

func (s *Serializer) readScalar(fqn string, p *declaration.Property, raw any, o Options) (any, error) {
	if p.Kind == declaration.PropertyRelationship {
		return s.readRelationship(fqn, p, raw)
	}

	if isPrimitiveField(p) {
		return s.readPrimitive(fqn, p, raw)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, cerror.New(cerror.ErrModelViolation, "property %q expects an object", p.Name).WithFQN(fqn)
	}

	return s.fromJSON(obj, p.Type, o)
}

func (s *Serializer) readRelationship(fqn string, p *declaration.Property, raw any) (any, error) {
	uri, ok := raw.(string)
	if !ok {
		return nil, cerror.New(cerror.ErrModelViolation, "relationship property %q expects a URI string", p.Name).WithFQN(fqn)
	}

	return instance.ParseURI(uri, p.Type)
}

func (s *Serializer) readPrimitive(fqn string, p *declaration.Property, raw any) (any, error) {
	switch p.Type {
	case metamodel.PrimitiveDateTime:
		str, ok := raw.(string)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a DateTime string", p.Name).WithFQN(fqn)
		}

		t, err := s.parseDateTime(str)
		if err != nil {
			return nil, err
		}

		if err := checkValidator(fqn, p, str); err != nil {
			return nil, err
		}

		return t, nil
	case metamodel.PrimitiveDouble, metamodel.PrimitiveLong, metamodel.PrimitiveInteger:
		f, ok := asFloat(raw)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a number", p.Name).WithFQN(fqn)
		}

		if err := checkFiniteNumber(fqn, p.Name, f); err != nil {
			return nil, err
		}

		if err := checkValidator(fqn, p, f); err != nil {
			return nil, err
		}

		return raw, nil
	case metamodel.PrimitiveBoolean:
		if _, ok := raw.(bool); !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a boolean", p.Name).WithFQN(fqn)
		}

		return raw, nil
	default: // String, and enum-typed fields whose value is the enum member name
		str, ok := raw.(string)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a string", p.Name).WithFQN(fqn)
		}

		if err := checkValidator(fqn, p, str); err != nil {
			return nil, err
		}

		return str, nil
	}
}
