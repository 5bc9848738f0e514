package serializer

import (
	"time"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/instance"
	"github.com/concerto-project/concerto-go/metamodel"
)

// ToJSON produces the canonical JSON object for inst (spec §4.6).
func (s *Serializer) ToJSON(inst *instance.Instance, overrides ...Option) (map[string]any, error) {
	o := s.resolveOptions(overrides)

	return s.toJSON(inst, o)
}

func (s *Serializer) toJSON(inst *instance.Instance, o Options) (map[string]any, error) {
	fqn := inst.FQN()

	decl, err := s.manager.GetType(fqn)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"$class": fqn}

	if decl.IsIdentifiable() {
		id, hasID := inst.Identifier()
		if !hasID {
			if o.Validate {
				return nil, cerror.New(cerror.ErrModelViolation, "identifiable instance has no identifier").WithFQN(fqn)
			}
		} else {
			out["$identifier"] = id
		}
	}

	if decl.Kind == declaration.KindTransaction || decl.Kind == declaration.KindEvent {
		ts, hasTS := inst.Timestamp()
		if !hasTS {
			if o.Validate {
				return nil, cerror.New(cerror.ErrModelViolation, "transaction/event instance has no $timestamp").WithFQN(fqn)
			}
		} else {
			out["$timestamp"] = s.formatDateTime(ts, o.UTCOffsetHours)
		}
	}

	props, err := s.manager.GetProperties(fqn)
	if err != nil {
		return nil, err
	}

	if o.Validate {
		known := knownPropertyNames(props)

		for _, name := range inst.PropertyNames() {
			if !known[name] {
				return nil, cerror.New(cerror.ErrModelViolation, "unexpected property %q", name).WithFQN(fqn)
			}
		}
	}

	for _, p := range props {
		if isIdentifierAlias(p) {
			continue
		}

		if err := s.emitProperty(out, fqn, decl, inst, p, o); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *Serializer) emitProperty(
	out map[string]any,
	fqn string,
	decl *declaration.ClassDeclaration,
	inst *instance.Instance,
	p *declaration.Property,
	o Options,
) error {
	var (
		value any
		has   bool
	)

	if p.Name == decl.IdentifierField {
		if id, ok := inst.Identifier(); ok {
			value, has = id, true
		}
	} else {
		value, has = inst.Get(p.Name)
	}

	if !has {
		if !p.IsOptional && o.Validate {
			return cerror.New(cerror.ErrModelViolation, "missing required property %q", p.Name).WithFQN(fqn)
		}

		if p.IsOptional && o.IncludeOptionalFields {
			out[p.Name] = nil
		}

		return nil
	}

	emitted, err := s.emitValue(fqn, p, value, o)
	if err != nil {
		return err
	}

	out[p.Name] = emitted

	return nil
}

func (s *Serializer) emitValue(fqn string, p *declaration.Property, value any, o Options) (any, error) {
	if p.IsArray {
		items, ok := value.([]any)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q is an array but holds %T", p.Name, value).WithFQN(fqn)
		}

		out := make([]any, 0, len(items))

		for _, item := range items {
			v, err := s.emitScalar(fqn, p, item, o)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil
	}

	return s.emitScalar(fqn, p, value, o)
}

func (s *Serializer) emitScalar(fqn string, p *declaration.Property, value any, o Options) (any, error) {
	if p.Kind == declaration.PropertyRelationship {
		return s.emitRelationship(fqn, p, value, o)
	}

	if isPrimitiveField(p) {
		return s.emitPrimitive(fqn, p, value, o)
	}

	nested, ok := value.(*instance.Instance)
	if !ok {
		return nil, cerror.New(cerror.ErrModelViolation,
			"property %q expects a nested instance, got %T", p.Name, value).WithFQN(fqn)
	}

	return s.toJSON(nested, o)
}

func (s *Serializer) emitRelationship(fqn string, p *declaration.Property, value any, o Options) (any, error) {
	switch v := value.(type) {
	case *instance.Relationship:
		return v.ToURI(), nil
	case *instance.Instance:
		if !o.PermitResourcesForRelationships {
			return nil, cerror.New(cerror.ErrModelViolation,
				"relationship property %q received an embedded resource", p.Name).WithFQN(fqn)
		}

		if o.ConvertResourcesToRelationships {
			id, ok := v.Identifier()
			if !ok {
				return nil, cerror.New(cerror.ErrModelViolation,
					"cannot convert embedded resource for %q: it has no identifier", p.Name).WithFQN(fqn)
			}

			return instance.NewRelationship(v.FQN(), id).ToURI(), nil
		}

		return s.toJSON(v, o)
	default:
		return nil, cerror.New(cerror.ErrModelViolation,
			"relationship property %q holds unsupported value type %T", p.Name, value).WithFQN(fqn)
	}
}

func (s *Serializer) emitPrimitive(fqn string, p *declaration.Property, value any, o Options) (any, error) {
	if err := checkValidator(fqn, p, value); err != nil {
		return nil, err
	}

	switch p.Type {
	case metamodel.PrimitiveDateTime:
		t, ok := value.(time.Time)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a DateTime, got %T", p.Name, value).WithFQN(fqn)
		}

		return s.formatDateTime(t, o.UTCOffsetHours), nil
	case metamodel.PrimitiveDouble, metamodel.PrimitiveLong, metamodel.PrimitiveInteger:
		f, ok := asFloat(value)
		if !ok {
			return nil, cerror.New(cerror.ErrModelViolation, "property %q expects a number, got %T", p.Name, value).WithFQN(fqn)
		}

		if err := checkFiniteNumber(fqn, p.Name, f); err != nil {
			return nil, err
		}

		return value, nil
	default:
		return value, nil
	}
}
