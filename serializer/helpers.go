package serializer

import (
	"math"
	"time"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/metamodel"
)

const dateTimeLayout = time.RFC3339

func (s *Serializer) location(offsetHours float64) *time.Location {
	return time.FixedZone("", int(offsetHours*3600))
}

func (s *Serializer) formatDateTime(t time.Time, offsetHours float64) string {
	return t.In(s.location(offsetHours)).Format(dateTimeLayout)
}

func (s *Serializer) parseDateTime(raw string) (time.Time, error) {
	t, err := time.Parse(dateTimeLayout, raw)
	if err != nil {
		return time.Time{}, cerror.New(cerror.ErrModelViolation, "malformed DateTime value %q: %v", raw, err)
	}

	return t, nil
}

// checkFiniteNumber rejects NaN/+Inf/-Inf per spec §6.
func checkFiniteNumber(fqn, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return cerror.New(cerror.ErrModelViolation, "property %q has a non-finite numeric value", field).WithFQN(fqn)
	}

	return nil
}

// checkValidator re-checks a scalar value against p's validator, if any,
// at instance (de)serialization time, reusing the same regex/range logic
// the model-load validator already confirmed was well-formed.
func checkValidator(fqn string, p *declaration.Property, value any) error {
	if p.Validator == nil {
		return nil
	}

	switch p.Validator.Kind {
	case declaration.ValidatorStringRegex:
		str, ok := value.(string)
		if !ok {
			return nil
		}

		re, err := declaration.CompileValidator(p.Validator)
		if err != nil {
			return cerror.New(cerror.ErrModelViolation, "property %q: %v", p.Name, err).WithFQN(fqn)
		}

		if !re.MatchString(str) {
			return cerror.New(cerror.ErrModelViolation,
				"property %q value %q does not match its validator", p.Name, str).WithFQN(fqn)
		}
	case declaration.ValidatorRange:
		num, ok := asFloat(value)
		if !ok {
			return nil
		}

		if p.Validator.Min != nil && num < *p.Validator.Min {
			return cerror.New(cerror.ErrModelViolation,
				"property %q value %v is below its minimum %v", p.Name, num, *p.Validator.Min).WithFQN(fqn)
		}

		if p.Validator.Max != nil && num > *p.Validator.Max {
			return cerror.New(cerror.ErrModelViolation,
				"property %q value %v is above its maximum %v", p.Name, num, *p.Validator.Max).WithFQN(fqn)
		}
	}

	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// isIdentifierAlias reports whether p is the literal "$identifier"
// placeholder property only the bootstrap root declarations carry --
// its value is always emitted/read via the canonical alias step, never
// through the ordinary per-property loop.
func isIdentifierAlias(p *declaration.Property) bool {
	return p.Name == "$identifier"
}

// knownPropertyNames returns the set of property names visible on decl
// (own + inherited), excluding the "$identifier" alias placeholder.
func knownPropertyNames(props []*declaration.Property) map[string]bool {
	known := make(map[string]bool, len(props))

	for _, p := range props {
		if isIdentifierAlias(p) {
			continue
		}

		known[p.Name] = true
	}

	return known
}

func isPrimitiveField(p *declaration.Property) bool {
	return metamodel.IsPrimitiveType(p.Type)
}
