package instancegen

import (
	"time"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/metamodel"
)

// emptyGenerator is the "empty" [ValueGenerator] strategy: the zero
// value for each primitive type, and the first enum value.
type emptyGenerator struct{}

// Empty is the [ValueGenerator] strategy that fills every primitive
// leaf with its zero value.
var Empty ValueGenerator = emptyGenerator{}

func (emptyGenerator) Primitive(primitiveType string) (any, error) {
	switch primitiveType {
	case metamodel.PrimitiveString:
		return "", nil
	case metamodel.PrimitiveBoolean:
		return false, nil
	case metamodel.PrimitiveDateTime:
		return time.Time{}, nil
	case metamodel.PrimitiveDouble, metamodel.PrimitiveLong, metamodel.PrimitiveInteger:
		return float64(0), nil
	default:
		return nil, cerror.New(cerror.ErrIllegalModel, "unknown primitive type %q", primitiveType)
	}
}

func (emptyGenerator) EnumValue(values []string) (string, error) {
	if len(values) == 0 {
		return "", cerror.New(cerror.ErrModelViolation, "enum declaration has no values")
	}

	return values[0], nil
}

// sampleGenerator is the "sample" [ValueGenerator] strategy: plausible,
// human-readable placeholder values rather than zero values.
type sampleGenerator struct {
	now func() time.Time
}

// Sample is the [ValueGenerator] strategy that fills primitive leaves
// with representative placeholder values instead of zero values.
var Sample ValueGenerator = sampleGenerator{now: time.Now}

func (s sampleGenerator) Primitive(primitiveType string) (any, error) {
	switch primitiveType {
	case metamodel.PrimitiveString:
		return "Sample string value", nil
	case metamodel.PrimitiveBoolean:
		return true, nil
	case metamodel.PrimitiveDateTime:
		return s.now(), nil
	case metamodel.PrimitiveDouble:
		return 3.14, nil
	case metamodel.PrimitiveLong:
		return float64(32202), nil
	case metamodel.PrimitiveInteger:
		return float64(32202), nil
	default:
		return nil, cerror.New(cerror.ErrIllegalModel, "unknown primitive type %q", primitiveType)
	}
}

func (sampleGenerator) EnumValue(values []string) (string, error) {
	if len(values) == 0 {
		return "", cerror.New(cerror.ErrModelViolation, "enum declaration has no values")
	}

	return values[0], nil
}
