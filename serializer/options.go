package serializer

import (
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/modelmanager"
)

// Options parameterizes a single ToJSON/FromJSON call (spec §4.6).
type Options struct {
	// Validate enables full validation: missing required properties and
	// unexpected properties fail rather than being silently tolerated.
	Validate bool

	// ConvertResourcesToRelationships converts an embedded Resource
	// value supplied for a relationship field into a relationship URI
	// computed from the resource's own identifier, instead of failing.
	ConvertResourcesToRelationships bool

	// PermitResourcesForRelationships allows an embedded Resource value
	// in place of a relationship at all (subject to
	// ConvertResourcesToRelationships above); without it, a Resource
	// value on a relationship field always fails.
	PermitResourcesForRelationships bool

	// IncludeOptionalFields, when true, emits/expects optional
	// properties that have no stored value as a JSON null rather than
	// omitting them entirely.
	IncludeOptionalFields bool

	// UTCOffsetHours shifts DateTime and $timestamp formatting away
	// from UTC, e.g. -5 for US Eastern standard time.
	UTCOffsetHours float64
}

// Option overrides one field of the serializer's default [Options] for a
// single call.
type Option func(*Options)

// WithValidate sets [Options.Validate].
func WithValidate(v bool) Option { return func(o *Options) { o.Validate = v } }

// WithConvertResourcesToRelationships sets
// [Options.ConvertResourcesToRelationships].
func WithConvertResourcesToRelationships(v bool) Option {
	return func(o *Options) { o.ConvertResourcesToRelationships = v }
}

// WithPermitResourcesForRelationships sets
// [Options.PermitResourcesForRelationships].
func WithPermitResourcesForRelationships(v bool) Option {
	return func(o *Options) { o.PermitResourcesForRelationships = v }
}

// WithIncludeOptionalFields sets [Options.IncludeOptionalFields].
func WithIncludeOptionalFields(v bool) Option { return func(o *Options) { o.IncludeOptionalFields = v } }

// WithUTCOffsetHours sets [Options.UTCOffsetHours].
func WithUTCOffsetHours(v float64) Option { return func(o *Options) { o.UTCOffsetHours = v } }

// Serializer converts between [instance.Instance] values and canonical
// JSON, against the declaration graph owned by manager.
type Serializer struct {
	manager  *modelmanager.ModelManager
	factory  *factory.Factory
	defaults Options
}

// New creates a [Serializer]. defaults apply to every call unless
// overridden by that call's own options; Validate defaults to true,
// matching spec §4.6's "default when unspecified at call sites".
func New(manager *modelmanager.ModelManager, f *factory.Factory, defaults ...Option) *Serializer {
	o := Options{Validate: true}
	for _, d := range defaults {
		d(&o)
	}

	return &Serializer{manager: manager, factory: f, defaults: o}
}

func (s *Serializer) resolveOptions(overrides []Option) Options {
	o := s.defaults
	for _, ov := range overrides {
		ov(&o)
	}

	return o
}
