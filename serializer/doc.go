// Package serializer implements the bidirectional canonical JSON
// traversal of spec §4.6: [Serializer.ToJSON] walks a declaration's own
// and inherited properties to build a JSON object from an
// [instance.Instance]; [Serializer.FromJSON] walks the same properties
// in reverse to build a validated instance from a JSON object. Both
// directions share one option set ([Options]) and one declaration-
// property walk, mirroring how [github.com/google/jsonschema-go/jsonschema]
// and [go.jacobcolvin.com/x/magicschema] each drive a
// single generator off one declarative shape description.
package serializer
