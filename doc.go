// Package typedjson transcodes between JSON values and typed in-memory values
// under a schema described by a Type graph.
//
// - DecodeFromJSON / DecodeFromDefaultJSON / EncodeToJSON walk a value and its
//   Type together, dispatching on Category
// - Nonconformance is collected, not fail-fast: every problem is reported as an
//   Issue with a JSON Pointer and a stable code, aggregated in an
//   *IncompatibleValueError
// - Records are assembled through a Builder so absent defaulted fields are
//   filled by the record type itself
// - Input is read through a pluggable JSONDriver with duplicate-key, depth and
//   size enforcement; YAML documents are accepted via ReadYAML
//
// Design policy:
// - Keep only public APIs in the root package; put token handling under internal/.
// - Concrete schema models live in their own packages (avroschema), logical type
//   converters under codec/, and the CLI under cmd/typedjson.
//
// Typical usage:
//
//	t := avroschema.MustParse(schemaJSON)
//	v, err := typedjson.DecodeJSONBytes(data, t)
//	if iss, ok := typedjson.AsIssues(err); ok {
//		// report iss
//	}
//	out, err := typedjson.EncodeJSONBytes(v, t, typedjson.Options{OmitDefaultValues: true})
package typedjson
