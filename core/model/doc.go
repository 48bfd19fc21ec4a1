// Package model implements the schema registry and casting engine.
//
// A class is registered once with an ordered list of field declarations. Each
// declaration names the external key, an optional collection marker and the scalar
// kind of the field:
//
//	string        plain string stored under the field's own name
//	_id string    string stored under the external key "_id"
//	[]number      list of numbers
//	{}date        map of dates keyed by string
//	User          nested instance of the class registered as (or aliased to) "User"
//
// Instances are produced by casting raw external data (usually decoded JSON)
// through the class schema. Casting is tolerant: malformed scalars and collections
// become absent values instead of failing. Only schema problems fail loudly,
// as a DefinitionError at registration or an UnknownModelError when a nested
// reference cannot be resolved.
//
// # Registry
//
// The Registry is an explicit object rather than process-wide state, so tests and
// independent providers can keep isolated sets of classes.
//
//	reg := model.NewRegistry()
//	_, err := reg.Register("User", []model.FieldDecl{
//	    model.F("key", "_id string"),
//	    model.F("name", "string"),
//	    model.F("groups", "[]Group"),
//	}, "")
//
//	u, err := model.New(reg, "User", map[string]any{"_id": "u1", "name": "Ada"})
//	u.Export() // map[_id:u1 name:Ada]
//
// # Schema files
//
// LoadSchemas registers every class declared in a YAML document, keeping the field
// order of the document.
package model
