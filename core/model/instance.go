package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Instance is a typed record whose values have all been cast through its class
// schema. Absent fields are simply not stored.
type Instance struct {
	reg    *Registry
	schema *ClassSchema
	data   map[string]any
}

// New constructs an instance of the class named by ref (alias or identity) from
// raw external data.
func New(reg *Registry, ref string, data any) (*Instance, error) {
	schema, err := reg.Resolve(ref)
	if err != nil {
		return nil, err
	}
	inst := &Instance{reg: reg, schema: schema}
	if err := inst.Import(data); err != nil {
		return nil, err
	}
	return inst, nil
}

// Schema returns the class schema of the instance.
func (i *Instance) Schema() *ClassSchema { return i.schema }

// Identity returns the identity of the instance's class.
func (i *Instance) Identity() string { return i.schema.identity }

// ClassName returns the class alias, or the identity when no alias was given.
func (i *Instance) ClassName() string { return i.schema.ClassName() }

// Get returns the internal value of a field, or nil when absent or undeclared.
func (i *Instance) Get(name string) any {
	return i.data[name]
}

// Set casts value through the field's spec and stores the result, returning the
// stored internal value.
func (i *Instance) Set(name string, value any) (any, error) {
	spec, ok := i.schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w %s on %s", ErrUnknownField, name, i.ClassName())
	}
	v, err := i.reg.Cast(value, spec)
	if err != nil {
		return nil, err
	}
	if v == nil {
		delete(i.data, name)
	} else {
		i.data[name] = v
	}
	return v, nil
}

// Import replaces every field value with the cast of data[externalKey]. Fields
// missing from data become absent.
func (i *Instance) Import(data any) error {
	entries, ok := objectEntries(data)
	if !ok {
		return fmt.Errorf("%w: constructor requires object for %s", ErrNotObject, i.ClassName())
	}
	values := make(map[string]any, len(i.schema.fields))
	for _, spec := range i.schema.fields {
		v, err := i.reg.Cast(entries[spec.ExternalKey], spec)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", i.ClassName(), spec.Name, err)
		}
		if v != nil {
			values[spec.Name] = v
		}
	}
	i.data = values
	return nil
}

// Export returns the external representation keyed by external key. Absent
// fields are omitted rather than emitted as null.
func (i *Instance) Export() map[string]any {
	out := make(map[string]any, len(i.data))
	for _, spec := range i.schema.fields {
		v, ok := i.data[spec.Name]
		if !ok {
			continue
		}
		if ev := exportValue(v); ev != nil {
			out[spec.ExternalKey] = ev
		}
	}
	return out
}

func exportValue(v any) any {
	switch val := v.(type) {
	case string, bool, float64, time.Time:
		return val
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = exportValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = exportValue(elem)
		}
		return out
	case *Instance:
		if val == nil {
			return nil
		}
		return val.Export()
	default:
		return nil
	}
}

// Equal reports whether both instances belong to the same class and export to
// the same external representation.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.schema.identity != other.schema.identity {
		return false
	}
	return DeepEqual(i.Export(), other.Export())
}

// JSON returns the JSON encoding of the external representation.
func (i *Instance) JSON() ([]byte, error) {
	return json.Marshal(i.Export())
}

// MarshalJSON implements json.Marshaler using the external representation.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return i.JSON()
}
