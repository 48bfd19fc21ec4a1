package model

import (
	"fmt"
	"reflect"
	"time"

	"datasync/core/utils"
)

// dateLayouts are tried in order when casting a string to a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
}

// Cast converts a raw external value into the internal value for spec. A nil
// result means the value is absent. Only an unresolvable model reference, or a
// nested model fed a non-object, produces an error.
func (r *Registry) Cast(raw any, spec FieldSpec) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch spec.Collection {
	case CollectionList:
		return r.castList(raw, spec)
	case CollectionMap:
		return r.castMap(raw, spec)
	}
	return r.castScalar(raw, spec)
}

func (r *Registry) castScalar(raw any, spec FieldSpec) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch spec.Scalar {
	case ScalarString:
		return castString(raw), nil
	case ScalarNumber:
		return castNumber(raw), nil
	case ScalarBoolean:
		return castBoolean(raw), nil
	case ScalarDate:
		return castDate(raw), nil
	default:
		return r.castModel(raw, spec.ModelRef)
	}
}

func (r *Registry) castList(raw any, spec FieldSpec) (any, error) {
	var elems []any
	switch v := raw.(type) {
	case []any:
		elems = v
	default:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, nil
		}
		elems = make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
	}
	out := make([]any, len(elems))
	for i, elem := range elems {
		v, err := r.castScalar(elem, spec)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", spec.Name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (r *Registry) castMap(raw any, spec FieldSpec) (any, error) {
	entries, ok := objectEntries(raw)
	if !ok {
		return nil, nil
	}
	out := make(map[string]any, len(entries))
	for k, elem := range entries {
		v, err := r.castScalar(elem, spec)
		if err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", spec.Name, k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (r *Registry) castModel(raw any, ref string) (any, error) {
	schema, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if inst, ok := raw.(*Instance); ok && inst.schema == schema {
		return inst, nil
	}
	inst := &Instance{reg: r, schema: schema}
	if err := inst.Import(raw); err != nil {
		return nil, err
	}
	return inst, nil
}

// objectEntries returns the key/value entries of an object-shaped value.
func objectEntries(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case *Instance:
		if v == nil {
			return nil, false
		}
		return v.Export(), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func castString(raw any) any {
	if s, ok := raw.(string); ok {
		return s
	}
	if utils.Truthy(raw) {
		return utils.ToString(raw)
	}
	return nil
}

func castNumber(raw any) any {
	if f, ok := utils.ToFloat(raw); ok {
		return f
	}
	if f, ok := utils.ParseIntPrefix(utils.ToString(raw)); ok {
		return f
	}
	return nil
}

func castBoolean(raw any) any {
	if b, ok := raw.(bool); ok {
		return b
	}
	switch utils.ToString(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return nil
}

func castDate(raw any) any {
	switch v := raw.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return nil
		}
		return *v
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return nil
}
