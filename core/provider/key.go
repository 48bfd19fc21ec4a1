package provider

import (
	"datasync/core/model"
	"datasync/core/utils"
)

// DefaultKeyField is the field objects are keyed by unless configured otherwise.
const DefaultKeyField = "key"

// KeyFunc extracts the identity of an object. The second result is false when
// the object has no usable key.
type KeyFunc func(obj any) (string, bool)

// Keyer is implemented by objects that know their own key.
type Keyer interface {
	Key() any
}

// FieldKey returns a KeyFunc reading field from model instances (by internal
// name), from string-keyed maps and from Keyer implementations. Empty, zero
// and false values count as no key; numbers are rendered as strings.
func FieldKey(field string) KeyFunc {
	return func(obj any) (string, bool) {
		var raw any
		switch v := obj.(type) {
		case *model.Instance:
			if v == nil {
				return "", false
			}
			raw = v.Get(field)
		case map[string]any:
			raw = v[field]
		case Keyer:
			raw = v.Key()
		default:
			return "", false
		}
		if !utils.Truthy(raw) {
			return "", false
		}
		return utils.ToString(raw), true
	}
}
