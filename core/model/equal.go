package model

import (
	"reflect"
	"time"

	"datasync/core/utils"
)

// DeepEqual compares two external representation trees structurally. Maps are
// compared by key set, so ordering never matters; dates compare by instant.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, found := bv[k]
			if !found || !DeepEqual(elem, other) {
				return false
			}
		}
		return true
	case *Instance:
		bv, ok := b.(*Instance)
		if !ok {
			return false
		}
		return av.Equal(bv)
	}
	if af, ok := utils.ToFloat(a); ok {
		bf, ok := utils.ToFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}
