package provider

import "datasync/core/model"

// Constructor turns one decoded element into the object stored by a provider.
type Constructor func(data any) (any, error)

// Plain keeps decoded values as they are. A null body becomes an empty object.
func Plain(data any) (any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	return data, nil
}

// ModelConstructor casts every element into an instance of the class ref.
func ModelConstructor(reg *model.Registry, ref string) Constructor {
	return func(data any) (any, error) {
		return model.New(reg, ref, data)
	}
}

// objectsEqual compares a replacement with the object it replaces.
func objectsEqual(a, b any) bool {
	ai, aok := a.(*model.Instance)
	bi, bok := b.(*model.Instance)
	if aok && bok {
		return ai.Equal(bi)
	}
	if aok || bok {
		return false
	}
	return model.DeepEqual(a, b)
}
