package provider

// collection is an insertion-ordered map from key to object. Replacing a key
// keeps its position. It is not safe for concurrent use.
type collection struct {
	keys    []string
	objects map[string]any
}

func newCollection() *collection {
	return &collection{objects: make(map[string]any)}
}

func (c *collection) get(key string) (any, bool) {
	obj, ok := c.objects[key]
	return obj, ok
}

// set binds key to obj and returns the previous binding, if any.
func (c *collection) set(key string, obj any) (any, bool) {
	prev, ok := c.objects[key]
	if !ok {
		c.keys = append(c.keys, key)
	}
	c.objects[key] = obj
	return prev, ok
}

func (c *collection) remove(key string) {
	if _, ok := c.objects[key]; !ok {
		return
	}
	delete(c.objects, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			return
		}
	}
}

func (c *collection) len() int {
	return len(c.keys)
}

func (c *collection) snapshotKeys() []string {
	return append([]string(nil), c.keys...)
}

func (c *collection) snapshotObjects() []any {
	out := make([]any, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.objects[k]
	}
	return out
}

func (c *collection) clear() {
	c.keys = nil
	c.objects = make(map[string]any)
}
