package model

import (
	"errors"
	"reflect"
	"sort"
	"sync"
)

// ClassSchema is the immutable, ordered set of field specs for a registered class.
type ClassSchema struct {
	identity  string
	className string
	fields    []FieldSpec
	index     map[string]int
}

// Identity returns the identity the class was registered under.
func (s *ClassSchema) Identity() string { return s.identity }

// ClassName returns the alias given at registration, or the identity.
func (s *ClassSchema) ClassName() string {
	if s.className != "" {
		return s.className
	}
	return s.identity
}

// Fields returns a copy of the field specs in declaration order.
func (s *ClassSchema) Fields() []FieldSpec {
	return append([]FieldSpec(nil), s.fields...)
}

// Field returns the spec for an internal field name.
func (s *ClassSchema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Registry holds registered class schemas and their aliases. It is append-only:
// a class cannot be redefined or removed once registered.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*ClassSchema
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*ClassSchema),
		aliases: make(map[string]string),
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Register parses the field declarations and stores the resulting schema under
// identity. When className is given it becomes an alias that model references
// and rendering use in place of the identity.
func (r *Registry) Register(identity string, fields []FieldDecl, className string) (*ClassSchema, error) {
	if !isIdentifier(identity) {
		return nil, &DefinitionError{Class: identity, Offset: -1, Reason: "called register without a type identity"}
	}
	if className != "" && !isIdentifier(className) {
		return nil, &DefinitionError{Class: identity, Offset: -1, Reason: "invalid class name " + className}
	}

	schema := &ClassSchema{
		identity:  identity,
		className: className,
		fields:    make([]FieldSpec, 0, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for _, fd := range fields {
		if fd.Name == "" {
			return nil, &DefinitionError{Class: identity, Decl: fd.Decl, Offset: -1, Reason: "empty field name"}
		}
		if _, dup := schema.index[fd.Name]; dup {
			return nil, &DefinitionError{Class: identity, Field: fd.Name, Offset: -1, Reason: "field declared twice"}
		}
		spec, err := parseDecl(fd.Name, fd.Decl)
		if err != nil {
			de := &DefinitionError{Class: identity, Field: fd.Name, Decl: fd.Decl, Offset: -1, Reason: "unable to parse declaration"}
			var pe *declError
			if errors.As(err, &pe) {
				de.Offset = pe.pos
				de.Reason = pe.reason
			}
			return nil, de
		}
		schema.index[fd.Name] = len(schema.fields)
		schema.fields = append(schema.fields, spec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[identity]; exists {
		return nil, &DefinitionError{Class: identity, Offset: -1, Reason: "class already defined"}
	}
	if className != "" {
		if bound, ok := r.aliases[className]; ok && bound != identity {
			return nil, &DefinitionError{Class: identity, Offset: -1, Reason: "class name " + className + " already bound to " + bound}
		}
		r.aliases[className] = identity
	}
	r.schemas[identity] = schema
	return schema, nil
}

// RegisterType registers a class whose identity is the name of the Go type of
// proto. Pointers are dereferenced; unnamed types cannot be registered.
func (r *Registry) RegisterType(proto any, fields []FieldDecl, className string) (*ClassSchema, error) {
	t := reflect.TypeOf(proto)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return nil, &DefinitionError{Class: className, Offset: -1, Reason: "called register without a named type"}
	}
	return r.Register(t.Name(), fields, className)
}

// Schema returns the schema registered under identity.
func (r *Registry) Schema(identity string) (*ClassSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[identity]
	if !ok {
		return nil, &UnknownModelError{Ref: identity}
	}
	return s, nil
}

// Resolve looks a model reference up by alias first and identity second.
func (r *Registry) Resolve(ref string) (*ClassSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity := ref
	if aliased, ok := r.aliases[ref]; ok {
		identity = aliased
	}
	s, ok := r.schemas[identity]
	if !ok {
		return nil, &UnknownModelError{Ref: identity}
	}
	return s, nil
}

// Identities returns the registered identities in sorted order.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unresolved lists the model references across all schemas that do not resolve,
// in "Class.field -> Ref" form. Forward references are legal at registration, so
// this is the only way to find dangling ones before casting.
func (r *Registry) Unresolved() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for _, id := range sortedKeys(r.schemas) {
		for _, f := range r.schemas[id].fields {
			if f.Scalar != ScalarModel {
				continue
			}
			target := f.ModelRef
			if aliased, ok := r.aliases[target]; ok {
				target = aliased
			}
			if _, ok := r.schemas[target]; !ok {
				missing = append(missing, id+"."+f.Name+" -> "+f.ModelRef)
			}
		}
	}
	return missing
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
