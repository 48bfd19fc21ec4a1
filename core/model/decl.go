package model

import "fmt"

// CollectionKind describes whether a field holds a single value, a list or a map.
type CollectionKind int

const (
	CollectionNone CollectionKind = iota
	CollectionList
	CollectionMap
)

func (c CollectionKind) String() string {
	switch c {
	case CollectionList:
		return "list"
	case CollectionMap:
		return "map"
	default:
		return "none"
	}
}

// ScalarKind describes the element type of a field.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBoolean
	ScalarDate
	ScalarModel
)

// Built-in scalar names accepted in declarations.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
)

func (s ScalarKind) String() string {
	switch s {
	case ScalarString:
		return TypeString
	case ScalarNumber:
		return TypeNumber
	case ScalarBoolean:
		return TypeBoolean
	case ScalarDate:
		return TypeDate
	default:
		return "model"
	}
}

// FieldSpec is the parsed shape of one declared field.
type FieldSpec struct {
	// Name is the internal field name.
	Name string
	// ExternalKey is the key used in the external representation.
	ExternalKey string
	Collection  CollectionKind
	Scalar      ScalarKind
	// ModelRef names the referenced class when Scalar is ScalarModel.
	ModelRef string
}

// FieldDecl pairs an internal field name with its declaration string.
type FieldDecl struct {
	Name string
	Decl string
}

// F is shorthand for building a FieldDecl.
func F(name, decl string) FieldDecl {
	return FieldDecl{Name: name, Decl: decl}
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokSpace
	tokList
	tokMap
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// declError is a parse failure with its byte offset in the declaration.
type declError struct {
	pos    int
	reason string
}

func (e *declError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.reason, e.pos)
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func lexDecl(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isSpaceByte(c):
			start := i
			for i < len(s) && isSpaceByte(s[i]) {
				i++
			}
			toks = append(toks, token{kind: tokSpace, text: s[start:i], pos: start})
		case isIdentByte(c):
			start := i
			for i < len(s) && isIdentByte(s[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: s[start:i], pos: start})
		case c == '[' || c == '{':
			closer := byte(']')
			kind := tokList
			if c == '{' {
				closer, kind = '}', tokMap
			}
			if i+1 >= len(s) || s[i+1] != closer {
				return nil, &declError{pos: i, reason: fmt.Sprintf("expected %q after %q", closer, c)}
			}
			toks = append(toks, token{kind: kind, text: s[i : i+2], pos: i})
			i += 2
		default:
			return nil, &declError{pos: i, reason: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

// parseDecl parses a declaration of the form [alias] [collMarker] scalarName.
func parseDecl(name, decl string) (FieldSpec, error) {
	toks, err := lexDecl(decl)
	if err != nil {
		return FieldSpec{}, err
	}
	spec := FieldSpec{Name: name, ExternalKey: name}
	i := 0

	// An identifier followed by whitespace is the alias; whitespace alone up
	// front means an empty alias.
	switch {
	case toks[0].kind == tokIdent && len(toks) > 1 && toks[1].kind == tokSpace:
		spec.ExternalKey = toks[0].text
		i = 2
	case toks[0].kind == tokSpace:
		i = 1
	}

	switch toks[i].kind {
	case tokList:
		spec.Collection = CollectionList
		i++
	case tokMap:
		spec.Collection = CollectionMap
		i++
	}

	t := toks[i]
	if t.kind != tokIdent {
		return FieldSpec{}, &declError{pos: t.pos, reason: "expected type name"}
	}
	for j := 0; j < len(t.text); j++ {
		if t.text[j] == '-' {
			return FieldSpec{}, &declError{pos: t.pos + j, reason: "type name may not contain '-'"}
		}
	}
	if next := toks[i+1]; next.kind != tokEOF {
		return FieldSpec{}, &declError{pos: next.pos, reason: fmt.Sprintf("unexpected %q after type name", next.text)}
	}

	switch t.text {
	case TypeString:
		spec.Scalar = ScalarString
	case TypeNumber:
		spec.Scalar = ScalarNumber
	case TypeBoolean:
		spec.Scalar = ScalarBoolean
	case TypeDate:
		spec.Scalar = ScalarDate
	default:
		spec.Scalar = ScalarModel
		spec.ModelRef = t.text
	}
	return spec, nil
}

// Decl renders the spec back into declaration syntax. Parsing the result under
// the same field name yields an equal spec.
func (s FieldSpec) Decl() string {
	out := ""
	if s.ExternalKey != "" && s.ExternalKey != s.Name {
		out = s.ExternalKey + " "
	}
	switch s.Collection {
	case CollectionList:
		out += "[]"
	case CollectionMap:
		out += "{}"
	}
	if s.Scalar == ScalarModel {
		return out + s.ModelRef
	}
	return out + s.Scalar.String()
}
