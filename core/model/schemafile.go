package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the YAML layout accepted by LoadSchemas:
//
//	models:
//	  - name: User
//	    alias: user
//	    fields:
//	      key: _id string
//	      tags: "[]string"
//
// Fields are kept as a yaml.Node so declaration order survives decoding.
type schemaFile struct {
	Models []schemaEntry `yaml:"models"`
}

type schemaEntry struct {
	Name   string    `yaml:"name"`
	Alias  string    `yaml:"alias,omitempty"`
	Fields yaml.Node `yaml:"fields"`
}

// LoadSchemas decodes a YAML schema document and registers every model in it,
// in document order. Registration stops at the first error.
func LoadSchemas(r io.Reader, reg *Registry) ([]*ClassSchema, error) {
	var doc schemaFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}

	schemas := make([]*ClassSchema, 0, len(doc.Models))
	for _, entry := range doc.Models {
		fields, err := entry.fieldDecls()
		if err != nil {
			return schemas, err
		}
		s, err := reg.Register(entry.Name, fields, entry.Alias)
		if err != nil {
			return schemas, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// LoadSchemaFile opens path and passes it to LoadSchemas.
func LoadSchemaFile(path string, reg *Registry) ([]*ClassSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	return LoadSchemas(f, reg)
}

func (e schemaEntry) fieldDecls() ([]FieldDecl, error) {
	n := e.Fields
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, &DefinitionError{Class: e.Name, Offset: -1, Reason: fmt.Sprintf("fields must be a mapping (line %d)", n.Line)}
	}
	decls := make([]FieldDecl, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, &DefinitionError{
				Class:  e.Name,
				Field:  k.Value,
				Offset: -1,
				Reason: fmt.Sprintf("declaration must be a string (line %d); quote collection markers", v.Line),
			}
		}
		decls = append(decls, FieldDecl{Name: k.Value, Decl: v.Value})
	}
	return decls, nil
}

// WriteSchemas encodes schemas as a document LoadSchemas accepts, keeping
// field declaration order.
func WriteSchemas(w io.Writer, schemas ...*ClassSchema) error {
	doc := schemaFile{Models: make([]schemaEntry, 0, len(schemas))}
	for _, s := range schemas {
		fields := yaml.Node{Kind: yaml.MappingNode}
		for _, f := range s.fields {
			fields.Content = append(fields.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Decl()},
			)
		}
		doc.Models = append(doc.Models, schemaEntry{Name: s.identity, Alias: s.className, Fields: fields})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode schema document: %w", err)
	}
	return enc.Close()
}
