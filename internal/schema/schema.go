// Package schema describes the entity model space an import targets.
//
// A Catalog resolves entity-type names to Model definitions. Models expose
// their fields, field types, and relation metadata. The import engine treats
// the catalog as an injected capability with a single not-found failure mode;
// it never panics on an unknown name.
package schema

import "fmt"

// TypeIdentifier is the declared scalar type of a field.
type TypeIdentifier string

const (
	TypeString   TypeIdentifier = "String"
	TypeBoolean  TypeIdentifier = "Boolean"
	TypeInt      TypeIdentifier = "Int"
	TypeFloat    TypeIdentifier = "Float"
	TypeDateTime TypeIdentifier = "DateTime"
	TypeJSON     TypeIdentifier = "Json"
	TypeEnum     TypeIdentifier = "Enum"
	TypeID       TypeIdentifier = "GraphID"
)

// RelationSide identifies which end of a relation a field sits on.
// The (A, B) ordering of stored relation rows is fixed by the schema,
// independent of which side an import record happens to name first.
type RelationSide string

const (
	SideA RelationSide = "A"
	SideB RelationSide = "B"
)

// Relation is a named link between two models.
type Relation struct {
	Name string
}

// Field is a single field on a model.
//
// Relation and RelationSide are set only for relation fields. IsList marks
// scalar list fields, which are stored in a separate table per model/field.
type Field struct {
	Name         string
	Type         TypeIdentifier
	IsList       bool
	Relation     *Relation
	RelationSide RelationSide
}

// IsRelation reports whether the field links to another model.
func (f *Field) IsRelation() bool {
	return f.Relation != nil
}

// Model is the schema definition of one entity type.
type Model struct {
	Name   string
	Fields []Field
}

// FieldByName returns the field with the given name.
// Returns false if the model has no such field.
func (m *Model) FieldByName(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// Catalog resolves entity-type names to model definitions.
type Catalog interface {
	// ModelByName returns the model with the given name.
	// Returns false if the catalog has no such model.
	ModelByName(name string) (*Model, bool)
}

// validTypes is the set of accepted type identifiers for schema files.
var validTypes = map[TypeIdentifier]bool{
	TypeString:   true,
	TypeBoolean:  true,
	TypeInt:      true,
	TypeFloat:    true,
	TypeDateTime: true,
	TypeJSON:     true,
	TypeEnum:     true,
	TypeID:       true,
}

// validate checks a model for internal consistency.
func (m *Model) validate() error {
	if m.Name == "" {
		return fmt.Errorf("model with empty name")
	}
	seen := make(map[string]bool, len(m.Fields))
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("model %s: field with empty name", m.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("model %s: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = true

		if !validTypes[f.Type] {
			return fmt.Errorf("model %s: field %q has unknown type %q", m.Name, f.Name, f.Type)
		}
		if f.Relation != nil && f.RelationSide != SideA && f.RelationSide != SideB {
			return fmt.Errorf("model %s: relation field %q must declare side A or B", m.Name, f.Name)
		}
		if f.Relation == nil && f.RelationSide != "" {
			return fmt.Errorf("model %s: field %q declares a relation side without a relation", m.Name, f.Name)
		}
	}
	return nil
}
