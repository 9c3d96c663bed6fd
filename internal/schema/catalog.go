package schema

// catalog.go provides the in-memory Catalog implementation and the JSON
// schema file loader. Deployments describe their model space in a schema
// file; tests build catalogs directly from Go literals via NewCatalog.

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// StaticCatalog is an immutable, in-memory Catalog.
type StaticCatalog struct {
	models map[string]*Model
}

// NewCatalog builds a catalog from model definitions.
// Returns an error if any model is inconsistent or a name is duplicated.
func NewCatalog(models ...*Model) (*StaticCatalog, error) {
	c := &StaticCatalog{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if err := m.validate(); err != nil {
			return nil, err
		}
		if _, exists := c.models[m.Name]; exists {
			return nil, fmt.Errorf("duplicate model %q", m.Name)
		}
		c.models[m.Name] = m
	}
	return c, nil
}

// ModelByName returns the model with the given name.
func (c *StaticCatalog) ModelByName(name string) (*Model, bool) {
	m, ok := c.models[name]
	return m, ok
}

// Models returns all models sorted by name.
func (c *StaticCatalog) Models() []*Model {
	out := make([]*Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// schemaFile is the on-disk JSON shape of a schema.
type schemaFile struct {
	Models []struct {
		Name   string `json:"name"`
		Fields []struct {
			Name         string `json:"name"`
			Type         string `json:"type"`
			IsList       bool   `json:"isList,omitempty"`
			Relation     string `json:"relation,omitempty"`
			RelationSide string `json:"relationSide,omitempty"`
		} `json:"fields"`
	} `json:"models"`
}

// Load reads a schema file and builds a catalog from it.
func Load(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from JSON schema data.
func Parse(data []byte) (*StaticCatalog, error) {
	var file schemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("schema defines no models")
	}

	models := make([]*Model, 0, len(file.Models))
	for _, fm := range file.Models {
		m := &Model{Name: fm.Name, Fields: make([]Field, 0, len(fm.Fields))}
		for _, ff := range fm.Fields {
			field := Field{
				Name:         ff.Name,
				Type:         TypeIdentifier(ff.Type),
				IsList:       ff.IsList,
				RelationSide: RelationSide(ff.RelationSide),
			}
			if ff.Relation != "" {
				field.Relation = &Relation{Name: ff.Relation}
			}
			m.Fields = append(m.Fields, field)
		}
		models = append(models, m)
	}

	return NewCatalog(models...)
}
