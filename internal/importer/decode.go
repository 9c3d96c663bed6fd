package importer

// decode.go parses the raw import payload into typed records.
//
// Decoding is the only import-fatal stage: a bundle with a malformed top-level
// shape, an unknown valueType, or a record missing its mandatory _typeName/id
// keys aborts the whole call. Everything downstream degrades to per-record
// errors instead.

import (
	"encoding/json"
	"fmt"
)

// Mandatory record keys. Every remaining key of a node or list record is a
// field-name entry.
const (
	keyTypeName = "_typeName"
	keyID       = "id"
)

// rawBundle is the wire shape of an import payload.
type rawBundle struct {
	ValueType string `json:"valueType"`
	Values    *struct {
		Elements []json.RawMessage `json:"elements"`
	} `json:"values"`
}

// DecodeBundle parses a JSON import payload into typed records.
// The returned error, if any, is fatal for the whole import.
func DecodeBundle(data []byte) (*Bundle, error) {
	var raw rawBundle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if raw.ValueType == "" {
		return nil, fmt.Errorf("bundle is missing valueType")
	}
	if raw.Values == nil || raw.Values.Elements == nil {
		return nil, fmt.Errorf("bundle is missing values")
	}

	b := &Bundle{Kind: Kind(raw.ValueType)}
	var err error
	switch b.Kind {
	case KindNodes:
		b.Nodes, err = decodeNodes(raw.Values.Elements)
	case KindRelations:
		b.Relations, err = decodeRelations(raw.Values.Elements)
	case KindLists:
		b.Lists, err = decodeLists(raw.Values.Elements)
	default:
		return nil, fmt.Errorf("unknown valueType %q", raw.ValueType)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func decodeNodes(elements []json.RawMessage) ([]ImportNode, error) {
	nodes := make([]ImportNode, 0, len(elements))
	for i, el := range elements {
		var rec map[string]any
		if err := json.Unmarshal(el, &rec); err != nil {
			return nil, fmt.Errorf("node record %d: %w", i, err)
		}
		typeName, id, err := mandatoryKeys(rec)
		if err != nil {
			return nil, fmt.Errorf("node record %d: %w", i, err)
		}

		values := make(map[string]any, len(rec))
		for k, v := range rec {
			if k == keyTypeName || k == keyID {
				continue
			}
			values[k] = v
		}
		nodes = append(nodes, ImportNode{TypeName: typeName, ID: id, Values: values})
	}
	return nodes, nil
}

func decodeRelations(elements []json.RawMessage) ([]ImportRelation, error) {
	rels := make([]ImportRelation, 0, len(elements))
	for i, el := range elements {
		var sides []json.RawMessage
		if err := json.Unmarshal(el, &sides); err != nil {
			return nil, fmt.Errorf("relation record %d: %w", i, err)
		}
		if len(sides) != 2 {
			return nil, fmt.Errorf("relation record %d: expected 2 sides, got %d", i, len(sides))
		}

		left, err := decodeRelationSide(sides[0])
		if err != nil {
			return nil, fmt.Errorf("relation record %d: %w", i, err)
		}
		right, err := decodeRelationSide(sides[1])
		if err != nil {
			return nil, fmt.Errorf("relation record %d: %w", i, err)
		}
		rels = append(rels, ImportRelation{Left: left, Right: right})
	}
	return rels, nil
}

func decodeRelationSide(data json.RawMessage) (RelationSide, error) {
	var rec struct {
		TypeName  string  `json:"_typeName"`
		ID        string  `json:"id"`
		FieldName *string `json:"fieldName"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return RelationSide{}, err
	}
	if rec.TypeName == "" {
		return RelationSide{}, fmt.Errorf("side is missing %s", keyTypeName)
	}
	if rec.ID == "" {
		return RelationSide{}, fmt.Errorf("side is missing %s", keyID)
	}

	side := RelationSide{Ref: EntityRef{TypeName: rec.TypeName, ID: rec.ID}}
	if rec.FieldName != nil {
		side.FieldName = *rec.FieldName
	}
	return side, nil
}

func decodeLists(elements []json.RawMessage) ([]ImportList, error) {
	lists := make([]ImportList, 0, len(elements))
	for i, el := range elements {
		var rec map[string]any
		if err := json.Unmarshal(el, &rec); err != nil {
			return nil, fmt.Errorf("list record %d: %w", i, err)
		}
		typeName, id, err := mandatoryKeys(rec)
		if err != nil {
			return nil, fmt.Errorf("list record %d: %w", i, err)
		}

		values := make(map[string][]any, len(rec))
		for k, v := range rec {
			if k == keyTypeName || k == keyID {
				continue
			}
			seq, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("list record %d: field %q is not a value sequence", i, k)
			}
			values[k] = seq
		}
		lists = append(lists, ImportList{Ref: EntityRef{TypeName: typeName, ID: id}, Values: values})
	}
	return lists, nil
}

// mandatoryKeys extracts _typeName and id from a record, requiring both to
// be non-empty strings.
func mandatoryKeys(rec map[string]any) (typeName, id string, err error) {
	typeName, ok := rec[keyTypeName].(string)
	if !ok || typeName == "" {
		return "", "", fmt.Errorf("missing %s", keyTypeName)
	}
	id, ok = rec[keyID].(string)
	if !ok || id == "" {
		return "", "", fmt.Errorf("missing %s", keyID)
	}
	return typeName, id, nil
}
