package importer

// batch.go groups valid records into batched mutation commands.
//
// Grouping is a stateless fold from records into an ordered map keyed by the
// batch key: the model for nodes, the resolved relation for relation records,
// and the computed scalar-list table for list records. It exists purely to
// cut the number of commands sent to the executor; correctness does not
// depend on grouping order. Groups preserve first-seen order so output is
// deterministic for a given bundle.

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sqlgraph/bulkimport/internal/schema"
)

// batchNodes groups valid node records by model into one BatchedCreate per
// distinct model.
func batchNodes(valid []validNode) []Mutation {
	index := make(map[string]int)
	var creates []BatchedCreate

	for _, v := range valid {
		i, ok := index[v.model.Name]
		if !ok {
			i = len(creates)
			index[v.model.Name] = i
			creates = append(creates, BatchedCreate{Model: v.model})
		}
		creates[i].ArgSets = append(creates[i].ArgSets, v.node.Values)
	}

	out := make([]Mutation, len(creates))
	for i, c := range creates {
		out[i] = c
	}
	return out
}

// batchRelations resolves each relation record's orientation against the
// schema and groups the resulting (A, B) pairs by relation. A record whose
// sides define no field name, or both, cannot be oriented; it is rejected
// as a per-record error rather than aborting the import.
func batchRelations(catalog schema.Catalog, rels []ImportRelation) ([]Mutation, []string) {
	index := make(map[string]int)
	var rows []BatchedRelationRows
	var errs []string

	for _, rel := range rels {
		relation, pair, err := orientRelation(catalog, rel)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		i, ok := index[relation]
		if !ok {
			i = len(rows)
			index[relation] = i
			rows = append(rows, BatchedRelationRows{Relation: relation})
		}
		rows[i].Pairs = append(rows[i].Pairs, pair)
	}

	out := make([]Mutation, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, errs
}

// orientRelation determines the owning side of a relation record and maps
// it to a schema-oriented (A, B) pair.
func orientRelation(catalog schema.Catalog, rel ImportRelation) (relation string, pair RelationPair, err error) {
	owner, other := rel.Left, rel.Right
	switch {
	case rel.Left.FieldName != "" && rel.Right.FieldName != "":
		return "", RelationPair{}, fmt.Errorf("relation between %s:%s and %s:%s: both sides set fieldName",
			rel.Left.Ref.TypeName, rel.Left.Ref.ID, rel.Right.Ref.TypeName, rel.Right.Ref.ID)
	case rel.Left.FieldName == "" && rel.Right.FieldName == "":
		return "", RelationPair{}, fmt.Errorf("relation between %s:%s and %s:%s: neither side sets fieldName",
			rel.Left.Ref.TypeName, rel.Left.Ref.ID, rel.Right.Ref.TypeName, rel.Right.Ref.ID)
	case rel.Left.FieldName == "":
		owner, other = rel.Right, rel.Left
	}

	model, ok := catalog.ModelByName(owner.Ref.TypeName)
	if !ok {
		return "", RelationPair{}, fmt.Errorf("model %s: node %s: model is not defined in the schema",
			owner.Ref.TypeName, owner.Ref.ID)
	}
	field, ok := model.FieldByName(owner.FieldName)
	if !ok {
		return "", RelationPair{}, fmt.Errorf("model %s: node %s: unknown field %q",
			model.Name, owner.Ref.ID, owner.FieldName)
	}
	if !field.IsRelation() {
		return "", RelationPair{}, fmt.Errorf("model %s: field %q is not a relation field",
			model.Name, field.Name)
	}

	if field.RelationSide == schema.SideA {
		pair = RelationPair{A: owner.Ref.ID, B: other.Ref.ID}
	} else {
		pair = RelationPair{A: other.Ref.ID, B: owner.Ref.ID}
	}
	return field.Relation.Name, pair, nil
}

// batchLists applies type-directed coercion to each list record's values and
// groups (entityID, values) entries by target table.
func batchLists(catalog schema.Catalog, lists []ImportList) ([]Mutation, []string) {
	index := make(map[string]int)
	var pushes []BatchedListPush
	var errs []string

	for _, list := range lists {
		model, ok := catalog.ModelByName(list.Ref.TypeName)
		if !ok {
			errs = append(errs, fmt.Sprintf("model %s: node %s: model is not defined in the schema",
				list.Ref.TypeName, list.Ref.ID))
			continue
		}

		for _, fieldName := range sortedKeys(list.Values) {
			field, ok := model.FieldByName(fieldName)
			if !ok {
				errs = append(errs, fmt.Sprintf("model %s: node %s: unknown field %q",
					model.Name, list.Ref.ID, fieldName))
				continue
			}

			values, err := coerceListValues(field, list.Values[fieldName])
			if err != nil {
				errs = append(errs, fmt.Sprintf("model %s: node %s: field %q: %v",
					model.Name, list.Ref.ID, fieldName, err))
				continue
			}

			table := listTableName(model.Name, field.Name)
			i, ok := index[table]
			if !ok {
				i = len(pushes)
				index[table] = i
				pushes = append(pushes, BatchedListPush{Table: table})
			}
			pushes[i].Entries = append(pushes[i].Entries, ListEntry{NodeID: list.Ref.ID, Values: values})
		}
	}

	out := make([]Mutation, len(pushes))
	for i, p := range pushes {
		out[i] = p
	}
	return out, errs
}

// listTableName computes the scalar-list table key for a model field.
func listTableName(model, field string) string {
	return fmt.Sprintf("%s_{%s}", model, field)
}

// coerceListValues rewrites raw list values into their stored form based on
// the field's declared type. DateTime strings have the ISO-8601 "T"
// separator and trailing "Z" replaced with spaces, matching the
// SQL-compatible literal form; Json values are re-serialized to canonical
// JSON text; everything else passes through unchanged.
func coerceListValues(field *schema.Field, values []any) ([]any, error) {
	switch field.Type {
	case schema.TypeDateTime:
		out := make([]any, len(values))
		for i, v := range values {
			if s, ok := v.(string); ok {
				s = strings.ReplaceAll(s, "T", " ")
				s = strings.ReplaceAll(s, "Z", " ")
				out[i] = s
			} else {
				out[i] = v
			}
		}
		return out, nil

	case schema.TypeJSON:
		out := make([]any, len(values))
		for i, v := range values {
			text, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("serialize json value: %w", err)
			}
			out[i] = string(text)
		}
		return out, nil

	default:
		return values, nil
	}
}
