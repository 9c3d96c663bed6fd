package importer

// validate.go checks decoded node records against the schema catalog.
//
// Validation failure is strictly local: a bad record is excluded from
// batching and surfaced as one error descriptor; every other record in the
// bundle proceeds unaffected. Relation and list records are validated
// implicitly during batching, where orientation and field types are
// resolved, through the same record-or-error shape used here.

import (
	"fmt"
	"sort"

	"github.com/sqlgraph/bulkimport/internal/schema"
)

// validNode is a node record whose model and field names resolved cleanly.
type validNode struct {
	model *schema.Model
	node  ImportNode
}

// validateNodes partitions node records into valid records and per-record
// error descriptors.
func validateNodes(catalog schema.Catalog, nodes []ImportNode) ([]validNode, []string) {
	valid := make([]validNode, 0, len(nodes))
	var errs []string

	for _, n := range nodes {
		model, ok := catalog.ModelByName(n.TypeName)
		if !ok {
			errs = append(errs, fmt.Sprintf("model %s: node %s: model is not defined in the schema", n.TypeName, n.ID))
			continue
		}

		bad := false
		for _, name := range sortedKeys(n.Values) {
			if _, ok := model.FieldByName(name); !ok {
				errs = append(errs, fmt.Sprintf("model %s: node %s: unknown field %q", model.Name, n.ID, name))
				bad = true
			}
		}
		if bad {
			continue
		}
		valid = append(valid, validNode{model: model, node: n})
	}
	return valid, errs
}

// sortedKeys returns map keys in sorted order so that error output and
// batched arg sets are deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
