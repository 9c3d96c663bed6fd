// Package importer implements the bulk-import pipeline: decode a JSON bundle
// of records, validate them against the schema catalog, group valid records
// into batched mutation commands, dispatch the commands concurrently, and
// collect every failure into one error report.
//
// Failure semantics are the point of this package. Only a malformed bundle
// aborts an import; every other problem (an unknown field, a relation with
// no owning side, a rejected mutation) is local to one record or one batch
// and never blocks its siblings. Callers read the final error array, not a
// success boolean: an empty array means no failures were observed.
package importer

import (
	"context"

	"github.com/sqlgraph/bulkimport/internal/schema"
)

// Kind is the record kind carried by a bundle.
type Kind string

const (
	KindNodes     Kind = "nodes"
	KindRelations Kind = "relations"
	KindLists     Kind = "lists"
)

// EntityRef addresses one entity instance within the model space.
type EntityRef struct {
	TypeName string
	ID       string
}

// ImportNode is one decoded node record: a new entity instance with its
// field values. Values holds every record key except _typeName and id;
// whether those keys are valid fields is checked by the validator, not
// the decoder.
type ImportNode struct {
	TypeName string
	ID       string
	Values   map[string]any
}

// RelationSide is one end of a relation record. FieldName is empty on the
// non-owning side; the side that sets it determines the relation and its
// orientation.
type RelationSide struct {
	Ref       EntityRef
	FieldName string
}

// ImportRelation links two entity instances. Exactly one side must carry
// a field name; records violating that are rejected during batching.
type ImportRelation struct {
	Left  RelationSide
	Right RelationSide
}

// ImportList attaches scalar list values to fields of one entity instance.
// Field names are taken as given by the decoder and resolved against the
// schema during batching, when type-directed coercion is applied.
type ImportList struct {
	Ref    EntityRef
	Values map[string][]any
}

// Bundle is a fully decoded import payload. Exactly one of the record
// slices is populated, matching Kind.
type Bundle struct {
	Kind      Kind
	Nodes     []ImportNode
	Relations []ImportRelation
	Lists     []ImportList
}

// Mutation is one batched command produced by the batcher and accepted by
// an Executor. The concrete types are BatchedCreate, BatchedRelationRows
// and BatchedListPush.
type Mutation interface {
	mutation()
}

// BatchedCreate creates all valid nodes of one model in a single command.
// ArgSets preserves the order records appeared in the bundle.
type BatchedCreate struct {
	Model   *schema.Model
	ArgSets []map[string]any
}

// RelationPair is one stored relation row in schema (A, B) orientation.
type RelationPair struct {
	A string
	B string
}

// BatchedRelationRows inserts all pairs of one relation in a single command.
type BatchedRelationRows struct {
	Relation string
	Pairs    []RelationPair
}

// ListEntry is the coerced list values for one field of one entity.
type ListEntry struct {
	NodeID string
	Values []any
}

// BatchedListPush pushes all list entries targeting one scalar-list table
// in a single command. Table is the computed <model>_{<field>} key.
type BatchedListPush struct {
	Table   string
	Entries []ListEntry
}

func (BatchedCreate) mutation()       {}
func (BatchedRelationRows) mutation() {}
func (BatchedListPush) mutation()     {}

// Executor runs one batched mutation command. The engine always dispatches
// with transactional=false: each command succeeds or fails on its own, with
// no rollback coupling to sibling commands.
//
// An executor may reject several statements inside one command; it reports
// them as a single error whose message joins the sub-errors with
// ErrorDelimiter (see SplitErrors).
type Executor interface {
	Execute(ctx context.Context, m Mutation, transactional bool) error
}
