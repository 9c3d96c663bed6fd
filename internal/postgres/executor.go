// Package postgres executes batched mutation commands against PostgreSQL.
//
// Each command maps to SQL over the model space's generated tables: node
// creates insert into the model table, relation rows into the relation's
// "_<Relation>" join table, and list pushes into the "<Model>_{<field>}"
// scalar-list table. With transactional=false, the mode the import engine
// always uses, a command runs directly on the pool with no surrounding
// transaction, so one command's failure never rolls back another.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlgraph/bulkimport/internal/importer"
)

// Executor runs mutation commands on a pgx connection pool.
type Executor struct {
	pool *pgxpool.Pool
}

// NewExecutor creates an Executor backed by the given pool.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{pool: pool}
}

// Execute runs one batched mutation command.
//
// Statement failures inside a command are collected and reported as one
// error whose message joins the individual failures with the importer's
// error delimiter.
func (e *Executor) Execute(ctx context.Context, m importer.Mutation, transactional bool) error {
	b, err := buildBatch(m)
	if err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	if transactional {
		return pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
			return drainBatch(tx.SendBatch(ctx, b), b.Len())
		})
	}
	return drainBatch(e.pool.SendBatch(ctx, b), b.Len())
}

// drainBatch consumes every result in a sent batch, collecting per-statement
// failures into one composite error.
func drainBatch(results pgx.BatchResults, n int) error {
	var msgs []string
	for i := 0; i < n; i++ {
		if _, err := results.Exec(); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if err := results.Close(); err != nil && len(msgs) == 0 {
		msgs = append(msgs, err.Error())
	}
	if len(msgs) > 0 {
		return errors.New(importer.JoinErrors(msgs))
	}
	return nil
}

// buildBatch translates a mutation command into a pgx batch of statements.
func buildBatch(m importer.Mutation) (*pgx.Batch, error) {
	b := &pgx.Batch{}
	switch c := m.(type) {
	case importer.BatchedCreate:
		queueCreates(b, c)
	case importer.BatchedRelationRows:
		queueRelationRows(b, c)
	case importer.BatchedListPush:
		queueListPushes(b, c)
	default:
		return nil, fmt.Errorf("unsupported mutation type %T", m)
	}
	return b, nil
}

// queueCreates adds one INSERT per arg set. Arg sets of the same model may
// name different field subsets, so each row gets its own statement; pgx
// pipelines them in a single round trip.
func queueCreates(b *pgx.Batch, c importer.BatchedCreate) {
	for _, argSet := range c.ArgSets {
		sql, args := insertNodeSQL(c.Model.Name, argSet)
		b.Queue(sql, args...)
	}
}

func queueRelationRows(b *pgx.Batch, c importer.BatchedRelationRows) {
	sql, args := insertRelationSQL(c.Relation, c.Pairs)
	if sql != "" {
		b.Queue(sql, args...)
	}
}

func queueListPushes(b *pgx.Batch, c importer.BatchedListPush) {
	for _, entry := range c.Entries {
		for i, v := range entry.Values {
			sql, args := insertListValueSQL(c.Table, entry.NodeID, i+1, v)
			b.Queue(sql, args...)
		}
	}
}

// insertNodeSQL builds a single-row INSERT for one node's field values.
// Columns are emitted in sorted order so the statement text is stable for
// a given field set.
func insertNodeSQL(table string, argSet map[string]any) (string, []any) {
	cols := make([]string, 0, len(argSet))
	for k := range argSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = normalizeArg(argSet[col])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return sql, args
}

// insertRelationSQL builds one multi-row INSERT of (A, B) id pairs into the
// relation's join table.
func insertRelationSQL(relation string, pairs []importer.RelationPair) (string, []any) {
	if len(pairs) == 0 {
		return "", nil
	}

	rows := make([]string, len(pairs))
	args := make([]any, 0, len(pairs)*2)
	for i, p := range pairs {
		rows[i] = fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, p.A, p.B)
	}

	sql := fmt.Sprintf(`INSERT INTO %s ("A", "B") VALUES %s`,
		quoteIdent("_"+relation), strings.Join(rows, ", "))
	return sql, args
}

// insertListValueSQL builds an INSERT of one list value into a scalar-list
// table. Position is the value's 1-based ordinal within its record.
func insertListValueSQL(table, nodeID string, position int, value any) (string, []any) {
	sql := fmt.Sprintf(`INSERT INTO %s ("nodeId", "position", "value") VALUES ($1, $2, $3)`,
		quoteIdent(table))
	return sql, []any{nodeID, position, normalizeArg(value)}
}

// normalizeArg converts decoded JSON values pgx cannot encode directly
// (objects and arrays) into JSON text.
func normalizeArg(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		text, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(text)
	default:
		return v
	}
}

// quoteIdent quotes a SQL identifier, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
