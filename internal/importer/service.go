package importer

// service.go wires the pipeline stages together and owns the concurrent
// dispatch of batched commands.
//
// Each import call fans out into one goroutine per batched command, bounded
// by the configured concurrency limit, and suspends at a join point until
// every command has completed. Commands share no mutable state and never
// wait on one another; a failing command does not stop its siblings, and
// nothing is retried or cancelled once dispatch begins.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlgraph/bulkimport/internal/logging"
	"github.com/sqlgraph/bulkimport/internal/schema"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent bounds command dispatch when no limit is configured.
const DefaultMaxConcurrent = 8

// Service runs bulk imports against a schema catalog and an executor.
type Service struct {
	catalog       schema.Catalog
	exec          Executor
	maxConcurrent int
}

// NewService creates an import service. maxConcurrent bounds how many
// batched commands execute at once; values below 1 fall back to
// DefaultMaxConcurrent.
func NewService(catalog schema.Catalog, exec Executor, maxConcurrent int) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Service{catalog: catalog, exec: exec, maxConcurrent: maxConcurrent}
}

// Import runs the full pipeline on a raw JSON bundle and returns the error
// report: one descriptor per record-level or batch-level failure, in record
// order followed by command order. An empty slice means no failures were
// observed.
//
// The returned error is non-nil only for a malformed bundle, which aborts
// the import without a partial report.
func (s *Service) Import(ctx context.Context, data []byte) ([]string, error) {
	bundle, err := DecodeBundle(data)
	if err != nil {
		return nil, err
	}
	return s.ImportBundle(ctx, bundle)
}

// ImportBundle runs validation, batching, execution and reporting on an
// already decoded bundle.
func (s *Service) ImportBundle(ctx context.Context, bundle *Bundle) ([]string, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		"import_id", uuid.NewString(),
		"kind", string(bundle.Kind),
	)

	var mutations []Mutation
	var recordErrs []string

	switch bundle.Kind {
	case KindNodes:
		valid, errs := validateNodes(s.catalog, bundle.Nodes)
		mutations = batchNodes(valid)
		recordErrs = errs
	case KindRelations:
		mutations, recordErrs = batchRelations(s.catalog, bundle.Relations)
	case KindLists:
		mutations, recordErrs = batchLists(s.catalog, bundle.Lists)
	default:
		return nil, fmt.Errorf("unknown valueType %q", bundle.Kind)
	}

	execErrs := s.dispatch(ctx, mutations)

	report := make([]string, 0, len(recordErrs)+len(execErrs))
	report = append(report, recordErrs...)
	report = append(report, execErrs...)

	logger.Info("import finished",
		"records", bundle.recordCount(),
		"batches", len(mutations),
		"failures", len(report),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// dispatch executes all batched commands concurrently and gathers their
// failure messages in command order. Outcomes land in a per-command slot,
// so aggregation is independent of completion order.
func (s *Service) dispatch(ctx context.Context, mutations []Mutation) []string {
	if len(mutations) == 0 {
		return nil
	}

	results := make([]error, len(mutations))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)

	for i, m := range mutations {
		i, m := i, m
		g.Go(func() error {
			results[i] = s.exec.Execute(ctx, m, false)
			return nil
		})
	}
	// Errors are collected per slot; Wait only joins.
	_ = g.Wait()

	var msgs []string
	for _, err := range results {
		if err != nil {
			msgs = append(msgs, SplitErrors(err.Error())...)
		}
	}
	return msgs
}

// recordCount returns how many records the bundle carries.
func (b *Bundle) recordCount() int {
	switch b.Kind {
	case KindNodes:
		return len(b.Nodes)
	case KindRelations:
		return len(b.Relations)
	case KindLists:
		return len(b.Lists)
	}
	return 0
}
