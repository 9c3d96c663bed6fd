package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeExecutor records executed mutations and fails the ones its fail
// function selects. Safe for concurrent use.
type fakeExecutor struct {
	mu       sync.Mutex
	executed []Mutation
	fail     func(m Mutation) error
}

func (f *fakeExecutor) Execute(ctx context.Context, m Mutation, transactional bool) error {
	if transactional {
		return errors.New("engine must dispatch non-transactionally")
	}

	f.mu.Lock()
	f.executed = append(f.executed, m)
	f.mu.Unlock()

	if f.fail != nil {
		return f.fail(m)
	}
	return nil
}

func newService(t *testing.T, exec Executor) *Service {
	t.Helper()
	return NewService(testCatalog(t), exec, 4)
}

func TestImport_SuccessfulNodes(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "nodes",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "title": "a"},
			{"_typeName": "Todo", "id": "t2", "title": "b"}
		]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("report = %v, want empty", report)
	}
	if len(exec.executed) != 1 {
		t.Fatalf("executed %d commands, want 1", len(exec.executed))
	}
	if create := exec.executed[0].(BatchedCreate); len(create.ArgSets) != 2 {
		t.Errorf("ArgSets = %d, want 2", len(create.ArgSets))
	}
}

func TestImport_MalformedBundleIsFatal(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newService(t, exec)

	_, err := svc.Import(context.Background(), []byte(`{"valueType": "nodes"}`))
	if err == nil {
		t.Fatal("Import() expected error for malformed bundle")
	}
	if len(exec.executed) != 0 {
		t.Errorf("executed %d commands, want 0", len(exec.executed))
	}
}

func TestImport_UnknownFieldDoesNotBlockSiblings(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "nodes",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "priority": 3},
			{"_typeName": "Todo", "id": "t2", "title": "b"}
		]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if len(report) != 1 || !strings.Contains(report[0], "priority") {
		t.Errorf("report = %v, want one priority descriptor", report)
	}

	// The valid sibling still batches and executes.
	if len(exec.executed) != 1 {
		t.Fatalf("executed %d commands, want 1", len(exec.executed))
	}
	create := exec.executed[0].(BatchedCreate)
	if len(create.ArgSets) != 1 || create.ArgSets[0]["title"] != "b" {
		t.Errorf("ArgSets = %v, want only t2", create.ArgSets)
	}
}

func TestImport_PartialExecutionFailure(t *testing.T) {
	// Three models fail independently: only failing batches contribute
	// descriptors, and all commands run regardless of sibling failures.
	exec := &fakeExecutor{
		fail: func(m Mutation) error {
			create := m.(BatchedCreate)
			if create.Model.Name == "Comment" {
				return errors.New("insert rejected")
			}
			return nil
		},
	}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "nodes",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "title": "a"},
			{"_typeName": "Comment", "id": "c1", "text": "x"}
		]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if len(report) != 1 || report[0] != "insert rejected" {
		t.Errorf("report = %v, want [insert rejected]", report)
	}
	if len(exec.executed) != 2 {
		t.Errorf("executed %d commands, want 2", len(exec.executed))
	}
}

func TestImport_CompositeExecutorErrorIsSplit(t *testing.T) {
	exec := &fakeExecutor{
		fail: func(m Mutation) error {
			return errors.New(JoinErrors([]string{"row 1 rejected", "row 2 rejected"}))
		},
	}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "nodes",
		"values": {"elements": [{"_typeName": "Todo", "id": "t1", "title": "a"}]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(report) != 2 || report[0] != "row 1 rejected" || report[1] != "row 2 rejected" {
		t.Errorf("report = %v, want both split descriptors", report)
	}
}

func TestImport_Relations(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "relations",
		"values": {"elements": [
			[
				{"_typeName": "Todo", "id": "t1", "fieldName": "comments"},
				{"_typeName": "Comment", "id": "c1"}
			],
			[
				{"_typeName": "Comment", "id": "c2"},
				{"_typeName": "Todo", "id": "t2"}
			]
		]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	// Second record has no owning side: one descriptor, sibling executes.
	if len(report) != 1 || !strings.Contains(report[0], "neither side sets fieldName") {
		t.Errorf("report = %v", report)
	}
	if len(exec.executed) != 1 {
		t.Fatalf("executed %d commands, want 1", len(exec.executed))
	}
	rows := exec.executed[0].(BatchedRelationRows)
	if rows.Pairs[0] != (RelationPair{A: "t1", B: "c1"}) {
		t.Errorf("Pairs = %v", rows.Pairs)
	}
}

func TestImport_Lists(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newService(t, exec)

	data := []byte(`{
		"valueType": "lists",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "tags": ["a"], "reminders": ["2017-12-05T12:34:23.000Z"]}
		]}
	}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("report = %v, want empty", report)
	}
	// One command per distinct table.
	if len(exec.executed) != 2 {
		t.Fatalf("executed %d commands, want 2", len(exec.executed))
	}
}

func TestDispatch_AllCommandsRunConcurrently(t *testing.T) {
	// Many batches, half failing: every command runs, aggregation carries
	// only the failing half, regardless of completion order.
	exec := &fakeExecutor{
		fail: func(m Mutation) error {
			push := m.(BatchedListPush)
			if strings.Contains(push.Table, "reminders") {
				return errors.New("push failed: " + push.Table)
			}
			return nil
		},
	}
	svc := newService(t, exec)

	var elements []string
	elements = append(elements,
		`{"_typeName": "Todo", "id": "t1", "tags": ["a"], "reminders": ["x"]}`,
		`{"_typeName": "Comment", "id": "c1"}`,
	)
	data := []byte(`{"valueType": "lists", "values": {"elements": [` + strings.Join(elements, ",") + `]}}`)

	report, err := svc.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(report) != 1 || !strings.Contains(report[0], "reminders") {
		t.Errorf("report = %v", report)
	}
	if len(exec.executed) != 2 {
		t.Errorf("executed %d commands, want 2", len(exec.executed))
	}
}
