package importer

import (
	"testing"

	"github.com/sqlgraph/bulkimport/internal/schema"
)

// testCatalog builds the two-model schema used across the importer tests:
// a Todo model owning side A of TodoToComment, and a Comment model on side B.
func testCatalog(t *testing.T) *schema.StaticCatalog {
	t.Helper()

	todo := &schema.Model{
		Name: "Todo",
		Fields: []schema.Field{
			{Name: "title", Type: schema.TypeString},
			{Name: "done", Type: schema.TypeBoolean},
			{Name: "createdAt", Type: schema.TypeDateTime},
			{Name: "meta", Type: schema.TypeJSON},
			{Name: "tags", Type: schema.TypeString, IsList: true},
			{Name: "reminders", Type: schema.TypeDateTime, IsList: true},
			{Name: "attachments", Type: schema.TypeJSON, IsList: true},
			{Name: "comments", Type: schema.TypeID, Relation: &schema.Relation{Name: "TodoToComment"}, RelationSide: schema.SideA},
		},
	}
	comment := &schema.Model{
		Name: "Comment",
		Fields: []schema.Field{
			{Name: "text", Type: schema.TypeString},
			{Name: "todo", Type: schema.TypeID, Relation: &schema.Relation{Name: "TodoToComment"}, RelationSide: schema.SideB},
		},
	}

	catalog, err := schema.NewCatalog(todo, comment)
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return catalog
}
