package importer

import (
	"testing"
)

func TestDecodeBundle_Nodes(t *testing.T) {
	data := []byte(`{
		"valueType": "nodes",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "title": "buy milk", "done": false},
			{"_typeName": "Todo", "id": "t2", "title": "walk dog"}
		]}
	}`)

	b, err := DecodeBundle(data)
	if err != nil {
		t.Fatalf("DecodeBundle() error = %v", err)
	}
	if b.Kind != KindNodes {
		t.Errorf("Kind = %q, want nodes", b.Kind)
	}
	if len(b.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(b.Nodes))
	}

	n := b.Nodes[0]
	if n.TypeName != "Todo" || n.ID != "t1" {
		t.Errorf("node = %+v, want Todo:t1", n)
	}
	if _, ok := n.Values["_typeName"]; ok {
		t.Error("Values must not contain _typeName")
	}
	if _, ok := n.Values["id"]; ok {
		t.Error("Values must not contain id")
	}
	if n.Values["title"] != "buy milk" {
		t.Errorf("Values[title] = %v, want buy milk", n.Values["title"])
	}
	if n.Values["done"] != false {
		t.Errorf("Values[done] = %v, want false", n.Values["done"])
	}
}

func TestDecodeBundle_Relations(t *testing.T) {
	data := []byte(`{
		"valueType": "relations",
		"values": {"elements": [
			[
				{"_typeName": "Todo", "id": "t1", "fieldName": "comments"},
				{"_typeName": "Comment", "id": "c1"}
			]
		]}
	}`)

	b, err := DecodeBundle(data)
	if err != nil {
		t.Fatalf("DecodeBundle() error = %v", err)
	}
	if len(b.Relations) != 1 {
		t.Fatalf("len(Relations) = %d, want 1", len(b.Relations))
	}

	rel := b.Relations[0]
	if rel.Left.Ref != (EntityRef{TypeName: "Todo", ID: "t1"}) {
		t.Errorf("Left.Ref = %+v", rel.Left.Ref)
	}
	if rel.Left.FieldName != "comments" {
		t.Errorf("Left.FieldName = %q, want comments", rel.Left.FieldName)
	}
	if rel.Right.FieldName != "" {
		t.Errorf("Right.FieldName = %q, want empty", rel.Right.FieldName)
	}
}

func TestDecodeBundle_Lists(t *testing.T) {
	data := []byte(`{
		"valueType": "lists",
		"values": {"elements": [
			{"_typeName": "Todo", "id": "t1", "tags": ["a", "b"], "scores": [1, 2, 3]}
		]}
	}`)

	b, err := DecodeBundle(data)
	if err != nil {
		t.Fatalf("DecodeBundle() error = %v", err)
	}
	if len(b.Lists) != 1 {
		t.Fatalf("len(Lists) = %d, want 1", len(b.Lists))
	}

	list := b.Lists[0]
	if list.Ref != (EntityRef{TypeName: "Todo", ID: "t1"}) {
		t.Errorf("Ref = %+v", list.Ref)
	}
	if len(list.Values) != 2 {
		t.Errorf("len(Values) = %d, want 2", len(list.Values))
	}
	if got := list.Values["tags"]; len(got) != 2 || got[0] != "a" {
		t.Errorf("Values[tags] = %v", got)
	}
}

func TestDecodeBundle_Fatal(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `nope`},
		{"missing valueType", `{"values": {"elements": []}}`},
		{"missing values", `{"valueType": "nodes"}`},
		{"missing elements", `{"valueType": "nodes", "values": {}}`},
		{"unknown valueType", `{"valueType": "edges", "values": {"elements": []}}`},
		{"node missing _typeName", `{"valueType": "nodes", "values": {"elements": [{"id": "t1"}]}}`},
		{"node missing id", `{"valueType": "nodes", "values": {"elements": [{"_typeName": "Todo"}]}}`},
		{"node not an object", `{"valueType": "nodes", "values": {"elements": [42]}}`},
		{"relation not an array", `{"valueType": "relations", "values": {"elements": [{}]}}`},
		{"relation one side", `{"valueType": "relations", "values": {"elements": [[{"_typeName": "Todo", "id": "t1"}]]}}`},
		{"relation side missing id", `{"valueType": "relations", "values": {"elements": [[{"_typeName": "Todo", "id": "t1"}, {"_typeName": "Comment"}]]}}`},
		{"list field not a sequence", `{"valueType": "lists", "values": {"elements": [{"_typeName": "Todo", "id": "t1", "tags": "a"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBundle([]byte(tt.data)); err == nil {
				t.Error("DecodeBundle() expected error")
			}
		})
	}
}

func TestDecodeBundle_EmptyElements(t *testing.T) {
	b, err := DecodeBundle([]byte(`{"valueType": "nodes", "values": {"elements": []}}`))
	if err != nil {
		t.Fatalf("DecodeBundle() error = %v", err)
	}
	if len(b.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0", len(b.Nodes))
	}
}
