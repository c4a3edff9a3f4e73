package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"field1":"Harper 17","field2":42},{"field1":"Rowan 3","field2":7}]`))
	}))
	defer srv.Close()

	docs, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].Field1 != "Harper 17" || docs[0].Field2 != 42 {
		t.Errorf("first doc = %+v", docs[0])
	}
}

func TestFetch_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(100, 7)
	b := Generate(100, 7)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed must produce identical documents")
	}

	c := Generate(100, 8)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different documents")
	}
}

func TestGenerate_Shape(t *testing.T) {
	docs := Generate(10, 1)
	if len(docs) != 10 {
		t.Fatalf("len = %d, want 10", len(docs))
	}
	for i, d := range docs {
		if d.Field1 == "" {
			t.Errorf("doc %d has empty field1", i)
		}
	}
}
