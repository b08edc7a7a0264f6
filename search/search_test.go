package search

import (
	"context"
	"testing"

	"study-abroad-backend/internal/testdb"
)

func newMemIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestBleveSearchPrograms(t *testing.T) {
	idx := newMemIndex(t)
	ctx := context.Background()

	docs := []ProgramDoc{
		{ID: "p1", Title: "Robotics Exchange", University: "Kyoto University", Country: "Japan"},
		{ID: "p2", Title: "Marine Biology Semester", University: "University of Cape Town", Country: "South Africa"},
		{ID: "p3", Title: "Renaissance Art", University: "University of Florence", Country: "Italy", Description: "Sculpture and painting"},
	}
	if err := idx.IndexPrograms(ctx, docs); err != nil {
		t.Fatalf("index: %v", err)
	}

	cases := []struct {
		query string
		want  string
	}{
		{"robotics", "p1"},
		{"robo", "p1"},
		{"japan", "p1"},
		{"marine", "p2"},
		{"sculpture", "p3"},
		{"florenze", "p3"},
	}
	for _, tc := range cases {
		hits, err := idx.SearchPrograms(ctx, tc.query, 10)
		if err != nil {
			t.Fatalf("search %q: %v", tc.query, err)
		}
		if len(hits) == 0 || hits[0].ID != tc.want {
			t.Fatalf("search %q: expected %s first, got %+v", tc.query, tc.want, hits)
		}
	}

	all, err := idx.SearchPrograms(ctx, "", 10)
	if err != nil || len(all) != 3 {
		t.Fatalf("empty query should match all, got %d (%v)", len(all), err)
	}
}

func TestBleveDeleteAndReset(t *testing.T) {
	idx := newMemIndex(t)
	ctx := context.Background()

	if err := idx.IndexProgram(ctx, ProgramDoc{ID: "p1", Title: "Robotics Exchange"}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := idx.DeleteProgram(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	hits, _ := idx.SearchPrograms(ctx, "robotics", 10)
	if len(hits) != 0 {
		t.Fatalf("deleted program still found: %+v", hits)
	}

	idx.IndexProgram(ctx, ProgramDoc{ID: "p2", Title: "Design"})
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ := idx.SearchPrograms(ctx, "", 10)
	if len(all) != 0 {
		t.Fatalf("reset index should be empty, got %d", len(all))
	}
}

func TestReindexFromDatabase(t *testing.T) {
	db := testdb.Open(t)
	campus := testdb.NewCampus(t, db)
	idx := newMemIndex(t)
	idx.IndexProgram(context.Background(), ProgramDoc{ID: "stale", Title: "Robotics Removed"})

	if err := Reindex(context.Background(), db, idx); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	hits, err := idx.SearchPrograms(context.Background(), "kyoto", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != campus.Program.ID.String() {
		t.Fatalf("expected only the campus program, got %+v", hits)
	}
}
