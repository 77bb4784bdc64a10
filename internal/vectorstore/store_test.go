package vectorstore

import (
	"path/filepath"
	"testing"

	"codegraph/internal/types"
)

func testID(t *testing.T, name string) types.NodeID {
	t.Helper()
	return types.NewNodeID(name+".go", types.KindFunction, 0, 10)
}

func openTestStore(t *testing.T, variant Variant) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(path, 4, variant, Params{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExactPutSearch(t *testing.T) {
	s := openTestStore(t, VariantExact)
	a := testID(t, "a")
	b := testID(t, "b")

	if err := s.Put(a, []float32{1, 0, 0, 0}, "fp-a"); err != nil {
		t.Fatalf("Put a: %v", err)
	}
	if err := s.Put(b, []float32{0, 1, 0, 0}, "fp-b"); err != nil {
		t.Fatalf("Put b: %v", err)
	}

	matches, err := s.Search([]float32{1, 0, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].NodeID != a {
		t.Fatalf("expected nearest match a, got %+v", matches)
	}
}

func TestPutDimensionMismatch(t *testing.T) {
	s := openTestStore(t, VariantExact)
	err := s.Put(testID(t, "a"), []float32{1, 2}, "fp")
	if !types.Is(err, types.KindVectorError) {
		t.Fatalf("expected VectorError, got %v", err)
	}
}

func TestDeleteRemovesFromSearch(t *testing.T) {
	s := openTestStore(t, VariantExact)
	a := testID(t, "a")
	if err := s.Put(a, []float32{1, 0, 0, 0}, "fp"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(a); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	matches, err := s.Search([]float32{1, 0, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches after delete, got %+v", matches)
	}
}

func TestSearchFilterExcludesNodes(t *testing.T) {
	s := openTestStore(t, VariantExact)
	a := testID(t, "a")
	b := testID(t, "b")
	if err := s.Put(a, []float32{1, 0, 0, 0}, "fp-a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(b, []float32{0.9, 0.1, 0, 0}, "fp-b"); err != nil {
		t.Fatal(err)
	}

	matches, err := s.Search([]float32{1, 0, 0, 0}, 5, func(id types.NodeID) bool { return id != a })
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range matches {
		if m.NodeID == a {
			t.Fatalf("filter should have excluded a, got %+v", matches)
		}
	}
}

func TestSearchZeroKReturnsEmptyWithoutError(t *testing.T) {
	s := openTestStore(t, VariantExact)
	if err := s.Put(testID(t, "a"), []float32{1, 0, 0, 0}, "fp-a"); err != nil {
		t.Fatal(err)
	}

	matches, err := s.Search([]float32{1, 0, 0, 0}, 0, nil)
	if err != nil {
		t.Fatalf("Search with k=0: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected an empty result for k=0, got %+v", matches)
	}
}

func TestGraphVariantSearch(t *testing.T) {
	s := openTestStore(t, VariantGraph)
	for i, v := range [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}} {
		id := testID(t, string(rune('a'+i)))
		if err := s.Put(id, v, "fp"); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	matches, err := s.Search([]float32{1, 0, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
}

func TestInvertedVariantRebuild(t *testing.T) {
	s := openTestStore(t, VariantInverted)
	for i, v := range [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}} {
		id := testID(t, string(rune('a'+i)))
		if err := s.Put(id, v, "fp"); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	if err := s.Rebuild(Params{NumLists: 2, Probes: 2}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	matches, err := s.Search([]float32{1, 0, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected a match after rebuild")
	}
}

type fakeGraph struct{ missing map[types.NodeID]bool }

func (f fakeGraph) GetNode(id types.NodeID) (types.Node, error) {
	if f.missing[id] {
		return types.Node{}, types.ErrNotFound
	}
	return types.Node{ID: id}, nil
}

func TestReconcileDropsOrphans(t *testing.T) {
	s := openTestStore(t, VariantExact)
	a := testID(t, "a")
	b := testID(t, "b")
	if err := s.Put(a, []float32{1, 0, 0, 0}, "fp"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(b, []float32{0, 1, 0, 0}, "fp"); err != nil {
		t.Fatal(err)
	}

	dropped, err := s.Reconcile(fakeGraph{missing: map[types.NodeID]bool{b: true}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", stats.Count)
	}
}
