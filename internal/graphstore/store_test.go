package graphstore

import (
	"path/filepath"
	"testing"

	"codegraph/internal/types"
)

func testNode(t *testing.T, path string, kind types.NodeKind, start, end int, name string) types.Node {
	t.Helper()
	return types.Node{
		ID:       types.NewNodeID(path, kind, start, end),
		Kind:     kind,
		Name:     name,
		Language: "go",
		Location: types.Location{File: path, StartByte: start, EndByte: end, StartLine: 1, EndLine: 2},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGetNode(t *testing.T) {
	s := openTestStore(t)
	n := testNode(t, "a.go", types.KindFunction, 0, 10, "Foo")

	if err := s.PutNode(n); err != nil {
		t.Fatalf("PutNode: %v", err)
	}
	got, err := s.GetNode(n.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.Name != "Foo" || got.Kind != types.KindFunction {
		t.Fatalf("unexpected node: %+v", got)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetNode(types.NewNodeID("missing.go", types.KindFunction, 0, 1))
	if !types.Is(err, types.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestPutNodePreservesCreatedAtOnOverwrite(t *testing.T) {
	s := openTestStore(t)
	n := testNode(t, "a.go", types.KindFunction, 0, 10, "Foo")
	n.CreatedAt = 100
	if err := s.PutNode(n); err != nil {
		t.Fatalf("PutNode: %v", err)
	}

	n2 := n
	n2.Name = "Renamed"
	n2.CreatedAt = 999
	if err := s.PutNode(n2); err != nil {
		t.Fatalf("PutNode overwrite: %v", err)
	}

	got, err := s.GetNode(n.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("expected overwritten name, got %q", got.Name)
	}
	if got.CreatedAt != 100 {
		t.Fatalf("expected preserved created_at 100, got %d", got.CreatedAt)
	}
}

func TestPutEdgeIdempotent(t *testing.T) {
	s := openTestStore(t)
	a := testNode(t, "a.go", types.KindFunction, 0, 10, "A")
	b := testNode(t, "a.go", types.KindFunction, 20, 30, "B")
	if err := s.PutNode(a); err != nil {
		t.Fatal(err)
	}
	if err := s.PutNode(b); err != nil {
		t.Fatal(err)
	}

	e := types.Edge{Source: a.ID, Target: b.ID, Kind: types.EdgeCalls, Confidence: 0.9}
	if err := s.PutEdge(e); err != nil {
		t.Fatalf("PutEdge: %v", err)
	}
	e.Confidence = 0.5
	if err := s.PutEdge(e); err != nil {
		t.Fatalf("PutEdge update: %v", err)
	}

	out, err := s.Neighbors(a.ID, types.EdgeCalls, DirOut)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 edge after idempotent put, got %d", len(out))
	}
	if out[0].Confidence != 0.5 {
		t.Fatalf("expected updated confidence 0.5, got %f", out[0].Confidence)
	}
}

func TestNeighborsBothDirections(t *testing.T) {
	s := openTestStore(t)
	a := testNode(t, "a.go", types.KindFunction, 0, 10, "A")
	b := testNode(t, "a.go", types.KindFunction, 20, 30, "B")
	c := testNode(t, "a.go", types.KindFunction, 40, 50, "C")
	for _, n := range []types.Node{a, b, c} {
		if err := s.PutNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutEdge(types.Edge{Source: a.ID, Target: b.ID, Kind: types.EdgeCalls, Confidence: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutEdge(types.Edge{Source: c.ID, Target: a.ID, Kind: types.EdgeCalls, Confidence: 1}); err != nil {
		t.Fatal(err)
	}

	both, err := s.Neighbors(a.ID, types.EdgeCalls, DirBoth)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected 2 edges touching a, got %d", len(both))
	}
}

func TestDeleteSubtreeCascade(t *testing.T) {
	s := openTestStore(t)
	parent := testNode(t, "a.go", types.KindClass, 0, 100, "P")
	child := testNode(t, "a.go", types.KindMethod, 10, 20, "C")
	if err := s.PutNode(parent); err != nil {
		t.Fatal(err)
	}
	if err := s.PutNode(child); err != nil {
		t.Fatal(err)
	}
	if err := s.PutEdge(types.Edge{Source: parent.ID, Target: child.ID, Kind: types.EdgeContains, Confidence: 1}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteSubtree(parent.ID, true); err != nil {
		t.Fatalf("DeleteSubtree: %v", err)
	}

	if _, err := s.GetNode(parent.ID); !types.Is(err, types.KindNotFound) {
		t.Fatalf("expected parent gone, got %v", err)
	}
	if _, err := s.GetNode(child.ID); !types.Is(err, types.KindNotFound) {
		t.Fatalf("expected cascaded child gone, got %v", err)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	n := testNode(t, "a.go", types.KindFunction, 0, 10, "Foo")

	err := s.Transaction(func(tx *Tx) error {
		if putErr := tx.PutNode(n); putErr != nil {
			return putErr
		}
		return types.New(types.KindInternal, "boom")
	})
	if err == nil {
		t.Fatal("expected transaction error")
	}

	if _, getErr := s.GetNode(n.ID); !types.Is(getErr, types.KindNotFound) {
		t.Fatalf("expected rollback to leave node absent, got %v", getErr)
	}
}

func TestFindByName(t *testing.T) {
	s := openTestStore(t)
	n := testNode(t, "a.go", types.KindFunction, 0, 10, "Foo")
	if err := s.PutNode(n); err != nil {
		t.Fatal(err)
	}
	ids, err := s.FindByName("go", "Foo")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(ids) != 1 || ids[0] != n.ID {
		t.Fatalf("unexpected FindByName result: %v", ids)
	}
}
