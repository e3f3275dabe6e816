package traverse

import (
	"context"
	"errors"
	"testing"

	"github.com/StormHooper/erdograph/pkg/gen"
	"github.com/StormHooper/erdograph/pkg/graphstore"
)

// buildGraph constructs a store from explicit edges over 0..n-1.
func buildGraph(t *testing.T, n int, edges [][2]int64) *graphstore.Graph {
	t.Helper()
	g := graphstore.New()
	for i := 0; i < n; i++ {
		if err := g.AddNode(graphstore.IntID(int64(i))); err != nil {
			t.Fatalf("AddNode(%d): %v", i, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(graphstore.IntID(e[0]), graphstore.IntID(e[1])); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestRunDistances(t *testing.T) {
	// 0-1-2-3 path plus a shortcut 0-3.
	g := buildGraph(t, 4, [][2]int64{{0, 1}, {1, 2}, {2, 3}, {0, 3}})

	trees, skipped, err := Run(context.Background(), g, []graphstore.NodeID{graphstore.IntID(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}

	tree := trees[graphstore.IntID(0)]
	if tree == nil {
		t.Fatal("no tree for source 0")
	}
	wantDist := map[int64]int{0: 0, 1: 1, 2: 2, 3: 1}
	for node, want := range wantDist {
		if got := tree.Dist[graphstore.IntID(node)]; got != want {
			t.Errorf("Dist[%d] = %d, want %d", node, got, want)
		}
	}
}

func TestRunMultipleSources(t *testing.T) {
	g := buildGraph(t, 5, [][2]int64{{0, 1}, {1, 2}, {3, 4}})

	sources := []graphstore.NodeID{graphstore.IntID(0), graphstore.IntID(3)}
	trees, _, err := Run(context.Background(), g, sources)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("len(trees) = %d, want 2", len(trees))
	}

	// Trees are independent: source 0 never reaches the 3-4 component.
	if trees[graphstore.IntID(0)].Reached(graphstore.IntID(4)) {
		t.Error("tree from 0 reached node 4 across components")
	}
	if !trees[graphstore.IntID(3)].Reached(graphstore.IntID(4)) {
		t.Error("tree from 3 did not reach node 4")
	}
}

func TestRunSkipsUnknownSources(t *testing.T) {
	g, err := gen.Generate(50, 1.5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sources := []graphstore.NodeID{graphstore.IntID(0), graphstore.IntID(999)}
	trees, skipped, err := Run(context.Background(), g, sources)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != graphstore.IntID(999) {
		t.Errorf("skipped = %v, want [999]", skipped)
	}
	if _, ok := trees[graphstore.IntID(0)]; !ok {
		t.Error("valid source 0 missing from results")
	}
	if _, ok := trees[graphstore.IntID(999)]; ok {
		t.Error("unknown source 999 has a tree")
	}
}

func TestRunDeduplicatesSources(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{0, 1}})
	src := graphstore.IntID(0)

	trees, _, err := Run(context.Background(), g, []graphstore.NodeID{src, src, src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(trees) != 1 {
		t.Errorf("len(trees) = %d, want 1", len(trees))
	}
}

func TestPath(t *testing.T) {
	g := buildGraph(t, 5, [][2]int64{{0, 1}, {1, 2}, {2, 3}})

	trees, _, err := Run(context.Background(), g, []graphstore.NodeID{graphstore.IntID(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tree := trees[graphstore.IntID(0)]

	path, err := tree.Path(graphstore.IntID(3))
	if err != nil {
		t.Fatalf("Path(3): %v", err)
	}
	want := []int64{0, 1, 2, 3}
	if len(path) != len(want) {
		t.Fatalf("Path(3) = %v, want %v", path, want)
	}
	for i, n := range want {
		if path[i] != graphstore.IntID(n) {
			t.Errorf("path[%d] = %v, want %d", i, path[i], n)
		}
	}

	// Source path is the singleton.
	self, err := tree.Path(graphstore.IntID(0))
	if err != nil || len(self) != 1 || self[0] != graphstore.IntID(0) {
		t.Errorf("Path(0) = %v, %v, want [0]", self, err)
	}

	// Node 4 is isolated.
	if _, err := tree.Path(graphstore.IntID(4)); !errors.Is(err, ErrUnreachable) {
		t.Errorf("Path(4) error = %v, want ErrUnreachable", err)
	}
}

func TestRunTieBreaksFollowInsertionOrder(t *testing.T) {
	// Node 3 is adjacent to both 1 and 2 at distance 2 from 0; edge 1-3
	// was inserted first, so 1 must win the parent slot.
	g := buildGraph(t, 4, [][2]int64{{0, 1}, {0, 2}, {1, 3}, {2, 3}})

	trees, _, err := Run(context.Background(), g, []graphstore.NodeID{graphstore.IntID(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, ok := trees[graphstore.IntID(0)].Parent(graphstore.IntID(3))
	if !ok || p != graphstore.IntID(1) {
		t.Errorf("Parent(3) = %v, %v, want 1", p, ok)
	}
}

func TestRunCancelled(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{0, 1}, {1, 2}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, g, []graphstore.NodeID{graphstore.IntID(0)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run on cancelled context = %v, want context.Canceled", err)
	}
}
