package gml

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/traverse"
	"github.com/StormHooper/erdograph/pkg/xerrors"
)

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

func TestRoundTrip(t *testing.T) {
	g := buildGraph(t, 4, [][2]int64{{0, 1}, {1, 2}, {2, 3}, {0, 3}})
	g.SetAttr(graphstore.IntID(1), "label", graphstore.Str("hub node"))
	g.SetAttr(graphstore.IntID(2), ComponentKey, graphstore.Int(0))
	g.SetAttr(graphstore.IntID(2), DistanceKey(graphstore.IntID(0)), graphstore.Int(2))
	g.SetAttr(graphstore.IntID(2), ParentKey(graphstore.IntID(0)), graphstore.Ref(graphstore.IntID(1)))

	var buf strings.Builder
	if err := Write(g, &buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Fatalf("counts = %d/%d, want %d/%d",
			got.NodeCount(), got.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for i, id := range g.Nodes() {
		if got.Nodes()[i] != id {
			t.Errorf("node order[%d] = %v, want %v", i, got.Nodes()[i], id)
		}
	}
	for _, e := range g.Edges() {
		if !got.HasEdge(e.U, e.V) {
			t.Errorf("edge %v-%v lost in round-trip", e.U, e.V)
		}
	}

	if v, err := got.Attr(graphstore.IntID(1), "label"); err != nil {
		t.Errorf("label attr lost: %v", err)
	} else if s, _ := v.Text(); s != "hub node" {
		t.Errorf("label = %q, want %q", s, "hub node")
	}

	if v, err := got.Attr(graphstore.IntID(2), ParentKey(graphstore.IntID(0))); err != nil {
		t.Errorf("parent attr lost: %v", err)
	} else if ref, ok := v.Ref(); !ok || ref != graphstore.IntID(1) {
		t.Errorf("parent ref = %v, want 1", v)
	}

	if v, err := got.Attr(graphstore.IntID(2), DistanceKey(graphstore.IntID(0))); err != nil {
		t.Errorf("distance attr lost: %v", err)
	} else if n, ok := v.Int(); !ok || n != 2 {
		t.Errorf("distance = %v, want 2", v)
	}
}

func TestWriteIsByteStable(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{0, 1}, {1, 2}})
	g.SetAttr(graphstore.IntID(0), ComponentKey, graphstore.Int(0))

	var a, b strings.Builder
	if err := Write(g, &a, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(g, &b, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if a.String() != b.String() {
		t.Error("two writes of the same store differ")
	}
}

func TestReadTolerance(t *testing.T) {
	// Comments, graph-level keys, a nested ignored record, string ids.
	src := `# generated file
graph [
  directed 0
  meta [ tool "erdograph" ]
  node [ id 0 label "0" ]
  node [ id hub label "the hub" ]
  edge [ source 0 target hub ]
]`
	g, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", g.NodeCount(), g.EdgeCount())
	}
	if !g.HasEdge(graphstore.IntID(0), graphstore.StringID("hub")) {
		t.Error("edge 0-hub missing; id conversion must unify quoted and bare forms")
	}
	// The id-echoing label is dropped, the meaningful one kept.
	if _, err := g.Attr(graphstore.IntID(0), "label"); err == nil {
		t.Error("redundant label for node 0 was kept")
	}
	if v, err := g.Attr(graphstore.StringID("hub"), "label"); err != nil {
		t.Errorf("label for hub lost: %v", err)
	} else if s, _ := v.Text(); s != "the hub" {
		t.Errorf("hub label = %q, want %q", s, "the hub")
	}
}

func TestReadValueTyping(t *testing.T) {
	// Quoting decides the type for unknown keys: a quoted value is a
	// string even when it looks numeric, a bare word is typed by shape.
	src := `graph [
  node [
    id 0
    note "42"
    weight 7
    ratio 0.5
  ]
]`
	g, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	id := graphstore.IntID(0)

	v, err := g.Attr(id, "note")
	if err != nil {
		t.Fatalf("note attr: %v", err)
	}
	if s, ok := v.Text(); !ok || s != "42" {
		t.Errorf("note = %#v, want string %q", v, "42")
	}

	if v, _ := g.Attr(id, "weight"); v.Kind() != graphstore.KindInt {
		t.Errorf("weight kind = %v, want KindInt", v.Kind())
	}
	if v, _ := g.Attr(id, "ratio"); v.Kind() != graphstore.KindFloat {
		t.Errorf("ratio kind = %v, want KindFloat", v.Kind())
	}

	// The quoted numeric must re-serialize quoted and keep its type.
	var buf strings.Builder
	if err := Write(g, &buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `note "42"`) {
		t.Errorf("note not re-quoted:\n%s", buf.String())
	}
	got, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read round-trip: %v", err)
	}
	if v, _ := got.Attr(id, "note"); v.Kind() != graphstore.KindString {
		t.Errorf("note kind after round-trip = %v, want KindString", v.Kind())
	}
}

func TestReadParentNone(t *testing.T) {
	src := `graph [
  node [
    id 0
    parent_from_0 none
  ]
]`
	g, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	v, err := g.Attr(graphstore.IntID(0), "parent_from_0")
	if err != nil {
		t.Fatalf("parent attr: %v", err)
	}
	if v.Kind() != graphstore.KindNone {
		t.Errorf("parent kind = %v, want KindNone", v.Kind())
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "NoGraphRecord", src: `node [ id 0 ]`},
		{name: "MissingNodeID", src: `graph [ node [ label "x" ] ]`},
		{name: "MissingEdgeEndpoint", src: `graph [ node [ id 0 ] edge [ source 0 ] ]`},
		{name: "UnterminatedString", src: `graph [ node [ id 0 label "oops ] ]`},
		{name: "UnterminatedRecord", src: `graph [ node [ id 0 `},
		{name: "DuplicateNode", src: `graph [ node [ id 0 ] node [ id 0 ] ]`},
		{name: "EdgeToUnknownNode", src: `graph [ node [ id 0 ] edge [ source 0 target 9 ] ]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.src)); err == nil {
				t.Error("Read succeeded on malformed input")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.gml")
	_, err := Load(path)
	if !xerrors.Is(err, xerrors.CodeIO) {
		t.Fatalf("Load error = %v, want IO_ERROR", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the path", err.Error())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gml")
	if err := os.WriteFile(path, []byte("graph [ node [ oops ] ]"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if !xerrors.Is(err, xerrors.CodeFormat) {
		t.Fatalf("Load error = %v, want FORMAT_ERROR", err)
	}
}

func TestSaveLoad(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{0, 1}})
	path := filepath.Join(t.TempDir(), "out.gml")

	if err := Save(g, path, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NodeCount() != 3 || got.EdgeCount() != 1 {
		t.Errorf("counts = %d/%d, want 3/1", got.NodeCount(), got.EdgeCount())
	}
}

func TestAnnotate(t *testing.T) {
	g := buildGraph(t, 4, [][2]int64{{0, 1}, {1, 2}})

	rep, err := analyze.Compute(context.Background(), g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	trees, _, err := traverse.Run(context.Background(), g, []graphstore.NodeID{graphstore.IntID(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Stale computed attrs from an earlier pass must be replaced wholesale.
	g.SetAttr(graphstore.IntID(3), DistanceKey(graphstore.IntID(9)), graphstore.Int(7))

	if err := Annotate(g, rep, trees); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	if _, err := g.Attr(graphstore.IntID(3), DistanceKey(graphstore.IntID(9))); err == nil {
		t.Error("stale computed attribute survived Annotate")
	}

	// Node 2 is two hops from 0 via 1.
	if v, err := g.Attr(graphstore.IntID(2), DistanceKey(graphstore.IntID(0))); err != nil {
		t.Errorf("distance attr missing: %v", err)
	} else if n, _ := v.Int(); n != 2 {
		t.Errorf("distance = %d, want 2", n)
	}
	if v, err := g.Attr(graphstore.IntID(2), ParentKey(graphstore.IntID(0))); err != nil {
		t.Errorf("parent attr missing: %v", err)
	} else if ref, _ := v.Ref(); ref != graphstore.IntID(1) {
		t.Errorf("parent = %v, want 1", ref)
	}

	// The source has no parent attribute.
	if _, err := g.Attr(graphstore.IntID(0), ParentKey(graphstore.IntID(0))); err == nil {
		t.Error("source carries a parent attribute")
	}

	// Unreached node 3 has component but no distance.
	if _, err := g.Attr(graphstore.IntID(3), ComponentKey); err != nil {
		t.Errorf("component attr missing on isolated node: %v", err)
	}
	if _, err := g.Attr(graphstore.IntID(3), DistanceKey(graphstore.IntID(0))); err == nil {
		t.Error("unreached node carries a distance attribute")
	}
}

func TestComputedFilter(t *testing.T) {
	g := buildGraph(t, 2, [][2]int64{{0, 1}})
	g.SetAttr(graphstore.IntID(0), ComponentKey, graphstore.Int(0))
	g.SetAttr(graphstore.IntID(0), "label", graphstore.Str("kept"))

	var buf strings.Builder
	if err := Write(g, &buf, Computed); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, ComponentKey) {
		t.Error("computed attribute filtered out by Computed")
	}
	if !strings.Contains(out, `"kept"`) {
		t.Error("label should always be written")
	}
}

func TestKeyHelpers(t *testing.T) {
	src := graphstore.IntID(3)
	if got := DistanceKey(src); got != "distance_from_3" {
		t.Errorf("DistanceKey = %q", got)
	}
	if got := ParentKey(src); got != "parent_from_3" {
		t.Errorf("ParentKey = %q", got)
	}
	for key, want := range map[string]bool{
		"component_id":    true,
		"distance_from_0": true,
		"parent_from_x":   true,
		"label":           false,
		"weight":          false,
	} {
		if got := IsComputedKey(key); got != want {
			t.Errorf("IsComputedKey(%q) = %v, want %v", key, got, want)
		}
	}
}
