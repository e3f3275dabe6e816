// Package render turns a graphstore graph plus analysis and traversal
// results into Graphviz output: a DOT description and rendered SVG/PNG
// bytes. It is a consumer of the core results; nothing here feeds back
// into the graph.
package render

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/traverse"
)

// maxLabeledNodes suppresses node labels beyond this size to keep large
// renders legible.
const maxLabeledNodes = 50

// componentPalette cycles per component index for node fill colors.
var componentPalette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
}

// treePalette cycles per BFS source for highlighted tree edges.
var treePalette = []string{"red", "blue", "green", "orange", "purple", "brown"}

// Options configures DOT generation.
type Options struct {
	// Report supplies component assignments for node coloring and the
	// counts shown in the title. Optional.
	Report *analyze.Report
	// Trees supplies BFS parent edges to highlight, one color per
	// source. Optional.
	Trees map[graphstore.NodeID]*traverse.Tree
}

// ToDOT converts g to Graphviz DOT format for an undirected layout.
//
// Nodes are filled by component, isolated nodes are drawn as boxes, BFS
// sources are emphasized, and every edge on a BFS tree is colored by its
// source. Output is deterministic: nodes follow insertion order and
// sources are sorted.
func ToDOT(g *graphstore.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", title(g, opts.Report))
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10];\n")
	buf.WriteString("\n")

	showLabels := g.NodeCount() <= maxLabeledNodes
	sources := sortedSources(opts.Trees)
	sourceColor := make(map[graphstore.NodeID]string, len(sources))
	for i, src := range sources {
		sourceColor[src] = treePalette[i%len(treePalette)]
	}

	for _, id := range g.Nodes() {
		attrs := nodeAttrs(g, id, opts.Report, sourceColor, showLabels)
		fmt.Fprintf(&buf, "  %q [%s];\n", id.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if color, on := treeEdgeColor(e, sources, opts.Trees, sourceColor); on {
			fmt.Fprintf(&buf, "  %q -- %q [color=%s, penwidth=2];\n", e.U.String(), e.V.String(), color)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [color=gray];\n", e.U.String(), e.V.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func title(g *graphstore.Graph, rep *analyze.Report) string {
	if rep == nil {
		return fmt.Sprintf("%d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	plural := "s"
	if len(rep.Components) == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d nodes, %d edges, %d component%s",
		rep.Nodes, rep.Edges, len(rep.Components), plural)
}

func nodeAttrs(g *graphstore.Graph, id graphstore.NodeID, rep *analyze.Report, sourceColor map[graphstore.NodeID]string, showLabels bool) []string {
	var attrs []string
	if showLabels {
		attrs = append(attrs, fmt.Sprintf("label=%q", id.String()))
	} else {
		attrs = append(attrs, `label=""`, "width=0.15", "height=0.15")
	}

	if rep != nil {
		if comp, ok := rep.ComponentOf[id]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", componentPalette[comp%len(componentPalette)]))
		}
	}
	if g.Degree(id) == 0 {
		attrs = append(attrs, "shape=box")
	}
	if _, isSource := sourceColor[id]; isSource {
		attrs = append(attrs, "fillcolor=yellow", "penwidth=2")
	}
	return attrs
}

// treeEdgeColor reports whether e is a parent edge of some BFS tree and
// the color of the first matching source (sources checked in sorted
// order so the choice is stable).
func treeEdgeColor(e graphstore.Edge, sources []graphstore.NodeID, trees map[graphstore.NodeID]*traverse.Tree, colors map[graphstore.NodeID]string) (string, bool) {
	for _, src := range sources {
		t := trees[src]
		if p, ok := t.Parent(e.U); ok && p == e.V {
			return colors[src], true
		}
		if p, ok := t.Parent(e.V); ok && p == e.U {
			return colors[src], true
		}
	}
	return "", false
}

func sortedSources(trees map[graphstore.NodeID]*traverse.Tree) []graphstore.NodeID {
	sources := make([]graphstore.NodeID, 0, len(trees))
	for src := range trees {
		sources = append(sources, src)
	}
	slices.SortFunc(sources, graphstore.NodeID.Compare)
	return sources
}

// SVG renders a DOT graph to SVG bytes using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG bytes using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
