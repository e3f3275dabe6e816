// Package gml reads and writes the attributed-graph text format used for
// persistence. The format is GML-style, line oriented:
//
//	graph [
//	  node [
//	    id 0
//	    label "0"
//	    component_id 0
//	    distance_from_0 0
//	    parent_from_0 0
//	  ]
//	  edge [
//	    source 0
//	    target 1
//	  ]
//	]
//
// Graphs are always undirected; no directedness marker is written. Node
// attributes may appear in any order, and unknown keys are preserved as
// string attributes so they survive a round-trip.
//
// The package also owns the attribute schema: it is the single place that
// knows how traversal and analysis results flatten into per-node
// attribute keys ([ComponentKey], [DistanceKey], [ParentKey]).
package gml

import (
	"strings"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/traverse"
)

// ComponentKey is the attribute key recording a node's component index.
const ComponentKey = "component_id"

// Prefixes for the per-source BFS attribute keys.
const (
	distancePrefix = "distance_from_"
	parentPrefix   = "parent_from_"
)

// DistanceKey returns the attribute key for the BFS distance from src.
func DistanceKey(src graphstore.NodeID) string { return distancePrefix + src.String() }

// ParentKey returns the attribute key for the BFS parent from src.
func ParentKey(src graphstore.NodeID) string { return parentPrefix + src.String() }

// IsComputedKey reports whether key belongs to the computed attribute
// schema (component assignment or BFS results). Annotate clears these
// before writing fresh values so no stale data from a previous pass
// survives a re-run.
func IsComputedKey(key string) bool {
	return key == ComponentKey ||
		strings.HasPrefix(key, distancePrefix) ||
		strings.HasPrefix(key, parentPrefix)
}

// Annotate flattens analysis and traversal results into node attributes
// on g, replacing any previously computed attributes wholesale.
//
// Either argument may be nil to skip that family of attributes. For each
// BFS tree, every reached node gets distance_from_<src>, and every
// reached node except the source gets parent_from_<src>; the source's
// parent is the none sentinel and is not written.
func Annotate(g *graphstore.Graph, rep *analyze.Report, trees map[graphstore.NodeID]*traverse.Tree) error {
	g.ClearAttrs(IsComputedKey)

	if rep != nil {
		for id, comp := range rep.ComponentOf {
			if err := g.SetAttr(id, ComponentKey, graphstore.Int(int64(comp))); err != nil {
				return err
			}
		}
	}

	for src, tree := range trees {
		dk, pk := DistanceKey(src), ParentKey(src)
		for _, id := range g.Nodes() {
			if !tree.Reached(id) {
				continue
			}
			if err := g.SetAttr(id, dk, graphstore.Int(int64(tree.Dist[id]))); err != nil {
				return err
			}
			if p, ok := tree.Parent(id); ok {
				if err := g.SetAttr(id, pk, graphstore.Ref(p)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
