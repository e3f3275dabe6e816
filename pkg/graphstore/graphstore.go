// Package graphstore provides the owned node/edge/attribute storage that
// the generator, traversal, analyzer, and serialization layers build on.
//
// A [Graph] is undirected and simple: edges are unordered pairs of
// distinct nodes with no parallel edges. Node insertion order is
// preserved and drives every iteration surface (Nodes, Neighbors), which
// keeps traversal tie-breaks and serialized output reproducible.
//
// Graph is not safe for concurrent mutation. Once construction is done,
// any number of goroutines may read it concurrently.
package graphstore

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownNode is returned when an operation references a node ID
	// that has not been added to the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned by [Graph.AddNode] when the ID already
	// exists. Node IDs must be unique.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the unordered
	// pair is already present. Parallel edges are not allowed.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are
	// the same node. Self-loops are not allowed.
	ErrSelfLoop = errors.New("self-loop edge")

	// ErrAttrNotFound is returned by [Graph.Attr] when the node has no
	// attribute under the requested key.
	ErrAttrNotFound = errors.New("attribute not found")
)

// Edge is an unordered pair of node IDs. Edges returned by [Graph.Edges]
// carry their endpoints in the order they were added.
type Edge struct {
	U, V NodeID
}

// edgeKey normalizes an unordered pair for set membership.
// The smaller endpoint (by Compare) always comes first.
type edgeKey struct {
	a, b NodeID
}

func keyOf(u, v NodeID) edgeKey {
	if u.Compare(v) > 0 {
		u, v = v, u
	}
	return edgeKey{a: u, b: v}
}

// Graph owns the node set, edge set, and per-node attribute records.
// Use [New] to create a usable instance; the zero value is not valid.
type Graph struct {
	order []NodeID            // node IDs in insertion order
	index map[NodeID]int      // node ID -> position in order
	adj   map[NodeID][]NodeID // neighbors in edge-insertion order
	edges []Edge              // edges in insertion order
	set   map[edgeKey]struct{}
	attrs map[NodeID]map[string]Value
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[NodeID]int),
		adj:   make(map[NodeID][]NodeID),
		set:   make(map[edgeKey]struct{}),
		attrs: make(map[NodeID]map[string]Value),
	}
}

// AddNode adds a node. Returns ErrDuplicateNode if the ID already exists.
func (g *Graph) AddNode(id NodeID) error {
	if _, ok := g.index[id]; ok {
		return ErrDuplicateNode
	}
	g.index[id] = len(g.order)
	g.order = append(g.order, id)
	return nil
}

// AddEdge adds the undirected edge u-v between two existing nodes.
// Returns ErrSelfLoop when u == v, ErrUnknownNode when either endpoint is
// missing, and ErrDuplicateEdge when the pair is already present.
func (g *Graph) AddEdge(u, v NodeID) error {
	if u == v {
		return ErrSelfLoop
	}
	if _, ok := g.index[u]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.index[v]; !ok {
		return ErrUnknownNode
	}
	k := keyOf(u, v)
	if _, dup := g.set[k]; dup {
		return ErrDuplicateEdge
	}
	g.set[k] = struct{}{}
	g.edges = append(g.edges, Edge{U: u, V: v})
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
	return nil
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether the undirected edge u-v exists. O(1).
func (g *Graph) HasEdge(u, v NodeID) bool {
	_, ok := g.set[keyOf(u, v)]
	return ok
}

// Neighbors returns the nodes adjacent to id in edge-insertion order.
// The returned slice is a read-only view; callers must not modify it.
// Returns nil for unknown or isolated nodes.
func (g *Graph) Neighbors(id NodeID) []NodeID { return g.adj[id] }

// Degree returns the number of edges incident to id, or 0 for unknown nodes.
func (g *Graph) Degree(id NodeID) int { return len(g.adj[id]) }

// Nodes returns all node IDs in insertion order.
// The returned slice is a copy and safe to retain.
func (g *Graph) Nodes() []NodeID { return slices.Clone(g.order) }

// Edges returns all edges in insertion order.
// The returned slice is a copy and safe to retain.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SetAttr sets an attribute on a node, overwriting any previous value
// under the same key. Returns ErrUnknownNode for missing nodes.
func (g *Graph) SetAttr(id NodeID, key string, v Value) error {
	if _, ok := g.index[id]; !ok {
		return ErrUnknownNode
	}
	rec := g.attrs[id]
	if rec == nil {
		rec = make(map[string]Value)
		g.attrs[id] = rec
	}
	rec[key] = v
	return nil
}

// Attr reads a node attribute. Returns ErrUnknownNode for missing nodes
// and ErrAttrNotFound when the key is absent.
func (g *Graph) Attr(id NodeID, key string) (Value, error) {
	if _, ok := g.index[id]; !ok {
		return Value{}, ErrUnknownNode
	}
	v, ok := g.attrs[id][key]
	if !ok {
		return Value{}, ErrAttrNotFound
	}
	return v, nil
}

// AttrKeys returns the attribute keys set on a node, sorted, so that
// serialized output has a stable per-node key order.
func (g *Graph) AttrKeys(id NodeID) []string {
	rec := g.attrs[id]
	if len(rec) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ClearAttrs removes every attribute whose key matches the predicate on
// every node. Analysis passes use this to overwrite their output
// wholesale instead of merging with stale data from a previous run.
func (g *Graph) ClearAttrs(match func(key string) bool) {
	for _, rec := range g.attrs {
		for k := range rec {
			if match(k) {
				delete(rec, k)
			}
		}
	}
}
