// Package analyze computes structural statistics over a graphstore graph:
// connected components, cycle presence with a bounded cycle sample,
// isolated nodes, density, degree statistics, and the average shortest
// path length over mutually reachable pairs.
//
// All traversals are re-derived here as explicit linear-time searches
// rather than delegated to a generic library, because component numbering
// and neighbor tie-breaks must follow the store's insertion order exactly.
package analyze

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/StormHooper/erdograph/pkg/graphstore"
)

const (
	// maxSampleCycles bounds how many concrete cycles are reported.
	maxSampleCycles = 5
	// maxCycleEffort bounds the total edge visits spent enumerating
	// cycles, so sampling never runs unbounded search on large graphs.
	maxCycleEffort = 100_000
)

// Report is the aggregate read-only snapshot produced by [Compute].
// It is computed once per invocation and never mutated afterwards.
type Report struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`

	// Components lists each maximal reachable set, indexed in the order
	// components are first discovered while iterating nodes in the
	// store's insertion order. ComponentOf inverts the listing.
	Components  [][]graphstore.NodeID     `json:"components"`
	ComponentOf map[graphstore.NodeID]int `json:"-"`

	// Isolated lists the degree-0 nodes in insertion order.
	Isolated []graphstore.NodeID `json:"isolated"`

	// HasCycle is true iff some component carries at least as many edges
	// as nodes. SampleCycles holds up to maxSampleCycles concrete simple
	// cycles; CyclesTruncated is set when more cycles exist than the
	// sample or effort caps allowed enumerating.
	HasCycle        bool                  `json:"has_cycle"`
	SampleCycles    [][]graphstore.NodeID `json:"sample_cycles,omitempty"`
	CyclesTruncated bool                  `json:"cycles_truncated,omitempty"`

	// Density is edges / (n·(n-1)/2), or 0 when n < 2.
	Density float64 `json:"density"`

	// AvgPathLength averages BFS distance over ordered pairs of distinct,
	// mutually reachable nodes. NaN when no such pair exists.
	AvgPathLength float64 `json:"-"`

	DegreeMin  int     `json:"degree_min"`
	DegreeMax  int     `json:"degree_max"`
	DegreeMean float64 `json:"degree_mean"`
}

// Compute analyzes g and returns the report snapshot.
//
// An empty graph does not abort: fields that are mathematically undefined
// for n=0 (density, path length, degree stats) are reported as zero or
// NaN instead. The context cancels the pairwise-distance stage, which is
// the only part that can be slow on large graphs.
func Compute(ctx context.Context, g *graphstore.Graph) (*Report, error) {
	nodes := g.Nodes()
	r := &Report{
		Nodes:         len(nodes),
		Edges:         g.EdgeCount(),
		ComponentOf:   make(map[graphstore.NodeID]int, len(nodes)),
		AvgPathLength: math.NaN(),
	}

	r.Components = components(g, nodes, r.ComponentOf)

	for _, id := range nodes {
		if g.Degree(id) == 0 {
			r.Isolated = append(r.Isolated, id)
		}
	}

	// A connected component with V nodes and >= V edges must contain a
	// cycle; a tree has exactly V-1 edges.
	for _, comp := range r.Components {
		if componentEdges(g, comp) >= len(comp) {
			r.HasCycle = true
			break
		}
	}
	if r.HasCycle {
		r.SampleCycles, r.CyclesTruncated = sampleCycles(g, r.Components)
	}

	if len(nodes) >= 2 {
		maxEdges := len(nodes) * (len(nodes) - 1) / 2
		r.Density = float64(r.Edges) / float64(maxEdges)
	}

	degreeStats(g, nodes, r)

	avg, err := avgPathLength(ctx, g, nodes)
	if err != nil {
		return nil, err
	}
	r.AvgPathLength = avg

	return r, nil
}

// components discovers maximal reachable sets with BFS, seeding from
// nodes in insertion order so component indices are stable for a given
// insertion order.
func components(g *graphstore.Graph, nodes []graphstore.NodeID, assign map[graphstore.NodeID]int) [][]graphstore.NodeID {
	var out [][]graphstore.NodeID
	visited := make(map[graphstore.NodeID]bool, len(nodes))

	for _, seed := range nodes {
		if visited[seed] {
			continue
		}
		idx := len(out)
		comp := []graphstore.NodeID{seed}
		visited[seed] = true
		assign[seed] = idx

		queue := []graphstore.NodeID{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nbr := range g.Neighbors(cur) {
				if visited[nbr] {
					continue
				}
				visited[nbr] = true
				assign[nbr] = idx
				comp = append(comp, nbr)
				queue = append(queue, nbr)
			}
		}
		out = append(out, comp)
	}
	return out
}

// componentEdges counts edges internal to the component. Every edge of a
// member is internal by definition of a component; each is seen twice.
func componentEdges(g *graphstore.Graph, comp []graphstore.NodeID) int {
	total := 0
	for _, id := range comp {
		total += g.Degree(id)
	}
	return total / 2
}

// sampleCycles walks each component with DFS and reports a bounded number
// of simple cycles found via back edges. The effort counter caps total
// edge visits; truncated is true when the cap was hit or a cycle beyond
// the sample limit was left unreported.
func sampleCycles(g *graphstore.Graph, comps [][]graphstore.NodeID) (cycles [][]graphstore.NodeID, truncated bool) {
	effort := 0
	visited := make(map[graphstore.NodeID]bool)
	parent := make(map[graphstore.NodeID]graphstore.NodeID)
	onStack := make(map[graphstore.NodeID]bool)

	var dfs func(cur graphstore.NodeID, from graphstore.NodeID, hasFrom bool) bool
	dfs = func(cur, from graphstore.NodeID, hasFrom bool) bool {
		visited[cur] = true
		onStack[cur] = true
		defer func() { onStack[cur] = false }()

		skippedParent := false
		for _, nbr := range g.Neighbors(cur) {
			effort++
			if effort > maxCycleEffort {
				truncated = true
				return true
			}
			// Skip one traversal of the tree edge back to the DFS
			// parent; a second edge to the same node would be parallel
			// and cannot occur in a simple graph.
			if hasFrom && nbr == from && !skippedParent {
				skippedParent = true
				continue
			}
			if onStack[nbr] {
				// A back edge past a full sample proves a cycle was left
				// out; a sample that is merely full is still complete.
				if len(cycles) >= maxSampleCycles {
					truncated = true
					return true
				}
				cycles = append(cycles, unwind(parent, cur, nbr))
				continue
			}
			if visited[nbr] {
				continue
			}
			parent[nbr] = cur
			if dfs(nbr, cur, true) {
				return true
			}
		}
		return false
	}

	for _, comp := range comps {
		// Trees cannot contain cycles; skip them outright.
		if componentEdges(g, comp) < len(comp) {
			continue
		}
		if dfs(comp[0], graphstore.NodeID{}, false) {
			return cycles, true
		}
	}
	return cycles, truncated
}

// unwind reconstructs the simple cycle closed by the back edge cur→anc by
// walking DFS parents from cur up to the ancestor anc.
func unwind(parent map[graphstore.NodeID]graphstore.NodeID, cur, anc graphstore.NodeID) []graphstore.NodeID {
	cycle := []graphstore.NodeID{anc}
	for walk := cur; walk != anc; walk = parent[walk] {
		cycle = append(cycle, walk)
	}
	// Reverse so the cycle reads ancestor → ... → cur.
	for i, j := 1, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}

func degreeStats(g *graphstore.Graph, nodes []graphstore.NodeID, r *Report) {
	if len(nodes) == 0 {
		return
	}
	minDeg, maxDeg, sum := g.Degree(nodes[0]), g.Degree(nodes[0]), 0
	for _, id := range nodes {
		d := g.Degree(id)
		if d < minDeg {
			minDeg = d
		}
		if d > maxDeg {
			maxDeg = d
		}
		sum += d
	}
	r.DegreeMin = minDeg
	r.DegreeMax = maxDeg
	r.DegreeMean = float64(sum) / float64(len(nodes))
}

// avgPathLength runs a BFS from every node and averages distances over
// ordered reachable pairs. The per-source searches are independent reads
// of the shared store, so they are partitioned across workers that each
// accumulate into their own partial sums (no shared counters).
func avgPathLength(ctx context.Context, g *graphstore.Graph, nodes []graphstore.NodeID) (float64, error) {
	if len(nodes) < 2 {
		return math.NaN(), nil
	}

	workers := runtime.NumCPU()
	if workers > len(nodes) {
		workers = len(nodes)
	}

	type partial struct {
		dist  int64
		pairs int64
	}
	partials := make([]partial, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for i := w; i < len(nodes); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				src := nodes[i]
				dist := map[graphstore.NodeID]int{src: 0}
				queue := []graphstore.NodeID{src}
				for len(queue) > 0 {
					cur := queue[0]
					queue = queue[1:]
					d := dist[cur]
					for _, nbr := range g.Neighbors(cur) {
						if _, ok := dist[nbr]; ok {
							continue
						}
						dist[nbr] = d + 1
						queue = append(queue, nbr)
					}
				}
				for _, d := range dist {
					partials[w].dist += int64(d)
				}
				partials[w].pairs += int64(len(dist) - 1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	var dist, pairs int64
	for _, p := range partials {
		dist += p.dist
		pairs += p.pairs
	}
	if pairs == 0 {
		return math.NaN(), nil
	}
	return float64(dist) / float64(pairs), nil
}
