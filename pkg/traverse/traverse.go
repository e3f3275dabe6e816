// Package traverse computes breadth-first shortest-path trees over a
// graphstore graph.
//
// Each requested source is searched independently; the trees share the
// read-only adjacency structure but no mutable state, so independent
// sources run concurrently. Neighbor expansion follows the store's
// insertion-ordered adjacency, which fixes parent tie-breaks and makes
// results reproducible for a given graph.
package traverse

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/StormHooper/erdograph/pkg/graphstore"
)

// ErrUnreachable is returned by [Tree.Path] when the target was never
// discovered from the tree's source.
var ErrUnreachable = errors.New("target not reachable from source")

// Tree is the parent-pointer structure produced by a single-source BFS.
// Dist maps every reached node to its hop distance from Source; the
// source itself has distance 0 and no parent.
type Tree struct {
	Source graphstore.NodeID
	Dist   map[graphstore.NodeID]int
	parent map[graphstore.NodeID]graphstore.NodeID
}

// Reached reports whether id was discovered from the source.
func (t *Tree) Reached(id graphstore.NodeID) bool {
	_, ok := t.Dist[id]
	return ok
}

// Parent returns the node that first discovered id, or false for the
// source itself and for nodes that were never reached.
func (t *Tree) Parent(id graphstore.NodeID) (graphstore.NodeID, bool) {
	p, ok := t.parent[id]
	return p, ok
}

// Path reconstructs the source→target node sequence by walking parent
// links back from target. Path(source) is the singleton [source].
// Returns ErrUnreachable when target was never discovered.
func (t *Tree) Path(target graphstore.NodeID) ([]graphstore.NodeID, error) {
	if !t.Reached(target) {
		return nil, ErrUnreachable
	}
	var rev []graphstore.NodeID
	cur := target
	for {
		rev = append(rev, cur)
		p, ok := t.parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	// Reverse in place: rev was built target→source.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev, nil
}

// Run performs an independent BFS from each source over g.
//
// Sources not present in the graph are skipped and returned in the second
// result so the caller can warn about each one; the remaining sources are
// still processed. Valid sources run concurrently: each goroutine only
// reads the shared store and writes its own tree. The context cancels
// outstanding searches.
func Run(ctx context.Context, g *graphstore.Graph, sources []graphstore.NodeID) (map[graphstore.NodeID]*Tree, []graphstore.NodeID, error) {
	var skipped []graphstore.NodeID
	var valid []graphstore.NodeID
	seen := make(map[graphstore.NodeID]bool, len(sources))
	for _, src := range sources {
		if seen[src] {
			continue
		}
		seen[src] = true
		if !g.HasNode(src) {
			skipped = append(skipped, src)
			continue
		}
		valid = append(valid, src)
	}

	// Each goroutine writes only its own slot; the shared map is
	// assembled after all searches finish.
	results := make([]*Tree, len(valid))
	eg, ctx := errgroup.WithContext(ctx)
	for i, src := range valid {
		eg.Go(func() error {
			t, err := bfs(ctx, g, src)
			if err != nil {
				return err
			}
			results[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	trees := make(map[graphstore.NodeID]*Tree, len(valid))
	for i, src := range valid {
		trees[src] = results[i]
	}
	return trees, skipped, nil
}

// bfs is the standard queue-based search from a single source.
func bfs(ctx context.Context, g *graphstore.Graph, source graphstore.NodeID) (*Tree, error) {
	t := &Tree{
		Source: source,
		Dist:   map[graphstore.NodeID]int{source: 0},
		parent: make(map[graphstore.NodeID]graphstore.NodeID),
	}

	queue := []graphstore.NodeID{source}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cur := queue[0]
		queue = queue[1:]
		d := t.Dist[cur]

		for _, nbr := range g.Neighbors(cur) {
			if _, visited := t.Dist[nbr]; visited {
				continue
			}
			t.Dist[nbr] = d + 1
			t.parent[nbr] = cur
			queue = append(queue, nbr)
		}
	}
	return t, nil
}
