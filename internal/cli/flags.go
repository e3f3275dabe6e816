package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StormHooper/erdograph/pkg/gen"
	"github.com/StormHooper/erdograph/pkg/gml"
	"github.com/StormHooper/erdograph/pkg/graphstore"
)

// genSpec is the pflag.Value behind --create-random-graph. It parses the
// combined "N,C" argument (node count and edge constant) in one flag so
// the two parameters cannot drift apart.
type genSpec struct {
	n   int
	c   float64
	set bool
}

// String renders the current value for help output.
func (g *genSpec) String() string {
	if !g.set {
		return ""
	}
	return fmt.Sprintf("%d,%g", g.n, g.c)
}

// Set parses "N,C" (a space after the comma is tolerated).
func (g *genSpec) Set(s string) error {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected N,C (e.g. 50,1.5), got %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("node count %q is not an integer", parts[0])
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("edge constant %q is not a number", parts[1])
	}
	g.n, g.c, g.set = n, c, true
	return nil
}

// Type names the value in help output.
func (g *genSpec) Type() string { return "N,C" }

// sourceFlags is the graph-source flag pair shared by the root, serve,
// and explore commands: load a GML file or generate a random graph.
type sourceFlags struct {
	input  string
	create genSpec
	seed   int64
}

// register adds the source flags to cmd and wires their exclusivity:
// exactly one of --input and --create-random-graph must be given.
func (f *sourceFlags) register(cmd *cobra.Command, cfg Config) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "input graph file (GML format)")
	cmd.Flags().Var(&f.create, "create-random-graph", "generate an Erdős–Rényi graph with N nodes and edge constant C")
	cmd.Flags().Int64Var(&f.seed, "seed", cfg.Seed, "random seed for graph generation")
	cmd.MarkFlagsMutuallyExclusive("input", "create-random-graph")
	cmd.MarkFlagsOneRequired("input", "create-random-graph")
}

// graph resolves the flags into a store, either by loading the input
// file or by generating a random graph.
func (f *sourceFlags) graph(ctx context.Context) (*graphstore.Graph, error) {
	logger := loggerFromContext(ctx)

	if f.input != "" {
		g, err := gml.Load(f.input)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded graph", "file", f.input, "nodes", g.NodeCount(), "edges", g.EdgeCount())
		return g, nil
	}

	g, err := gen.Generate(f.create.n, f.create.c, gen.WithSeed(f.seed))
	if err != nil {
		return nil, err
	}
	logger.Info("generated graph",
		"n", f.create.n, "c", f.create.c, "seed", f.seed,
		"p", fmt.Sprintf("%.4f", gen.Probability(f.create.n, f.create.c)),
		"edges", g.EdgeCount())
	return g, nil
}

// parseSources converts the raw --multi-bfs values into node IDs using
// the same integer-when-possible rule the loader applies to node labels.
func parseSources(raw []string) []graphstore.NodeID {
	ids := make([]graphstore.NodeID, 0, len(raw))
	for _, s := range raw {
		ids = append(ids, graphstore.ParseID(strings.TrimSpace(s)))
	}
	return ids
}
