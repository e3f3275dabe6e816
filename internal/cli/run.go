package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/cache"
	"github.com/StormHooper/erdograph/pkg/gml"
	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/render"
	"github.com/StormHooper/erdograph/pkg/traverse"
	"github.com/StormHooper/erdograph/pkg/xerrors"
)

// workflowOptions carries the root command's flag values.
type workflowOptions struct {
	source     sourceFlags
	bfsSources []string
	analyze    bool
	plot       bool
	output     string
	format     string
	noCache    bool
}

// runWorkflow executes the full pipeline: resolve a graph, optionally
// traverse and analyze it, write the annotated GML output, and
// optionally render a plot.
func (c *CLI) runWorkflow(ctx context.Context, opts workflowOptions) error {
	if opts.plot {
		if opts.format != "svg" && opts.format != "png" {
			return xerrors.New(xerrors.CodeInvalidParameter, "unknown plot format %q (expected svg or png)", opts.format)
		}
	}

	prog := newProgress(loggerFromContext(ctx))

	g, err := opts.source.graph(ctx)
	if err != nil {
		return err
	}
	printStats(g.NodeCount(), g.EdgeCount(), false)

	trees, err := c.runBFS(ctx, g, opts.bfsSources)
	if err != nil {
		return err
	}

	var rep *analyze.Report
	if opts.analyze {
		spin := newSpinner(ctx, "Analyzing graph structure...")
		spin.Start()
		rep, err = analyze.Compute(ctx, g)
		if err != nil {
			spin.StopWithError("Analysis failed")
			return err
		}
		spin.Stop()
		printReport(rep)
	}

	if rep != nil || len(trees) > 0 {
		if err := gml.Annotate(g, rep, trees); err != nil {
			return err
		}
	}

	if opts.output != "" {
		if err := gml.Save(g, opts.output, nil); err != nil {
			return err
		}
		printSuccess("Graph written")
		printFile(opts.output)
	}

	if opts.plot {
		if g.NodeCount() == 0 {
			printWarning("graph has no nodes, skipping plot")
		} else {
			path, err := c.plot(ctx, g, rep, trees, opts)
			if err != nil {
				return err
			}
			printSuccess("Plot rendered")
			printFile(path)
		}
	}

	prog.done("workflow complete")
	return nil
}

// runBFS resolves the requested sources and runs the multi-source
// traversal, reporting any sources that are not in the graph.
func (c *CLI) runBFS(ctx context.Context, g *graphstore.Graph, raw []string) (map[graphstore.NodeID]*traverse.Tree, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	logger := loggerFromContext(ctx)

	trees, skipped, err := traverse.Run(ctx, g, parseSources(raw))
	if err != nil {
		return nil, err
	}
	for _, src := range skipped {
		logger.Warn("BFS source not in graph, skipping", "source", src.String())
		printWarning("source %s not in graph, skipped", src.String())
	}
	for _, src := range sortedTreeSources(trees) {
		tree := trees[src]
		printDetail("BFS from %s reached %d of %d nodes", src.String(), len(tree.Dist), g.NodeCount())
	}
	return trees, nil
}

// plot renders the graph to an image file next to the GML output (or to
// graph.<format> when no output file was requested), reusing a cached
// rendering when the graph and options are unchanged.
func (c *CLI) plot(ctx context.Context, g *graphstore.Graph, rep *analyze.Report, trees map[graphstore.NodeID]*traverse.Tree, opts workflowOptions) (string, error) {
	dot := render.ToDOT(g, render.Options{Report: rep, Trees: trees})
	path := plotPath(opts.output, opts.format)

	store := c.newCache(opts.noCache)
	defer store.Close()

	var buf strings.Builder
	if err := gml.Write(g, &buf, nil); err != nil {
		return "", err
	}
	key := cache.ArtifactKey(cache.Hash([]byte(buf.String())), opts.format, cache.Hash([]byte(dot)))

	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		loggerFromContext(ctx).Debug("plot cache hit", "key", key[:24])
		printInfo("using %s rendering", styleCached.Render(iconCached))
		return path, writeFile(path, data)
	}

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.format))
	spin.Start()
	var (
		data []byte
		err  error
	)
	switch opts.format {
	case "png":
		data, err = render.PNG(ctx, dot)
	default:
		data, err = render.SVG(ctx, dot)
	}
	if err != nil {
		spin.StopWithError("Rendering failed")
		return "", err
	}
	spin.Stop()

	if err := store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		loggerFromContext(ctx).Debug("plot cache write failed", "err", err)
	}
	return path, writeFile(path, data)
}

// plotPath derives the image path from the GML output path by swapping
// the extension: out/graph.gml becomes out/graph.svg.
func plotPath(output, format string) string {
	if output == "" {
		return "graph." + format
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + "." + format
}

// writeFile writes rendered image bytes, wrapping failures as IO errors.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(xerrors.CodeIO, err, "write plot file %s", path)
	}
	return nil
}

func sortedTreeSources(trees map[graphstore.NodeID]*traverse.Tree) []graphstore.NodeID {
	out := make([]graphstore.NodeID, 0, len(trees))
	for src := range trees {
		out = append(out, src)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Compare(out[j-1]) < 0; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
