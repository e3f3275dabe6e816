package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/gml"
	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/render"
	"github.com/StormHooper/erdograph/pkg/traverse"
)

// serveCommand creates the serve command: render the graph once and
// serve it from a local HTTP endpoint for browser viewing.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src        sourceFlags
		bfsSources []string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered graph and its analysis over HTTP",
		Long: `Serve resolves a graph (loaded or generated), analyzes it, and exposes
the result on a local HTTP endpoint:

  /            HTML page embedding the rendering
  /graph.svg   the rendered graph
  /graph.gml   the annotated graph in GML format
  /report.json the structural analysis report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), src, bfsSources, listen)
		},
	}

	src.register(cmd, c.Config)
	cmd.Flags().StringSliceVar(&bfsSources, "multi-bfs", nil, "run BFS from each listed source node (comma-separated)")
	cmd.Flags().StringVar(&listen, "listen", c.Config.Listen, "address to listen on")

	return cmd
}

// runServe builds all artifacts up front and serves them read-only.
func (c *CLI) runServe(ctx context.Context, src sourceFlags, bfsSources []string, listen string) error {
	logger := loggerFromContext(ctx)

	g, err := src.graph(ctx)
	if err != nil {
		return err
	}
	trees, err := c.runBFS(ctx, g, bfsSources)
	if err != nil {
		return err
	}
	rep, err := analyze.Compute(ctx, g)
	if err != nil {
		return err
	}
	if err := gml.Annotate(g, rep, trees); err != nil {
		return err
	}

	svg, err := render.SVG(ctx, render.ToDOT(g, render.Options{Report: rep, Trees: trees}))
	if err != nil {
		return err
	}
	var gmlText strings.Builder
	if err := gml.Write(g, &gmlText, nil); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           newRouter(svg, gmlText.String(), rep, trees),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printSuccess("Serving graph on http://%s", listen)
	logger.Info("server started", "addr", listen)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter assembles the read-only artifact routes.
func newRouter(svg []byte, gmlText string, rep *analyze.Report, trees map[graphstore.NodeID]*traverse.Tree) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexPage, len(trees))
	})
	r.Get("/graph.svg", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	})
	r.Get("/graph.gml", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, gmlText)
	})
	r.Get("/report.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reportPayload(rep))
	})

	return r
}

// reportPayload wraps the report for JSON transport. The average path
// length uses a pointer so the NaN sentinel (no reachable pairs) encodes
// as null instead of breaking the JSON encoder.
func reportPayload(rep *analyze.Report) map[string]any {
	var avg *float64
	if !math.IsNaN(rep.AvgPathLength) {
		v := rep.AvgPathLength
		avg = &v
	}
	return map[string]any{
		"report":          rep,
		"avg_path_length": avg,
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>erdograph</title>
<style>
  body { font-family: sans-serif; margin: 2rem; }
  nav a { margin-right: 1rem; }
  img { max-width: 100%%; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>erdograph</h1>
<nav>
  <a href="/graph.svg">graph.svg</a>
  <a href="/graph.gml">graph.gml</a>
  <a href="/report.json">report.json</a>
</nav>
<p>BFS trees: %d</p>
<img src="/graph.svg" alt="graph rendering">
</body>
</html>
`
