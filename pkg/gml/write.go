package gml

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/xerrors"
)

// Filter selects which attribute keys are written. A nil Filter writes
// every attribute present on the store.
type Filter func(key string) bool

// Computed selects only the computed attribute schema (component and BFS
// keys), which matches what a fresh analysis pass produces.
func Computed(key string) bool { return IsComputedKey(key) }

// Save writes g to the file at path, creating or truncating it. Write
// failures are IO_ERROR naming the path, surfaced without retry. The
// file handle is held for the whole write.
func Save(g *graphstore.Graph, path string, include Filter) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeIO, err, "create graph file %s", path)
	}
	defer f.Close()

	if err := Write(g, f, include); err != nil {
		return xerrors.Wrap(xerrors.CodeIO, err, "write graph file %s", path)
	}
	if err := f.Close(); err != nil {
		return xerrors.Wrap(xerrors.CodeIO, err, "write graph file %s", path)
	}
	return nil
}

// Write encodes g to w. Nodes appear in insertion order with their
// attribute keys sorted, then edges in insertion order, so output is
// byte-stable for a given store.
func Write(g *graphstore.Graph, w io.Writer, include Filter) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "graph [")
	for _, id := range g.Nodes() {
		fmt.Fprintln(bw, "  node [")
		fmt.Fprintf(bw, "    id %s\n", literal(id.String()))
		label := id.String()
		if v, err := g.Attr(id, "label"); err == nil {
			if s, ok := v.Text(); ok {
				label = s
			}
		}
		fmt.Fprintf(bw, "    label %s\n", quote(label))
		for _, key := range g.AttrKeys(id) {
			if key == "label" || (include != nil && !include(key)) {
				continue
			}
			v, err := g.Attr(id, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, "    %s %s\n", key, renderValue(v))
		}
		fmt.Fprintln(bw, "  ]")
	}
	for _, e := range g.Edges() {
		fmt.Fprintln(bw, "  edge [")
		fmt.Fprintf(bw, "    source %s\n", literal(e.U.String()))
		fmt.Fprintf(bw, "    target %s\n", literal(e.V.String()))
		fmt.Fprintln(bw, "  ]")
	}
	fmt.Fprintln(bw, "]")

	return bw.Flush()
}

// renderValue writes a value in the form that reparses to the same kind:
// numbers bare, references as bare ints or quoted strings, none as the
// bare word, text quoted.
func renderValue(v graphstore.Value) string {
	switch v.Kind() {
	case graphstore.KindRef:
		ref, _ := v.Ref()
		return literal(ref.String())
	case graphstore.KindString:
		s, _ := v.Text()
		return quote(s)
	case graphstore.KindNone:
		return "none"
	default:
		return v.String()
	}
}

// literal renders a node id: numeric ids bare, textual ids quoted.
func literal(s string) string {
	id := graphstore.ParseID(s)
	if id.IsInt() {
		return s
	}
	return quote(s)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
