package gml

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/StormHooper/erdograph/pkg/graphstore"
	"github.com/StormHooper/erdograph/pkg/xerrors"
)

// Load reads the attributed-graph file at path.
//
// Failures to open the file are IO_ERROR and name the path; structurally
// invalid content is FORMAT_ERROR and passes through the underlying parse
// detail. The file handle is held for the whole read.
func Load(path string) (*graphstore.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeIO, err, "open graph file %s", path)
	}
	defer f.Close()

	g, err := Read(f)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeFormat, err, "parse graph file %s", path)
	}
	return g, nil
}

// Read decodes a graph from r. Node ids and node-reference attribute
// values both go through the same integer-when-possible conversion, so id
// types remain comparable after a round-trip.
func Read(r io.Reader) (*graphstore.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{lex: newLexer(string(data))}
	doc, err := p.parse()
	if err != nil {
		return nil, err
	}

	g := graphstore.New()
	for _, n := range doc.nodes {
		if err := g.AddNode(n.id); err != nil {
			return nil, fmt.Errorf("node %s (line %d): %w", n.id, n.line, err)
		}
		for _, a := range n.attrs {
			if err := g.SetAttr(n.id, a.key, a.value); err != nil {
				return nil, fmt.Errorf("node %s attribute %s: %w", n.id, a.key, err)
			}
		}
	}
	for _, e := range doc.edges {
		if err := g.AddEdge(e.u, e.v); err != nil {
			return nil, fmt.Errorf("edge %s-%s (line %d): %w", e.u, e.v, e.line, err)
		}
	}
	return g, nil
}

// =============================================================================
// Parsed document
// =============================================================================

type attr struct {
	key   string
	value graphstore.Value
}

type nodeRec struct {
	id    graphstore.NodeID
	attrs []attr
	line  int
}

type edgeRec struct {
	u, v graphstore.NodeID
	line int
}

type document struct {
	nodes []nodeRec
	edges []edgeRec
}

// =============================================================================
// Lexer
// =============================================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokWord   // bare key or unquoted value
	tokString // quoted string, unescaped
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer { return &lexer{src: src, line: 1} }

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#': // comment to end of line
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '[':
			l.pos++
			return token{kind: tokOpen, line: l.line}, nil
		case c == ']':
			l.pos++
			return token{kind: tokClose, line: l.line}, nil
		case c == '"':
			return l.lexString()
		default:
			return l.lexWord()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) lexString() (token, error) {
	start := l.line
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: b.String(), line: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, fmt.Errorf("line %d: unterminated escape in string", start)
			}
			l.pos++
			b.WriteByte(l.src[l.pos])
			l.pos++
		case '\n':
			return token{}, fmt.Errorf("line %d: unterminated string", start)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("line %d: unterminated string", start)
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && !strings.ContainsRune(" \t\r\n[]\"#", rune(l.src[l.pos])) {
		l.pos++
	}
	return token{kind: tokWord, text: l.src[start:l.pos], line: l.line}, nil
}

// =============================================================================
// Parser
// =============================================================================

type parser struct {
	lex    *lexer
	peeked *token
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, nil
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) parse() (*document, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokWord || t.text != "graph" {
		return nil, fmt.Errorf("line %d: expected top-level 'graph' record", t.line)
	}
	if err := p.expectOpen("graph"); err != nil {
		return nil, err
	}

	doc := &document{}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case t.kind == tokClose:
			return doc, nil
		case t.kind == tokEOF:
			return nil, fmt.Errorf("line %d: unexpected end of input in graph record", t.line)
		case t.kind == tokWord && t.text == "node":
			n, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			doc.nodes = append(doc.nodes, n)
		case t.kind == tokWord && t.text == "edge":
			e, err := p.parseEdge()
			if err != nil {
				return nil, err
			}
			doc.edges = append(doc.edges, e)
		case t.kind == tokWord:
			// Graph-level key such as "directed 0" or "label": consume
			// and ignore. Graphs are always treated as undirected.
			if _, err := p.scanValue(t.text); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected token in graph record", t.line)
		}
	}
}

func (p *parser) parseNode() (nodeRec, error) {
	rec := nodeRec{}
	if err := p.expectOpen("node"); err != nil {
		return rec, err
	}

	hasID := false
	var label string
	var hasLabel bool
	for {
		t, err := p.next()
		if err != nil {
			return rec, err
		}
		if t.kind == tokClose {
			break
		}
		if t.kind != tokWord {
			return rec, fmt.Errorf("line %d: expected attribute key in node record", t.line)
		}
		rec.line = t.line
		raw, quoted, err := p.rawValue(t.text)
		if err != nil {
			return rec, err
		}
		switch t.text {
		case "id":
			rec.id = graphstore.ParseID(raw)
			hasID = true
		case "label":
			label, hasLabel = raw, true
		default:
			rec.attrs = append(rec.attrs, attr{key: t.text, value: parseValue(t.text, raw, quoted)})
		}
	}
	if !hasID {
		return rec, fmt.Errorf("line %d: node record missing id", rec.line)
	}
	// A label that just repeats the id adds nothing; keep any other label
	// as a pass-through string attribute.
	if hasLabel && label != rec.id.String() {
		rec.attrs = append(rec.attrs, attr{key: "label", value: graphstore.Str(label)})
	}
	return rec, nil
}

func (p *parser) parseEdge() (edgeRec, error) {
	rec := edgeRec{}
	if err := p.expectOpen("edge"); err != nil {
		return rec, err
	}

	var hasU, hasV bool
	for {
		t, err := p.next()
		if err != nil {
			return rec, err
		}
		if t.kind == tokClose {
			break
		}
		if t.kind != tokWord {
			return rec, fmt.Errorf("line %d: expected attribute key in edge record", t.line)
		}
		rec.line = t.line
		raw, _, err := p.rawValue(t.text)
		if err != nil {
			return rec, err
		}
		switch t.text {
		case "source":
			rec.u, hasU = graphstore.ParseID(raw), true
		case "target":
			rec.v, hasV = graphstore.ParseID(raw), true
		default:
			// Edge attributes (weights etc.) are outside the format;
			// tolerated and dropped.
		}
	}
	if !hasU || !hasV {
		return rec, fmt.Errorf("line %d: edge record missing source or target", rec.line)
	}
	return rec, nil
}

func (p *parser) expectOpen(record string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.kind != tokOpen {
		return fmt.Errorf("line %d: expected '[' after %s", t.line, record)
	}
	return nil
}

// rawValue reads the literal token following a key, reporting whether it
// was a quoted string.
func (p *parser) rawValue(key string) (string, bool, error) {
	t, err := p.next()
	if err != nil {
		return "", false, err
	}
	if t.kind != tokWord && t.kind != tokString {
		return "", false, fmt.Errorf("line %d: expected value after key %q", t.line, key)
	}
	return t.text, t.kind == tokString, nil
}

// scanValue consumes and discards a value, including nested records, for
// graph-level keys that the core ignores.
func (p *parser) scanValue(key string) (token, error) {
	t, err := p.peek()
	if err != nil {
		return token{}, err
	}
	if t.kind == tokOpen {
		// Nested record: skip to the matching close bracket.
		depth := 0
		for {
			t, err := p.next()
			if err != nil {
				return token{}, err
			}
			switch t.kind {
			case tokOpen:
				depth++
			case tokClose:
				depth--
				if depth == 0 {
					return t, nil
				}
			case tokEOF:
				return token{}, fmt.Errorf("line %d: unexpected end of input in %q", t.line, key)
			}
		}
	}
	return p.next()
}

// parseValue types a raw attribute value. Recognized keys get their
// schema type; everything else keeps quoted strings as strings and types
// bare words by shape (int, float, string).
func parseValue(key, raw string, quoted bool) graphstore.Value {
	if strings.HasPrefix(key, parentPrefix) {
		if !quoted && raw == "none" {
			return graphstore.None()
		}
		return graphstore.Ref(graphstore.ParseID(raw))
	}
	if quoted {
		return graphstore.Str(raw)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return graphstore.Int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return graphstore.Float(f)
	}
	return graphstore.Str(raw)
}
