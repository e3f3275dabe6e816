package cli

import (
	"testing"

	"github.com/StormHooper/erdograph/pkg/graphstore"
)

func TestGenSpecSet(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantN   int
		wantC   float64
		wantErr bool
	}{
		{name: "Basic", in: "50,1.5", wantN: 50, wantC: 1.5},
		{name: "SpaceAfterComma", in: "10, 2", wantN: 10, wantC: 2},
		{name: "IntegerConstant", in: "100,3", wantN: 100, wantC: 3},
		{name: "MissingComma", in: "50", wantErr: true},
		{name: "BadNodeCount", in: "x,1.5", wantErr: true},
		{name: "BadConstant", in: "50,abc", wantErr: true},
		{name: "Empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g genSpec
			err := g.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if g.n != tt.wantN || g.c != tt.wantC {
				t.Errorf("Set(%q) = %d,%g, want %d,%g", tt.in, g.n, g.c, tt.wantN, tt.wantC)
			}
			if !g.set {
				t.Error("set flag not recorded")
			}
		})
	}
}

func TestGenSpecString(t *testing.T) {
	var g genSpec
	if g.String() != "" {
		t.Errorf("zero value String() = %q, want empty", g.String())
	}
	if err := g.Set("25,1.5"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if g.String() != "25,1.5" {
		t.Errorf("String() = %q, want 25,1.5", g.String())
	}
}

func TestParseSources(t *testing.T) {
	got := parseSources([]string{"0", " 7 ", "hub"})
	want := []graphstore.NodeID{
		graphstore.IntID(0),
		graphstore.IntID(7),
		graphstore.StringID("hub"),
	}
	if len(got) != len(want) {
		t.Fatalf("parseSources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseSources[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPlotPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		want   string
	}{
		{name: "NoOutput", output: "", format: "svg", want: "graph.svg"},
		{name: "GMLOutput", output: "out/result.gml", format: "svg", want: "out/result.svg"},
		{name: "PNG", output: "g.gml", format: "png", want: "g.png"},
		{name: "NoExtension", output: "result", format: "svg", want: "result.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plotPath(tt.output, tt.format); got != tt.want {
				t.Errorf("plotPath(%q, %q) = %q, want %q", tt.output, tt.format, got, tt.want)
			}
		})
	}
}
