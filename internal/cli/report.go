package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/graphstore"
)

// Display limits for the analysis report. Large graphs get per-section
// truncation rather than pages of node listings.
const (
	maxComponentPreview = 10
	maxIsolatedPreview  = 20
	maxCyclePreview     = 3
)

// printReport renders the structural analysis report to stdout.
func printReport(rep *analyze.Report) {
	section := func(name string) {
		fmt.Println()
		fmt.Println(StyleTitle.Render(name))
	}
	line := func(label string, value string) {
		fmt.Println("  " + StyleDim.Render(label+":") + " " + StyleValue.Render(value))
	}
	num := func(label string, value string) {
		fmt.Println("  " + StyleDim.Render(label+":") + " " + StyleNumber.Render(value))
	}

	section("Basic Statistics")
	num("Nodes", fmt.Sprintf("%d", rep.Nodes))
	num("Edges", fmt.Sprintf("%d", rep.Edges))

	section(fmt.Sprintf("Connected Components: %d", len(rep.Components)))
	for i, comp := range rep.Components {
		preview := idList(comp, maxComponentPreview)
		fmt.Printf("  Component %d: %s %s\n", i+1,
			StyleValue.Render(preview),
			StyleDim.Render(fmt.Sprintf("(%d nodes)", len(comp))))
	}

	section(fmt.Sprintf("Isolated Nodes: %d", len(rep.Isolated)))
	if len(rep.Isolated) > 0 {
		fmt.Println("  " + StyleValue.Render(idList(rep.Isolated, maxIsolatedPreview)))
	}

	section("Cycle Detection")
	answer := "No"
	if rep.HasCycle {
		answer = "Yes"
	}
	line("Contains cycles", answer)
	if len(rep.SampleCycles) > 0 {
		num("Sample cycles found", fmt.Sprintf("%d", len(rep.SampleCycles)))
		for i, cycle := range rep.SampleCycles {
			if i >= maxCyclePreview {
				break
			}
			fmt.Printf("    Cycle %d: %s\n", i+1, StyleValue.Render(idList(cycle, len(cycle))))
		}
		if rep.CyclesTruncated {
			fmt.Println("    " + StyleDim.Render("(search truncated, more cycles may exist)"))
		}
	}

	section("Graph Density")
	num("Density", fmt.Sprintf("%.6f", rep.Density))
	fmt.Println("  " + StyleDim.Render("(ratio of actual edges to maximum possible edges)"))

	section("Average Shortest Path Length")
	if math.IsNaN(rep.AvgPathLength) {
		fmt.Println("  " + StyleDim.Render("Not applicable (no mutually reachable node pairs)"))
	} else {
		num("Average", fmt.Sprintf("%.4f", rep.AvgPathLength))
		fmt.Println("  " + StyleDim.Render("(over all ordered pairs of mutually reachable nodes)"))
	}

	section("Degree Statistics")
	num("Average degree", fmt.Sprintf("%.2f", rep.DegreeMean))
	num("Min degree", fmt.Sprintf("%d", rep.DegreeMin))
	num("Max degree", fmt.Sprintf("%d", rep.DegreeMax))
	fmt.Println()
}

// idList renders up to limit node IDs, with an ellipsis when truncated.
func idList(ids []graphstore.NodeID, limit int) string {
	var parts []string
	for i, id := range ids {
		if i >= limit {
			return "[" + strings.Join(parts, ", ") + ", ...]"
		}
		parts = append(parts, id.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
