package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/StormHooper/erdograph/pkg/analyze"
	"github.com/StormHooper/erdograph/pkg/graphstore"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command: an interactive node
// browser over a loaded or generated graph.
func (c *CLI) exploreCommand() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse graph nodes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), src)
		},
	}

	src.register(cmd, c.Config)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, src sourceFlags) error {
	g, err := src.graph(ctx)
	if err != nil {
		return err
	}
	rep, err := analyze.Compute(ctx, g)
	if err != nil {
		return err
	}

	model := newNodeListModel(g, rep)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// nodeListModel - Interactive node browser
// =============================================================================

// nodeListModel is the bubbletea model for browsing graph nodes with
// their degree, component, and neighbor sets.
type nodeListModel struct {
	graph  *graphstore.Graph
	report *analyze.Report
	nodes  []graphstore.NodeID
	cursor int
	offset int
	height int
}

func newNodeListModel(g *graphstore.Graph, rep *analyze.Report) nodeListModel {
	return nodeListModel{
		graph:  g,
		report: rep,
		nodes:  g.Nodes(),
		height: 15,
	}
}

func (m nodeListModel) Init() tea.Cmd {
	return nil
}

func (m nodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "g", "home":
			m.cursor, m.offset = 0, 0
		case "G", "end":
			m.cursor = len(m.nodes) - 1
			if m.cursor >= m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m nodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Graph Explorer · %d nodes · %d edges · %d components",
		m.report.Nodes, m.report.Edges, len(m.report.Components))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G jump  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		id := m.nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		comp := "—"
		if c, ok := m.report.ComponentOf[id]; ok {
			comp = fmt.Sprintf("%d", c+1)
		}

		rows = append(rows, []string{
			cursor,
			id.String(),
			fmt.Sprintf("%d", m.graph.Degree(id)),
			comp,
			neighborPreview(m.graph, id),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Degree", "Component", "Neighbors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.nodes) > m.height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.offset+1, end, len(m.nodes))))
		b.WriteString("\n")
	}

	return b.String()
}

// neighborPreview renders up to five neighbor IDs for the list view.
func neighborPreview(g *graphstore.Graph, id graphstore.NodeID) string {
	neighbors := g.Neighbors(id)
	if len(neighbors) == 0 {
		return "—"
	}
	parts := make([]string, 0, 5)
	for i, n := range neighbors {
		if i >= 5 {
			return strings.Join(parts, ", ") + ", …"
		}
		parts = append(parts, n.String())
	}
	return strings.Join(parts, ", ")
}
