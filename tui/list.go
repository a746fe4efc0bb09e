package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderList draws the list tab: every point with its cluster, status
// and ranked neighbors. The window scrolls to keep the selection
// visible.
func (model Model) renderList(panelWidth, panelHeight int) string {
	if len(model.labels) == 0 {
		return centerTextInPanel("Nothing in the collection yet", panelWidth, panelHeight)
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true)
	pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Italic(true)

	visibleRows := panelHeight
	firstRow := 0
	if model.selectedIndex >= visibleRows {
		firstRow = model.selectedIndex - visibleRows + 1
	}

	var outputBuilder strings.Builder
	for rowOffset := 0; rowOffset < visibleRows && firstRow+rowOffset < len(model.labels); rowOffset++ {
		pointIndex := firstRow + rowOffset

		marker := "  "
		if pointIndex == model.selectedIndex {
			marker = "> "
		}

		entryLine := marker + model.labels[pointIndex]
		isPending := pointIndex < len(model.pending) && model.pending[pointIndex]
		if isPending {
			entryLine += " (embedding...)"
		} else if clusterLabel := model.clusterLabelFor(pointIndex); clusterLabel >= 0 {
			entryLine += fmt.Sprintf("  [wing %d]", clusterLabel+1)
		}

		neighborSummary := model.neighborSummary(pointIndex, panelWidth-len(entryLine)-3)
		if neighborSummary != "" {
			entryLine += dimStyle.Render("  ~ " + neighborSummary)
		}

		switch {
		case pointIndex == model.selectedIndex:
			outputBuilder.WriteString(selectedStyle.Render(entryLine))
		case isPending:
			outputBuilder.WriteString(pendingStyle.Render(entryLine))
		default:
			outputBuilder.WriteString(labelStyle.Render(entryLine))
		}

		if rowOffset < visibleRows-1 && pointIndex < len(model.labels)-1 {
			outputBuilder.WriteString("\n")
		}
	}

	return outputBuilder.String()
}

// clusterLabelFor returns the point's cluster label, or -1 when no pass
// has produced one yet.
func (model Model) clusterLabelFor(pointIndex int) int {
	if pointIndex < 0 || pointIndex >= len(model.analysis.ClusterLabels) {
		return -1
	}
	return model.analysis.ClusterLabels[pointIndex]
}

// neighborSummary formats a point's ranked neighbors with their
// remapped similarity, truncated to fit the available width.
func (model Model) neighborSummary(pointIndex, availableWidth int) string {
	if pointIndex < 0 || pointIndex >= len(model.analysis.Neighbors) || availableWidth < 8 {
		return ""
	}

	var parts []string
	for _, neighborEntry := range model.analysis.Neighbors[pointIndex] {
		if neighborEntry.Index >= len(model.labels) {
			continue
		}
		displaySimilarity := (neighborEntry.Similarity + 1) / 2
		parts = append(parts, fmt.Sprintf("%s %.2f", model.labels[neighborEntry.Index], displaySimilarity))
	}

	summary := strings.Join(parts, ", ")
	if len(summary) > availableWidth {
		summary = summary[:availableWidth]
	}
	return summary
}
