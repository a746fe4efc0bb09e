package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStats draws the stats tab: collection counts, embedding and
// projection settings, wing sizes, and aggregate similarity for the
// latest analysis pass.
func (model Model) renderStats(panelWidth, panelHeight int) string {
	if len(model.labels) == 0 {
		return centerTextInPanel("Nothing in the collection yet", panelWidth, panelHeight)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	statLine := func(name, value string) string {
		return labelStyle.Render(name+": ") + valueStyle.Render(value)
	}

	var lines []string
	lines = append(lines, headerStyle.Render("Collection"))
	lines = append(lines, statLine("Exhibits", fmt.Sprintf("%d", len(model.labels))))
	if pendingCount := model.pendingCount(); pendingCount > 0 {
		lines = append(lines, statLine("Embedding in flight", fmt.Sprintf("%d", pendingCount)))
	}
	lines = append(lines, statLine("Dimensions", fmt.Sprintf("%d", model.settings.Embedding.Dimensions)))
	lines = append(lines, statLine("Provider", model.settings.Embedding.Provider))
	lines = append(lines, "")

	lines = append(lines, headerStyle.Render("Analysis"))
	projectionMethod := "PCA"
	if model.useNonlinear {
		projectionMethod = "UMAP"
	}
	lines = append(lines, statLine("Projection", projectionMethod))
	lines = append(lines, statLine("Neighbors per exhibit", fmt.Sprintf("%d", model.settings.Analysis.NeighborCount)))
	if meanSimilarity, ok := model.meanDisplaySimilarity(); ok {
		lines = append(lines, statLine("Mean pairwise similarity", fmt.Sprintf("%.3f", meanSimilarity)))
	}
	lines = append(lines, "")

	if wingSizes := model.wingSizes(); len(wingSizes) > 0 {
		lines = append(lines, headerStyle.Render("Wings"))
		for wingIndex, wingSize := range wingSizes {
			lines = append(lines, statLine(fmt.Sprintf("Wing %d", wingIndex+1), fmt.Sprintf("%d exhibits", wingSize)))
		}
		lines = append(lines, "")
	}

	if model.tokenizer != nil {
		totalTokens := 0
		for _, label := range model.labels {
			totalTokens += model.tokenizer.Count(label)
		}
		lines = append(lines, headerStyle.Render("Tokens"))
		lines = append(lines, statLine("Total", fmt.Sprintf("%d", totalTokens)))
		lines = append(lines, statLine("Per exhibit", fmt.Sprintf("%.1f", float64(totalTokens)/float64(len(model.labels)))))
	}

	if len(lines) > panelHeight {
		lines = lines[:panelHeight]
	}
	return strings.Join(lines, "\n")
}

// pendingCount is how many exhibits still show a placeholder vector.
func (model Model) pendingCount() int {
	count := 0
	for _, isPending := range model.pending {
		if isPending {
			count++
		}
	}
	return count
}

// meanDisplaySimilarity averages the remapped off-diagonal similarity
// over the latest matrix. Needs at least two points to mean anything.
func (model Model) meanDisplaySimilarity() (float64, bool) {
	matrix := model.analysis.Similarity
	if matrix == nil || matrix.Size() < 2 {
		return 0, false
	}

	var sum float64
	pairCount := 0
	for i := 0; i < matrix.Size(); i++ {
		for j := i + 1; j < matrix.Size(); j++ {
			sum += matrix.Display(i, j)
			pairCount++
		}
	}
	return sum / float64(pairCount), true
}

// wingSizes counts the exhibits assigned to each wing by the latest
// pass.
func (model Model) wingSizes() []int {
	maxLabel := -1
	for _, clusterLabel := range model.analysis.ClusterLabels {
		if clusterLabel > maxLabel {
			maxLabel = clusterLabel
		}
	}
	if maxLabel < 0 {
		return nil
	}

	sizes := make([]int, maxLabel+1)
	for _, clusterLabel := range model.analysis.ClusterLabels {
		if clusterLabel >= 0 {
			sizes[clusterLabel]++
		}
	}
	return sizes
}
