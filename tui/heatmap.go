package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// heatmapLabelWidth is the fixed width of the row label gutter.
const heatmapLabelWidth = 12

// heatmapCellWidth is the character width of one matrix cell.
const heatmapCellWidth = 2

// heatmapRamp is a cold-to-hot color ramp for remapped similarity.
// Index 0 is "very dissimilar", the last index "nearly identical".
var heatmapRamp = []lipgloss.Color{
	lipgloss.Color("17"),
	lipgloss.Color("19"),
	lipgloss.Color("26"),
	lipgloss.Color("32"),
	lipgloss.Color("37"),
	lipgloss.Color("70"),
	lipgloss.Color("142"),
	lipgloss.Color("178"),
	lipgloss.Color("208"),
	lipgloss.Color("196"),
}

// renderHeatmap draws the pairwise similarity matrix tab. Cell colors
// use the remapped 0-to-1 scale, where 0.5 means orthogonal vectors.
// When the collection is larger than the panel, the top-left window is
// shown with a note about how many points are hidden.
func (model Model) renderHeatmap(panelWidth, panelHeight int) string {
	matrix := model.analysis.Similarity
	if matrix == nil || matrix.Size() == 0 {
		return centerTextInPanel("No similarities yet - add at least one word", panelWidth, panelHeight)
	}

	visiblePoints := matrix.Size()
	maxColumns := (panelWidth - heatmapLabelWidth) / heatmapCellWidth
	maxRows := panelHeight - 2
	if visiblePoints > maxColumns {
		visiblePoints = maxColumns
	}
	if visiblePoints > maxRows {
		visiblePoints = maxRows
	}
	if visiblePoints < 1 {
		return centerTextInPanel("Terminal too small for the heatmap", panelWidth, panelHeight)
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedLabelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true)

	var outputBuilder strings.Builder
	for rowIndex := 0; rowIndex < visiblePoints; rowIndex++ {
		rowLabel := padOrTruncateLabel(model.labels[rowIndex], heatmapLabelWidth-1)
		if rowIndex == model.selectedIndex {
			outputBuilder.WriteString(selectedLabelStyle.Render(rowLabel))
		} else {
			outputBuilder.WriteString(labelStyle.Render(rowLabel))
		}
		outputBuilder.WriteString(" ")

		for columnIndex := 0; columnIndex < visiblePoints; columnIndex++ {
			cellStyle := lipgloss.NewStyle().Foreground(rampColor(matrix.Display(rowIndex, columnIndex)))
			outputBuilder.WriteString(cellStyle.Render("██"))
		}
		outputBuilder.WriteString("\n")
	}

	legend := labelStyle.Render("0.0 ")
	for _, rampEntry := range heatmapRamp {
		legend += lipgloss.NewStyle().Foreground(rampEntry).Render("█")
	}
	legend += labelStyle.Render(" 1.0")
	if hiddenPoints := matrix.Size() - visiblePoints; hiddenPoints > 0 {
		legend += labelStyle.Render(fmt.Sprintf("   (+%d points not shown)", hiddenPoints))
	}
	outputBuilder.WriteString(legend)

	return outputBuilder.String()
}

// rampColor maps a remapped similarity in [0, 1] to a ramp color.
func rampColor(displayValue float64) lipgloss.Color {
	rampIndex := int(displayValue * float64(len(heatmapRamp)))
	if rampIndex >= len(heatmapRamp) {
		rampIndex = len(heatmapRamp) - 1
	}
	if rampIndex < 0 {
		rampIndex = 0
	}
	return heatmapRamp[rampIndex]
}

// padOrTruncateLabel fits a label into a fixed-width gutter.
func padOrTruncateLabel(label string, width int) string {
	if len(label) > width {
		return label[:width]
	}
	return label + strings.Repeat(" ", width-len(label))
}

// centerTextInPanel places a single message in the middle of a panel.
func centerTextInPanel(message string, panelWidth, panelHeight int) string {
	var outputBuilder strings.Builder
	for rowIndex := 0; rowIndex < panelHeight/2; rowIndex++ {
		outputBuilder.WriteString("\n")
	}
	leftPad := (panelWidth - len(message)) / 2
	if leftPad > 0 {
		outputBuilder.WriteString(strings.Repeat(" ", leftPad))
	}
	outputBuilder.WriteString(message)
	return outputBuilder.String()
}
