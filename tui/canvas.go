package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvasPadding keeps points off the canvas border.
const canvasPadding = 2.0

// maxLabelLength truncates point labels on the map.
const maxLabelLength = 12

// canvasCell is a single cell in the rendering grid.
type canvasCell struct {
	char  rune
	style lipgloss.Style
}

// clusterPalette colors points by their cluster label. Labels wrap
// around when there are more clusters than colors, which the derivation
// rule never produces.
var clusterPalette = []lipgloss.Color{
	lipgloss.Color("81"),  // cyan
	lipgloss.Color("213"), // pink
	lipgloss.Color("150"), // green
	lipgloss.Color("215"), // orange
	lipgloss.Color("141"), // purple
}

// renderCanvas draws the map tab: every point at its display position,
// colored by cluster, with connector lines from the selected point to
// its ranked neighbors.
func (model Model) renderCanvas(canvasWidth, canvasHeight int) string {
	canvasGrid := newCanvasGrid(canvasWidth, canvasHeight)

	if len(model.analysis.Display) == 0 {
		renderEmptyCanvasMessage(canvasGrid, canvasWidth, canvasHeight)
		return canvasGridToString(canvasGrid)
	}

	neighborIndices := model.selectedNeighborIndices()
	model.drawNeighborConnectors(canvasGrid, neighborIndices)

	for _, pointIndex := range model.renderOrder(neighborIndices) {
		model.drawPoint(canvasGrid, pointIndex, neighborIndices, canvasWidth)
	}

	return canvasGridToString(canvasGrid)
}

func newCanvasGrid(canvasWidth, canvasHeight int) [][]canvasCell {
	canvasGrid := make([][]canvasCell, canvasHeight)
	for rowIndex := range canvasGrid {
		canvasGrid[rowIndex] = make([]canvasCell, canvasWidth)
		for columnIndex := range canvasGrid[rowIndex] {
			canvasGrid[rowIndex][columnIndex] = canvasCell{char: ' ', style: lipgloss.NewStyle()}
		}
	}
	return canvasGrid
}

func renderEmptyCanvasMessage(canvasGrid [][]canvasCell, canvasWidth, canvasHeight int) {
	placeholderMessage := "The museum is empty - press i and type a word"
	centerRowIndex := canvasHeight / 2
	startColumnIndex := (canvasWidth - len(placeholderMessage)) / 2
	if startColumnIndex < 0 {
		startColumnIndex = 0
	}
	for characterOffset, character := range placeholderMessage {
		if startColumnIndex+characterOffset < canvasWidth {
			canvasGrid[centerRowIndex][startColumnIndex+characterOffset] = canvasCell{char: character, style: lipgloss.NewStyle()}
		}
	}
}

// gridPosition converts a display coordinate to a grid cell, clamped to
// the canvas.
func gridPosition(canvasGrid [][]canvasCell, x, y float64) (rowIndex, columnIndex int) {
	canvasHeight := len(canvasGrid)
	canvasWidth := len(canvasGrid[0])

	columnIndex = int(math.Round(x))
	rowIndex = int(math.Round(y))

	if columnIndex < 0 {
		columnIndex = 0
	}
	if columnIndex >= canvasWidth {
		columnIndex = canvasWidth - 1
	}
	if rowIndex < 0 {
		rowIndex = 0
	}
	if rowIndex >= canvasHeight {
		rowIndex = canvasHeight - 1
	}
	return rowIndex, columnIndex
}

// renderOrder sorts point indices so highlighted points draw last, on
// top of everything else. Order: unselected, neighbors, selected.
func (model Model) renderOrder(neighborIndices map[int]bool) []int {
	var normalPoints, neighborPoints, selectedPoints []int
	for pointIndex := range model.analysis.Display {
		switch {
		case pointIndex == model.selectedIndex:
			selectedPoints = append(selectedPoints, pointIndex)
		case neighborIndices[pointIndex]:
			neighborPoints = append(neighborPoints, pointIndex)
		default:
			normalPoints = append(normalPoints, pointIndex)
		}
	}

	ordered := make([]int, 0, len(model.analysis.Display))
	ordered = append(ordered, normalPoints...)
	ordered = append(ordered, neighborPoints...)
	ordered = append(ordered, selectedPoints...)
	return ordered
}

// drawPoint renders one point's marker and label.
func (model Model) drawPoint(canvasGrid [][]canvasCell, pointIndex int, neighborIndices map[int]bool, canvasWidth int) {
	isSelected := pointIndex == model.selectedIndex
	isNeighbor := neighborIndices[pointIndex]
	isPending := pointIndex < len(model.pending) && model.pending[pointIndex]
	hasSelection := model.selectedIndex >= 0 && model.selectedIndex < len(model.labels)

	// Focus mode hides everything unrelated to the selection.
	if model.focusMode && hasSelection && !isSelected && !isNeighbor {
		return
	}

	point := model.analysis.Display[pointIndex]
	rowIndex, columnIndex := gridPosition(canvasGrid, point.X, point.Y)

	markerSymbol, markerStyle, labelStyle := model.pointStyles(pointIndex, isSelected, isNeighbor, isPending)

	markerRunes := []rune(markerSymbol)
	markerStartColumn := columnIndex
	if isSelected {
		markerStartColumn = columnIndex - 1
		if markerStartColumn < 0 {
			markerStartColumn = 0
		}
	}
	for runeOffset, markerRune := range markerRunes {
		if markerStartColumn+runeOffset < canvasWidth {
			canvasGrid[rowIndex][markerStartColumn+runeOffset] = canvasCell{char: markerRune, style: markerStyle}
		}
	}

	labelText := model.labels[pointIndex]
	if len(labelText) > maxLabelLength {
		labelText = labelText[:maxLabelLength]
	}
	labelStartColumn := columnIndex + len(markerRunes) + 1
	if isSelected {
		labelStartColumn = columnIndex + 3
	}
	for characterOffset, labelCharacter := range labelText {
		if labelStartColumn+characterOffset < canvasWidth {
			canvasGrid[rowIndex][labelStartColumn+characterOffset] = canvasCell{char: labelCharacter, style: labelStyle}
		}
	}
}

// pointStyles picks the marker and colors for one point based on its
// selection, neighbor, pending and cluster state.
func (model Model) pointStyles(pointIndex int, isSelected, isNeighbor, isPending bool) (string, lipgloss.Style, lipgloss.Style) {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	switch {
	case isSelected:
		highlight := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
		labelHighlight := lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true)
		return "[*]", highlight, labelHighlight

	case isNeighbor:
		neighborStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
		neighborLabel := lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
		return "◆", neighborStyle, neighborLabel

	case isPending:
		// Pending points sit at their placeholder position and render
		// hollow and dim until the real embedding lands.
		return "◌", dimStyle, dimStyle
	}

	if model.showClusters && pointIndex < len(model.analysis.ClusterLabels) {
		clusterColor := clusterPalette[model.analysis.ClusterLabels[pointIndex]%len(clusterPalette)]
		clusterStyle := lipgloss.NewStyle().Foreground(clusterColor)
		return "○", clusterStyle, clusterStyle
	}
	return "○", dimStyle, dimStyle
}

// drawNeighborConnectors draws dotted lines from the selected point to
// each of its ranked neighbors.
func (model Model) drawNeighborConnectors(canvasGrid [][]canvasCell, neighborIndices map[int]bool) {
	if model.selectedIndex < 0 || model.selectedIndex >= len(model.analysis.Display) {
		return
	}

	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	selectedPoint := model.analysis.Display[model.selectedIndex]
	selectedRow, selectedColumn := gridPosition(canvasGrid, selectedPoint.X, selectedPoint.Y)

	for pointIndex := range model.analysis.Display {
		if !neighborIndices[pointIndex] {
			continue
		}
		targetPoint := model.analysis.Display[pointIndex]
		targetRow, targetColumn := gridPosition(canvasGrid, targetPoint.X, targetPoint.Y)
		drawLineOnCanvas(canvasGrid, selectedColumn, selectedRow, targetColumn, targetRow, lineStyle)
	}
}

func canvasGridToString(canvasGrid [][]canvasCell) string {
	var outputBuilder strings.Builder
	for rowIndex, gridRow := range canvasGrid {
		for _, cell := range gridRow {
			outputBuilder.WriteString(cell.style.Render(string(cell.char)))
		}
		if rowIndex < len(canvasGrid)-1 {
			outputBuilder.WriteString("\n")
		}
	}
	return outputBuilder.String()
}

// drawLineOnCanvas uses Bresenham's line algorithm to draw a dotted
// line between two grid cells, only filling cells that are still empty.
func drawLineOnCanvas(canvasGrid [][]canvasCell, startX, startY, endX, endY int, lineStyle lipgloss.Style) {
	deltaX := absoluteValue(endX - startX)
	deltaY := absoluteValue(endY - startY)

	stepDirectionX := 1
	if startX > endX {
		stepDirectionX = -1
	}
	stepDirectionY := 1
	if startY > endY {
		stepDirectionY = -1
	}

	errorTerm := deltaX - deltaY
	currentX := startX
	currentY := startY

	for {
		if currentY >= 0 && currentY < len(canvasGrid) && currentX >= 0 && currentX < len(canvasGrid[0]) {
			if canvasGrid[currentY][currentX].char == ' ' {
				canvasGrid[currentY][currentX] = canvasCell{char: '·', style: lineStyle}
			}
		}

		if currentX == endX && currentY == endY {
			break
		}

		doubledError := 2 * errorTerm
		if doubledError > -deltaY {
			errorTerm -= deltaY
			currentX += stepDirectionX
		}
		if doubledError < deltaX {
			errorTerm += deltaX
			currentY += stepDirectionY
		}
	}
}

// absoluteValue returns the absolute value of an integer.
func absoluteValue(number int) int {
	if number < 0 {
		return -number
	}
	return number
}
