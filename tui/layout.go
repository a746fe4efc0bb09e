package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	overlayPanelWidth  = 44
	overlayPanelHeight = 20
	inputOverlayWidth  = 60
	minCanvasWidth     = 40
	minCanvasHeight    = 10
	tabBarHeight       = 1
	statusBarHeight    = 1
	borderSize         = 2
)

type viewTab int

const (
	tabMap viewTab = iota
	tabHeatmap
	tabList
	tabStats
	tabCount
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeInput
)

type layoutDimensions struct {
	totalWidth   int
	totalHeight  int
	canvasWidth  int
	canvasHeight int
}

func (m Model) calculateLayout() layoutDimensions {
	marginX := 2
	marginY := 2

	totalWidth := m.width - marginX
	totalHeight := m.height - marginY

	canvasHeight := totalHeight - tabBarHeight - statusBarHeight
	if canvasHeight < minCanvasHeight {
		canvasHeight = minCanvasHeight
	}

	canvasWidth := totalWidth - borderSize
	if canvasWidth < minCanvasWidth {
		canvasWidth = minCanvasWidth
	}

	return layoutDimensions{
		totalWidth:   totalWidth,
		totalHeight:  totalHeight,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

type styles struct {
	title       lipgloss.Style
	canvas      lipgloss.Style
	overlay     lipgloss.Style
	input       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	tabBar      lipgloss.Style
	statusBar   lipgloss.Style
	errorText   lipgloss.Style
}

func newStyles() styles {
	accentColor := lipgloss.Color("#FF87D7")
	borderColor := lipgloss.Color("#5F5FAF")
	canvasBorderColor := lipgloss.Color("#FF8700")
	dimColor := lipgloss.Color("#6C6C6C")
	bgColor := lipgloss.Color("#303030")

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor),

		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(canvasBorderColor),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Background(bgColor).
			Padding(0, 1),

		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Background(bgColor).
			Padding(0, 1),

		tabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1),

		tabInactive: lipgloss.NewStyle().
			Foreground(dimColor).
			Padding(0, 1),

		tabBar: lipgloss.NewStyle().
			Foreground(dimColor),

		statusBar: lipgloss.NewStyle().
			Foreground(dimColor),

		errorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")),
	}
}

// View renders the complete interface.
func (m Model) View() string {
	s := newStyles()
	layout := m.calculateLayout()

	var b strings.Builder
	b.WriteString(m.renderTabBar(s, layout.totalWidth))
	b.WriteString("\n")
	b.WriteString(m.renderContentArea(s, layout))
	b.WriteString("\n")
	if errorLine := m.renderError(s); errorLine != "" {
		b.WriteString(errorLine)
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatusBar(s, layout.totalWidth))

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) renderTabBar(s styles, width int) string {
	tabs := []struct {
		name string
		tab  viewTab
	}{
		{"Map", tabMap},
		{"Heatmap", tabHeatmap},
		{"List", tabList},
		{"Stats", tabStats},
	}

	var parts []string
	for _, t := range tabs {
		style := s.tabInactive
		if t.tab == m.activeTab {
			style = s.tabActive
		}
		parts = append(parts, style.Render(t.name))
	}

	tabRow := strings.Join(parts, s.tabBar.Render(" │ "))
	title := s.title.Render("museum of words")

	tabWidth := lipgloss.Width(tabRow)
	titleWidth := lipgloss.Width(title)
	gap := width - tabWidth - titleWidth
	if gap < 1 {
		gap = 1
	}

	return tabRow + strings.Repeat(" ", gap) + title
}

func (m Model) renderContentArea(s styles, layout layoutDimensions) string {
	innerWidth := layout.canvasWidth - borderSize
	innerHeight := layout.canvasHeight - borderSize

	var content string
	switch m.activeTab {
	case tabHeatmap:
		content = m.renderHeatmap(innerWidth, innerHeight)
	case tabList:
		content = m.renderList(innerWidth, innerHeight)
	case tabStats:
		content = m.renderStats(innerWidth, innerHeight)
	default:
		content = m.renderCanvas(innerWidth, innerHeight)
	}

	contentBox := s.canvas.
		Width(innerWidth).
		Height(innerHeight).
		Render(content)

	showPanel := m.showMetadata && m.activeTab == tabMap && m.selectedIndex >= 0 && m.selectedIndex < len(m.labels)
	if showPanel {
		contentBox = m.overlayMetadataPanel(contentBox, s, layout)
	}

	if m.inputMode == modeInput {
		contentBox = m.overlayInputBox(contentBox, s, layout)
	}

	return contentBox
}

func (m Model) overlayMetadataPanel(base string, s styles, layout layoutDimensions) string {
	panelInnerWidth := overlayPanelWidth - 4
	panelInnerHeight := overlayPanelHeight

	if panelInnerHeight > layout.canvasHeight-4 {
		panelInnerHeight = layout.canvasHeight - 4
	}

	metadataContent := m.renderMetadata(panelInnerWidth, panelInnerHeight)
	panel := s.overlay.
		Width(panelInnerWidth).
		Height(panelInnerHeight).
		Render(metadataContent)

	return overlayAt(base, panel, layout.canvasWidth-overlayPanelWidth-1, 1)
}

func (m Model) overlayInputBox(base string, s styles, layout layoutDimensions) string {
	inputWidth := inputOverlayWidth - 4

	var lines []string
	if m.input == "" {
		lines = append(lines, "Type to add a word, Enter to save, Esc to cancel")
	} else {
		lines = append(lines, m.input)
	}

	if len(m.inputTokens) > 0 {
		var tokenTexts []string
		for _, token := range m.inputTokens {
			tokenTexts = append(tokenTexts, strings.TrimSpace(token.Text))
		}
		tokenLine := fmt.Sprintf("%d tokens: %s", len(m.inputTokens), strings.Join(tokenTexts, "·"))
		if len(tokenLine) > inputWidth {
			tokenLine = tokenLine[:inputWidth]
		}
		lines = append(lines, tokenLine)
	}

	if len(m.liveMatches) > 0 {
		var matchTexts []string
		for _, match := range m.liveMatches {
			matchTexts = append(matchTexts, match.Text)
		}
		matchLine := "near: " + strings.Join(matchTexts, ", ")
		if len(matchLine) > inputWidth {
			matchLine = matchLine[:inputWidth]
		}
		lines = append(lines, matchLine)
	}

	inputBox := s.input.
		Width(inputWidth).
		Render(strings.Join(lines, "\n"))

	x := (layout.canvasWidth - inputOverlayWidth) / 2
	y := layout.canvasHeight / 2

	return overlayAt(base, inputBox, x, y)
}

// renderMetadata fills the side panel for the selected point.
func (m Model) renderMetadata(panelWidth, panelHeight int) string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.labels) {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	var lines []string
	lines = append(lines, headerStyle.Render("Selected"))
	lines = append(lines, valueStyle.Render(truncateString(m.labels[m.selectedIndex], panelWidth)))
	if m.selectedIndex < len(m.pending) && m.pending[m.selectedIndex] {
		lines = append(lines, labelStyle.Render("(placeholder, embedding in flight)"))
	}
	lines = append(lines, "")

	if m.selectedIndex < len(m.vectors) && len(m.vectors[m.selectedIndex]) > 0 {
		vector := m.vectors[m.selectedIndex]
		lines = append(lines, labelStyle.Render("Dim: ")+valueStyle.Render(fmt.Sprintf("%d", len(vector))))

		minValue, maxValue, meanValue := vectorStatistics(vector)
		lines = append(lines, labelStyle.Render("Min/Max: ")+valueStyle.Render(fmt.Sprintf("%.3f / %.3f", minValue, maxValue)))
		lines = append(lines, labelStyle.Render("Mean: ")+valueStyle.Render(fmt.Sprintf("%.4f", meanValue)))
		lines = append(lines, labelStyle.Render("L2 norm: ")+valueStyle.Render(fmt.Sprintf("%.4f", vectorNorm(vector))))
	}
	if clusterLabel := m.clusterLabelFor(m.selectedIndex); clusterLabel >= 0 {
		lines = append(lines, labelStyle.Render("Wing: ")+valueStyle.Render(fmt.Sprintf("%d", clusterLabel+1)))
	}
	lines = append(lines, "")

	if m.selectedIndex < len(m.analysis.Neighbors) && len(m.analysis.Neighbors[m.selectedIndex]) > 0 {
		lines = append(lines, headerStyle.Render("Nearest"))
		for _, neighborEntry := range m.analysis.Neighbors[m.selectedIndex] {
			if neighborEntry.Index >= len(m.labels) {
				continue
			}
			displaySimilarity := (neighborEntry.Similarity + 1) / 2
			neighborLine := fmt.Sprintf("%.3f %s", displaySimilarity, truncateString(m.labels[neighborEntry.Index], panelWidth-7))
			lines = append(lines, neighborLine)
		}
	}

	for len(lines) < panelHeight {
		lines = append(lines, "")
	}
	if len(lines) > panelHeight {
		lines = lines[:panelHeight]
	}

	return strings.Join(lines, "\n")
}

func vectorStatistics(vector []float32) (minValue, maxValue, meanValue float64) {
	if len(vector) == 0 {
		return
	}
	minValue = float64(vector[0])
	maxValue = float64(vector[0])
	var sum float64
	for _, component := range vector {
		value := float64(component)
		if value < minValue {
			minValue = value
		}
		if value > maxValue {
			maxValue = value
		}
		sum += value
	}
	meanValue = sum / float64(len(vector))
	return
}

func vectorNorm(vector []float32) float64 {
	var sumOfSquares float64
	for _, component := range vector {
		sumOfSquares += float64(component) * float64(component)
	}
	return math.Sqrt(sumOfSquares)
}

func truncateString(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	if maxLength < 3 {
		return text[:maxLength]
	}
	return text[:maxLength-3] + "..."
}

func overlayAt(base, overlay string, x, y int) string {
	bgLines, bgWidth := getLines(base)
	fgLines, fgWidth := getLines(overlay)
	bgHeight := len(bgLines)
	fgHeight := len(fgLines)

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return overlay
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > bgWidth-fgWidth {
		x = bgWidth - fgWidth
	}
	if y > bgHeight-fgHeight {
		y = bgHeight - fgHeight
	}

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.StringWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.StringWidth(fgLine)

		right := ansi.TruncateLeft(bgLine, pos, "")
		lineWidth := ansi.StringWidth(bgLine)
		rightWidth := ansi.StringWidth(right)
		if rightWidth <= lineWidth-pos {
			b.WriteString(strings.Repeat(" ", lineWidth-rightWidth-pos))
		}
		b.WriteString(right)
	}

	return b.String()
}

func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		w := ansi.StringWidth(l)
		if widest < w {
			widest = w
		}
	}
	return lines, widest
}

func (m Model) renderStatusBar(s styles, width int) string {
	var help string

	if m.inputMode == modeInput {
		help = "Enter: save │ Esc: cancel"
	} else {
		projectionMethod := "PCA"
		if m.useNonlinear {
			projectionMethod = "UMAP"
		}
		clusterStatus := "off"
		if m.showClusters {
			clusterStatus = "on"
		}

		help = "↑↓: select │ /: info │ i: input │ f: focus │ p: " + projectionMethod + " │ c: wings " + clusterStatus + " │ 1-4: tabs │ q: quit"
	}

	version := m.version
	padding := width - lipgloss.Width(help) - lipgloss.Width(version)
	if padding < 1 {
		padding = 1
	}

	return s.statusBar.Render(help + strings.Repeat(" ", padding) + version)
}

func (m Model) renderError(s styles) string {
	if m.err == nil {
		return ""
	}
	return s.errorText.Render("Error: " + m.err.Error())
}
