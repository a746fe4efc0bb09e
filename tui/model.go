// Package tui implements the terminal interface of the museum: a map
// of the embedding collection, a similarity heatmap, a list view, and
// a stats view, all driven by full analysis passes over the in-memory
// store.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lirad/dl-vector-museum-of-words/config"
	"github.com/lirad/dl-vector-museum-of-words/embedding"
	"github.com/lirad/dl-vector-museum-of-words/embedstore"
	"github.com/lirad/dl-vector-museum-of-words/pipeline"
	"github.com/lirad/dl-vector-museum-of-words/projection"
	"github.com/lirad/dl-vector-museum-of-words/tokenizer"
	"github.com/lirad/dl-vector-museum-of-words/vecindex"
)

// inputDebounceDelay is how long typing must pause before the live
// query fires. Each keystroke restarts the window.
const inputDebounceDelay = 300 * time.Millisecond

// liveMatchLimit is how many approximate matches the input overlay
// shows while typing.
const liveMatchLimit = 3

// Model is the complete state of the terminal interface.
type Model struct {
	width, height int

	store     *embedstore.Store
	index     *vecindex.Index
	embedder  embedding.Embedder
	tokenizer *tokenizer.Tokenizer

	settings config.Config

	// Text entry state.
	input       string
	cursorPos   int
	inputMode   inputMode
	inputTokens []tokenizer.Token
	liveMatches []vecindex.Match

	// querySequence stamps each debounce window so stale live-query
	// results can be recognized and dropped.
	querySequence int

	// Latest analysis pass, rendered by every tab.
	analysis pipeline.Outputs
	labels   []string
	pending  []bool
	vectors  [][]float32

	// An analysis pass runs at most one at a time; changes arriving
	// mid-pass queue exactly one follow-up pass.
	analysisRunning bool
	analysisQueued  bool

	selectedIndex int
	activeTab     viewTab
	showMetadata  bool
	focusMode     bool
	showClusters  bool
	useNonlinear  bool

	err     error
	version string
}

// analysisComplete carries the outputs of a finished analysis pass.
type analysisComplete struct {
	outputs pipeline.Outputs
	labels  []string
	pending []bool
	vectors [][]float32
	err     error
}

// storeUpdated signals that an in-flight embedding resolved.
type storeUpdated struct{}

// analysisRequested asks for a pass without touching the store's
// update listener. Used for the initial pass.
type analysisRequested struct{}

// inputDebounceFired signals that typing paused long enough to run the
// live query for the stamped sequence.
type inputDebounceFired struct {
	sequence int
}

// liveQueryResult carries the tokenization and approximate matches for
// the text as it stood when the debounce fired.
type liveQueryResult struct {
	sequence int
	tokens   []tokenizer.Token
	matches  []vecindex.Match
}

// NewModel creates the interface bound to the given collaborators. The
// tokenizer may be nil when the BPE vocabulary could not be loaded; the
// token panel simply stays empty.
func NewModel(
	store *embedstore.Store,
	index *vecindex.Index,
	embedder embedding.Embedder,
	bpeTokenizer *tokenizer.Tokenizer,
	settings config.Config,
	version string,
) Model {
	return Model{
		store:         store,
		index:         index,
		embedder:      embedder,
		tokenizer:     bpeTokenizer,
		settings:      settings,
		width:         80,
		height:        24,
		selectedIndex: -1,
		showMetadata:  true,
		showClusters:  true,
		useNonlinear:  settings.Projection.Method == "umap",
		version:       version,
	}
}

// Init starts listening for store updates and runs the first pass.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.waitForStoreUpdate(), model.startAnalysis())
}

// waitForStoreUpdate blocks on the store's update channel and converts
// each signal into a message.
func (model Model) waitForStoreUpdate() tea.Cmd {
	updates := model.store.Updates()
	return func() tea.Msg {
		<-updates
		return storeUpdated{}
	}
}

// Update handles all incoming messages and updates the model state.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.KeyMsg:
		return model.handleKeyPress(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, model.requestAnalysis()

	case storeUpdated:
		return model, tea.Batch(model.waitForStoreUpdate(), model.requestAnalysis())

	case analysisRequested:
		return model, model.requestAnalysis()

	case analysisComplete:
		return model.handleAnalysisComplete(message)

	case inputDebounceFired:
		return model.handleDebounceFired(message)

	case liveQueryResult:
		return model.handleLiveQueryResult(message)
	}

	return model, nil
}

// requestAnalysis starts a pass, or queues one if a pass is already
// running. Passes never pile up beyond one pending.
func (model *Model) requestAnalysis() tea.Cmd {
	if model.analysisRunning {
		model.analysisQueued = true
		return nil
	}
	model.analysisRunning = true
	return model.runAnalysis()
}

// startAnalysis defers the first pass into the message loop, where the
// running/queued flags can be tracked on the live model.
func (model Model) startAnalysis() tea.Cmd {
	return func() tea.Msg {
		return analysisRequested{}
	}
}

// runAnalysis snapshots the store and computes a full pass off the UI
// goroutine: similarity matrix, neighbor lists, projected coordinates
// fitted to the current canvas, and cluster labels. It also refreshes
// the approximate index from the same snapshot so live queries and the
// map agree.
func (model Model) runAnalysis() tea.Cmd {
	snapshot := model.store.Snapshot()
	index := model.index
	viewport := model.canvasViewport()

	method := projection.MethodLinear
	if model.useNonlinear {
		method = projection.MethodNonlinear
	}

	inputs := pipeline.Inputs{
		Method: method,
		Params: projection.Params{
			NeighborhoodSize: model.settings.Projection.NeighborhoodSize,
			MinSeparation:    model.settings.Projection.MinSeparation,
		},
		NeighborCount:    model.settings.Analysis.NeighborCount,
		ClusterCount:     model.settings.Analysis.ClusterCount,
		OutputDimensions: 2,
		Viewport:         viewport,
	}

	return func() tea.Msg {
		labels := make([]string, len(snapshot))
		pending := make([]bool, len(snapshot))
		inputs.Vectors = make([][]float32, len(snapshot))
		for entryIndex, entry := range snapshot {
			labels[entryIndex] = entry.Text
			pending[entryIndex] = entry.Pending
			inputs.Vectors[entryIndex] = entry.Vector
		}

		index.Rebuild(labels, inputs.Vectors)

		outputs, analysisError := pipeline.Run(inputs)
		return analysisComplete{
			outputs: outputs,
			labels:  labels,
			pending: pending,
			vectors: inputs.Vectors,
			err:     analysisError,
		}
	}
}

// canvasViewport sizes the projection target to the map tab's drawable
// area, so display coordinates land directly on grid cells.
func (model Model) canvasViewport() projection.Viewport {
	layout := model.calculateLayout()
	return projection.Viewport{
		Width:   float64(layout.canvasWidth - borderSize),
		Height:  float64(layout.canvasHeight - borderSize),
		Padding: canvasPadding,
	}
}

// handleAnalysisComplete installs the fresh pass and starts the queued
// one if anything changed mid-flight.
func (model Model) handleAnalysisComplete(message analysisComplete) (tea.Model, tea.Cmd) {
	model.analysisRunning = false

	if message.err != nil {
		model.err = message.err
	} else {
		model.err = nil
		model.analysis = message.outputs
		model.labels = message.labels
		model.pending = message.pending
		model.vectors = message.vectors
	}

	if model.selectedIndex >= len(model.labels) {
		model.selectedIndex = len(model.labels) - 1
	}

	if model.analysisQueued {
		model.analysisQueued = false
		model.analysisRunning = true
		return model, model.runAnalysis()
	}
	return model, nil
}

// handleKeyPress processes keyboard input depending on the mode.
func (model Model) handleKeyPress(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.inputMode == modeInput {
		return model.handleInputModeKey(keyMessage)
	}
	return model.handleNormalModeKey(keyMessage)
}

func (model Model) handleNormalModeKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "ctrl+c", "q", "esc":
		return model, tea.Quit

	case "i":
		model.inputMode = modeInput
		model.input = ""
		model.cursorPos = 0
		model.inputTokens = nil
		model.liveMatches = nil

	case "1":
		model.activeTab = tabMap
	case "2":
		model.activeTab = tabHeatmap
	case "3":
		model.activeTab = tabList
	case "4":
		model.activeTab = tabStats
	case "tab":
		model.activeTab = (model.activeTab + 1) % tabCount

	case "up", "shift+tab":
		model.selectPreviousPoint()
	case "down":
		model.selectNextPoint()

	case "/":
		model.showMetadata = !model.showMetadata

	case "f":
		model.focusMode = !model.focusMode

	case "c":
		model.showClusters = !model.showClusters

	case "p":
		model.useNonlinear = !model.useNonlinear
		return model, model.requestAnalysis()
	}

	return model, nil
}

func (model Model) handleInputModeKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "esc":
		model.inputMode = modeNormal
		model.input = ""
		model.cursorPos = 0
		model.inputTokens = nil
		model.liveMatches = nil
		return model, nil

	case "ctrl+c":
		return model, tea.Quit

	case "enter":
		return model.handleEnterKey()

	case "backspace":
		if model.cursorPos > 0 {
			model.input = model.input[:model.cursorPos-1] + model.input[model.cursorPos:]
			model.cursorPos--
			return model, model.restartDebounce()
		}
		return model, nil

	case "left":
		if model.cursorPos > 0 {
			model.cursorPos--
		}
		return model, nil

	case "right":
		if model.cursorPos < len(model.input) {
			model.cursorPos++
		}
		return model, nil

	default:
		return model.handleCharacterInput(keyMessage)
	}
}

// handleEnterKey adds the typed text to the collection. The store
// records it immediately with a placeholder and embeds it in the
// background, so the point appears on the map right away.
func (model Model) handleEnterKey() (tea.Model, tea.Cmd) {
	if model.input == "" {
		return model, nil
	}

	model.store.Request(model.input)
	model.inputMode = modeNormal
	model.input = ""
	model.cursorPos = 0
	model.inputTokens = nil
	model.liveMatches = nil

	return model, model.requestAnalysis()
}

// handleCharacterInput inserts a typed character at the cursor.
func (model Model) handleCharacterInput(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyString := keyMessage.String()
	if len(keyString) != 1 {
		return model, nil
	}

	model.input = model.input[:model.cursorPos] + keyString + model.input[model.cursorPos:]
	model.cursorPos++
	return model, model.restartDebounce()
}

// restartDebounce opens a fresh debounce window stamped with a new
// sequence number. Earlier windows still fire, but their stale sequence
// makes their results a no-op.
func (model *Model) restartDebounce() tea.Cmd {
	model.querySequence++
	sequence := model.querySequence
	return tea.Tick(inputDebounceDelay, func(time.Time) tea.Msg {
		return inputDebounceFired{sequence: sequence}
	})
}

// handleDebounceFired runs the live query if the window is still the
// latest one.
func (model Model) handleDebounceFired(message inputDebounceFired) (tea.Model, tea.Cmd) {
	if message.sequence != model.querySequence || model.inputMode != modeInput {
		return model, nil
	}
	return model, model.runLiveQuery(message.sequence)
}

// runLiveQuery tokenizes the current input and asks the approximate
// index what it is closest to. Embedding failures are swallowed: the
// overlay just shows no matches until the next pause.
func (model Model) runLiveQuery(sequence int) tea.Cmd {
	inputText := model.input
	embedder := model.embedder
	index := model.index
	bpeTokenizer := model.tokenizer

	return func() tea.Msg {
		result := liveQueryResult{sequence: sequence}
		if inputText == "" {
			return result
		}

		if bpeTokenizer != nil {
			result.tokens = bpeTokenizer.Tokenize(inputText)
		}

		queryVector, embedError := embedder.Embed(inputText)
		if embedError == nil && len(queryVector) > 0 {
			result.matches = index.Nearest(queryVector, liveMatchLimit)
		}
		return result
	}
}

// handleLiveQueryResult installs overlay data for the latest query.
func (model Model) handleLiveQueryResult(message liveQueryResult) (tea.Model, tea.Cmd) {
	if message.sequence != model.querySequence || model.inputMode != modeInput {
		return model, nil
	}
	model.inputTokens = message.tokens
	model.liveMatches = message.matches
	return model, nil
}

// selectNextPoint moves the selection to the next point.
func (model *Model) selectNextPoint() {
	if len(model.labels) > 0 {
		model.selectedIndex = (model.selectedIndex + 1) % len(model.labels)
	}
}

// selectPreviousPoint moves the selection to the previous point.
func (model *Model) selectPreviousPoint() {
	if len(model.labels) > 0 {
		model.selectedIndex--
		if model.selectedIndex < 0 {
			model.selectedIndex = len(model.labels) - 1
		}
	}
}

// selectedNeighborIndices returns the indices of the selected point's
// ranked neighbors, empty when nothing is selected.
func (model Model) selectedNeighborIndices() map[int]bool {
	neighborIndices := make(map[int]bool)
	if model.selectedIndex < 0 || model.selectedIndex >= len(model.analysis.Neighbors) {
		return neighborIndices
	}
	for _, neighborEntry := range model.analysis.Neighbors[model.selectedIndex] {
		neighborIndices[neighborEntry.Index] = true
	}
	return neighborIndices
}
