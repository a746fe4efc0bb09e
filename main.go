// Command dl-vector-museum-of-words is a terminal museum of embedding
// space: type words, watch them take their place on a 2D map, and
// explore why the model thinks they belong where they are.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lirad/dl-vector-museum-of-words/config"
	"github.com/lirad/dl-vector-museum-of-words/dataimport"
	"github.com/lirad/dl-vector-museum-of-words/embedding"
	"github.com/lirad/dl-vector-museum-of-words/embedstore"
	"github.com/lirad/dl-vector-museum-of-words/huggingface"
	"github.com/lirad/dl-vector-museum-of-words/logger"
	"github.com/lirad/dl-vector-museum-of-words/ollama"
	"github.com/lirad/dl-vector-museum-of-words/preload"
	"github.com/lirad/dl-vector-museum-of-words/qdrant"
	"github.com/lirad/dl-vector-museum-of-words/tokenizer"
	"github.com/lirad/dl-vector-museum-of-words/tui"
	"github.com/lirad/dl-vector-museum-of-words/vecindex"
)

// version is set at build time via ldflags, defaults to "dev" for local builds.
var version = "dev"

var (
	configPathFlag string
	verboseFlag    bool
)

func main() {
	rootCommand := newRootCommand()
	if executeError := rootCommand.Execute(); executeError != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", executeError)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "museum",
		Short: "A terminal museum of embedding space",
		Long: `Type words and short phrases and watch them take their place on a
2D map of embedding space, with similarity heatmaps, nearest-neighbor
lists and semantic clusters computed live.`,
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, args []string) {
			logger.SetVerbose(verboseFlag)
		},
		RunE: runMuseum,
	}

	rootCommand.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to config file (default ~/.museum-of-words/config.toml)")
	rootCommand.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log diagnostic output to stderr")

	rootCommand.AddCommand(newPreloadCommand())
	rootCommand.AddCommand(newImportCommand())
	rootCommand.AddCommand(newFetchCommand())
	rootCommand.AddCommand(newVersionCommand())

	return rootCommand
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Run: func(command *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

// loadConfig resolves the config path and loads settings with defaults.
func loadConfig() (config.Config, error) {
	configPath := configPathFlag
	if configPath == "" {
		defaultPath, pathError := config.DefaultPath()
		if pathError != nil {
			return config.Config{}, pathError
		}
		configPath = defaultPath
	}
	return config.Load(configPath)
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(settings config.Config) embedding.Embedder {
	if settings.Embedding.Provider == "huggingface" {
		return huggingface.NewEmbeddingsClient(settings.Embedding.HuggingFaceModel, settings.Embedding.HuggingFaceToken)
	}
	return ollama.NewClient(settings.Embedding.OllamaURL, settings.Embedding.Model)
}

// qdrantPersister adapts the Qdrant client to the store's persister
// hook, minting a fresh UUID per stored point.
type qdrantPersister struct {
	client *qdrant.Client
}

func (persister *qdrantPersister) Persist(text string, vector []float32) error {
	return persister.client.Upsert(context.Background(), uuid.New().String(), text, vector)
}

// buildStore wires the store, optionally backed by Qdrant persistence.
// When persistence is enabled, previously stored points are seeded into
// the session. The returned closer is nil when Qdrant is disabled.
func buildStore(settings config.Config, embedder embedding.Embedder) (*embedstore.Store, func(), error) {
	store := embedstore.NewStore(embedder, settings.Embedding.Dimensions)
	if !settings.Qdrant.Enabled {
		return store, nil, nil
	}

	qdrantClient, connectError := qdrant.NewClient(
		settings.Qdrant.Address,
		settings.Qdrant.Collection,
		uint64(settings.Embedding.Dimensions),
	)
	if connectError != nil {
		return nil, nil, fmt.Errorf("connect to Qdrant (is it running? docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant): %w", connectError)
	}

	storedPoints, loadError := qdrantClient.GetAll(context.Background())
	if loadError != nil {
		qdrantClient.Close()
		return nil, nil, fmt.Errorf("loading stored points: %w", loadError)
	}
	for _, storedPoint := range storedPoints {
		store.Seed(storedPoint.Text, storedPoint.Vector)
	}
	logger.Debug("seeded %d points from Qdrant", len(storedPoints))

	store.SetPersister(&qdrantPersister{client: qdrantClient})
	return store, func() { qdrantClient.Close() }, nil
}

// runMuseum starts the interactive terminal interface.
func runMuseum(command *cobra.Command, args []string) error {
	settings, configError := loadConfig()
	if configError != nil {
		return configError
	}

	embedder := newEmbedder(settings)
	store, closeStore, storeError := buildStore(settings, embedder)
	if storeError != nil {
		return storeError
	}
	if closeStore != nil {
		defer closeStore()
	}

	return startInterface(store, embedder, settings)
}

func newPreloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preload",
		Short: "Embed the demo word list, then start the museum",
		RunE: func(command *cobra.Command, args []string) error {
			settings, configError := loadConfig()
			if configError != nil {
				return configError
			}

			embedder := newEmbedder(settings)
			store, closeStore, storeError := buildStore(settings, embedder)
			if storeError != nil {
				return storeError
			}
			if closeStore != nil {
				defer closeStore()
			}

			if preloadError := embedAll(store, preload.Words()); preloadError != nil {
				return preloadError
			}

			return startInterface(store, embedder, settings)
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Embed texts from a CSV, JSON or plain text file, then start the museum",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			settings, configError := loadConfig()
			if configError != nil {
				return configError
			}

			texts, loadError := dataimport.LoadTexts(args[0])
			if loadError != nil {
				return fmt.Errorf("loading dataset: %w", loadError)
			}
			if len(texts) == 0 {
				return fmt.Errorf("no texts found in %s", args[0])
			}

			embedder := newEmbedder(settings)
			store, closeStore, storeError := buildStore(settings, embedder)
			if storeError != nil {
				return storeError
			}
			if closeStore != nil {
				defer closeStore()
			}

			if importError := embedAll(store, texts); importError != nil {
				return importError
			}

			return startInterface(store, embedder, settings)
		},
	}
}

func newFetchCommand() *cobra.Command {
	var datasetConfig string
	var datasetSplit string
	var datasetColumn string
	var maxRows int

	fetchCommand := &cobra.Command{
		Use:   "fetch <dataset>",
		Short: "Embed a text column from a Hugging Face dataset, then start the museum",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			settings, configError := loadConfig()
			if configError != nil {
				return configError
			}

			datasetClient := huggingface.NewClient()
			texts, fetchError := datasetClient.FetchTexts(args[0], datasetConfig, datasetSplit, datasetColumn, maxRows)
			if fetchError != nil {
				return fmt.Errorf("fetching dataset: %w", fetchError)
			}
			if len(texts) == 0 {
				return fmt.Errorf("no texts found in column %q of %s", datasetColumn, args[0])
			}

			embedder := newEmbedder(settings)
			store, closeStore, storeError := buildStore(settings, embedder)
			if storeError != nil {
				return storeError
			}
			if closeStore != nil {
				defer closeStore()
			}

			if embedError := embedAll(store, texts); embedError != nil {
				return embedError
			}

			return startInterface(store, embedder, settings)
		},
	}

	fetchCommand.Flags().StringVar(&datasetConfig, "dataset-config", "default", "dataset config name")
	fetchCommand.Flags().StringVar(&datasetSplit, "split", "train", "dataset split")
	fetchCommand.Flags().StringVar(&datasetColumn, "column", "text", "text column to embed")
	fetchCommand.Flags().IntVar(&maxRows, "max-rows", 200, "maximum rows to fetch, 0 for all")

	return fetchCommand
}

// embedAll embeds texts synchronously with progress output, so bulk
// loads finish before the interface starts instead of trickling in.
func embedAll(store *embedstore.Store, texts []string) error {
	fmt.Printf("Embedding %d texts...\n", len(texts))
	for textIndex, currentText := range texts {
		if embedError := store.Add(currentText); embedError != nil {
			return fmt.Errorf("embed %q: %w", currentText, embedError)
		}
		fmt.Printf("\r[%d/%d] %s", textIndex+1, len(texts), truncateForProgress(currentText, 40))
	}
	fmt.Println("\nDone.")
	return nil
}

// startInterface launches the TUI over a wired store. The token panel
// is optional; without the BPE vocabulary the rest of the museum works
// fine.
func startInterface(store *embedstore.Store, embedder embedding.Embedder, settings config.Config) error {
	bpeTokenizer, tokenizerError := tokenizer.New()
	if tokenizerError != nil {
		logger.Degraded("token panel disabled: %v", tokenizerError)
		bpeTokenizer = nil
	}

	model := tui.NewModel(store, vecindex.New(), embedder, bpeTokenizer, settings, version)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, runError := program.Run(); runError != nil {
		return fmt.Errorf("running program: %w", runError)
	}
	return nil
}

func truncateForProgress(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength-3] + "..."
}
