// Package config loads the application's TOML configuration file.
// Every field has a working default, so the app runs with no file at
// all; the file exists for people pointing the museum at non-default
// services or models.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default service endpoints and analysis tuning.
const (
	defaultOllamaURL          = "http://localhost:11434"
	defaultEmbeddingModel     = "nomic-embed-text"
	defaultQdrantAddress      = "localhost:6334"
	defaultCollectionName     = "embeddings"
	defaultVectorDimensions   = 768
	defaultNeighborCount      = 3
	defaultProjectionMethod   = "pca"
	defaultNeighborhoodSize   = 15
	defaultMinSeparation      = 0.1
	defaultEmbeddingProvider  = "ollama"
	defaultHuggingFaceModelID = "sentence-transformers/all-MiniLM-L6-v2"
)

// Config is the full application configuration.
type Config struct {
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Qdrant     QdrantConfig     `toml:"qdrant"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Projection ProjectionConfig `toml:"projection"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "huggingface".
	Provider string `toml:"provider"`

	// OllamaURL is the HTTP endpoint of the Ollama server.
	OllamaURL string `toml:"ollama_url"`

	// Model is the Ollama embedding model name.
	Model string `toml:"model"`

	// HuggingFaceModel is the model id used when Provider is
	// "huggingface".
	HuggingFaceModel string `toml:"huggingface_model"`

	// HuggingFaceToken is the API token for the Hugging Face inference
	// API. Falls back to the HF_TOKEN environment variable when empty.
	HuggingFaceToken string `toml:"huggingface_token"`

	// Dimensions is the vector size the chosen model produces.
	Dimensions int `toml:"dimensions"`
}

// QdrantConfig configures the optional vector database.
type QdrantConfig struct {
	// Address is the gRPC endpoint of the Qdrant server.
	Address string `toml:"address"`

	// Collection is the collection embeddings are persisted to.
	Collection string `toml:"collection"`

	// Enabled turns persistence on. With it off the session is purely
	// in-memory.
	Enabled bool `toml:"enabled"`
}

// AnalysisConfig tunes the recomputation pass.
type AnalysisConfig struct {
	// NeighborCount is k for the per-point neighbor lists.
	NeighborCount int `toml:"neighbor_count"`

	// ClusterCount fixes the number of visual groups. Zero derives it
	// from the point count.
	ClusterCount int `toml:"cluster_count"`
}

// ProjectionConfig tunes dimensionality reduction.
type ProjectionConfig struct {
	// Method is the backend tried first, "pca" or "umap".
	Method string `toml:"method"`

	// NeighborhoodSize balances local versus global structure in the
	// nonlinear backend.
	NeighborhoodSize int `toml:"neighborhood_size"`

	// MinSeparation is the minimum spacing between embedded points in
	// the nonlinear backend.
	MinSeparation float64 `toml:"min_separation"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:         defaultEmbeddingProvider,
			OllamaURL:        defaultOllamaURL,
			Model:            defaultEmbeddingModel,
			HuggingFaceModel: defaultHuggingFaceModelID,
			Dimensions:       defaultVectorDimensions,
		},
		Qdrant: QdrantConfig{
			Address:    defaultQdrantAddress,
			Collection: defaultCollectionName,
		},
		Analysis: AnalysisConfig{
			NeighborCount: defaultNeighborCount,
		},
		Projection: ProjectionConfig{
			Method:           defaultProjectionMethod,
			NeighborhoodSize: defaultNeighborhoodSize,
			MinSeparation:    defaultMinSeparation,
		},
	}
}

// DefaultPath returns the standard config file location under the
// user's home directory.
func DefaultPath() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf("resolve home directory: %w", homeError)
	}
	return filepath.Join(homeDirectory, ".museum-of-words", "config.toml"), nil
}

// Load reads the config file at the given path, layering it over the
// defaults. A missing file is not an error; a malformed or invalid one
// is.
func Load(configPath string) (Config, error) {
	loaded := Default()

	fileContents, readError := os.ReadFile(configPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return loaded, nil
		}
		return Config{}, fmt.Errorf("read config: %w", readError)
	}

	if unmarshalError := toml.Unmarshal(fileContents, &loaded); unmarshalError != nil {
		return Config{}, fmt.Errorf("parse config: %w", unmarshalError)
	}

	if validationError := loaded.validate(); validationError != nil {
		return Config{}, validationError
	}
	return loaded, nil
}

func (config Config) validate() error {
	switch config.Embedding.Provider {
	case "ollama", "huggingface":
	default:
		return fmt.Errorf("unknown embedding provider %q", config.Embedding.Provider)
	}

	switch config.Projection.Method {
	case "pca", "umap":
	default:
		return fmt.Errorf("unknown projection method %q", config.Projection.Method)
	}

	if config.Embedding.Dimensions < 1 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", config.Embedding.Dimensions)
	}
	if config.Analysis.NeighborCount < 1 {
		return fmt.Errorf("neighbor count must be at least 1, got %d", config.Analysis.NeighborCount)
	}
	if config.Analysis.ClusterCount < 0 {
		return fmt.Errorf("cluster count must not be negative, got %d", config.Analysis.ClusterCount)
	}
	if config.Projection.NeighborhoodSize < 2 {
		return fmt.Errorf("neighborhood size must be at least 2, got %d", config.Projection.NeighborhoodSize)
	}
	if config.Projection.MinSeparation <= 0 {
		return fmt.Errorf("min separation must be positive, got %f", config.Projection.MinSeparation)
	}
	return nil
}
