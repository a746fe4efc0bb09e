// Package ollama provides an HTTP client for the Ollama embedding API.
// It is the default embedding provider: a local Ollama server keeps the
// whole museum self-hosted, with no tokens and no rate limits.
package ollama

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lirad/dl-vector-museum-of-words/embedding"
)

// Ensure Client satisfies the provider interface.
var _ embedding.Embedder = (*Client)(nil)

// Client handles HTTP communication with the Ollama embedding API.
// It maintains the connection configuration and reuses an HTTP client
// for efficient request handling.
type Client struct {
	baseURL    string       // The base URL of the Ollama server (e.g., "http://localhost:11434")
	modelName  string       // The name of the embedding model to use (e.g., "nomic-embed-text")
	httpClient *http.Client // Reusable HTTP client for making requests
}

// embeddingRequest is the JSON payload sent to the /api/embed endpoint.
type embeddingRequest struct {
	Model string `json:"model"` // The model identifier to use for embedding
	Input string `json:"input"` // The text content to be embedded
}

// embeddingResponse is the JSON response from the /api/embed endpoint.
// Embeddings come back as a slice of slices to support batch requests,
// though this client only ever sends one text at a time.
type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewClient creates a new Ollama client configured to connect to the
// specified server and use the given embedding model.
func NewClient(baseURL, modelName string) *Client {
	return &Client{
		baseURL:    baseURL,
		modelName:  modelName,
		httpClient: &http.Client{},
	}
}

// Embed converts the provided text into a vector embedding using the
// Ollama API. If the input text is empty, Embed returns nil without
// making an API request.
func (ollamaClient *Client) Embed(inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	requestPayload := embeddingRequest{
		Model: ollamaClient.modelName,
		Input: inputText,
	}

	jsonRequestBody, marshalError := json.Marshal(requestPayload)
	if marshalError != nil {
		return nil, fmt.Errorf("marshal request: %w", marshalError)
	}

	embeddingEndpointURL := ollamaClient.baseURL + "/api/embed"
	httpResponse, postError := ollamaClient.httpClient.Post(
		embeddingEndpointURL,
		"application/json",
		bytes.NewReader(jsonRequestBody),
	)
	if postError != nil {
		return nil, fmt.Errorf("post request: %w", postError)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", httpResponse.StatusCode)
	}

	var parsedResponse embeddingResponse
	responseDecoder := json.NewDecoder(httpResponse.Body)
	if decodeError := responseDecoder.Decode(&parsedResponse); decodeError != nil {
		return nil, fmt.Errorf("decode response: %w", decodeError)
	}

	if len(parsedResponse.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return parsedResponse.Embeddings[0], nil
}
