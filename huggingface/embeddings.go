package huggingface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/lirad/dl-vector-museum-of-words/embedding"
)

const defaultInferenceAPIURL = "https://api-inference.huggingface.co"

// Ensure EmbeddingsClient satisfies the provider interface.
var _ embedding.Embedder = (*EmbeddingsClient)(nil)

// EmbeddingsClient generates text embeddings through the Hugging Face
// Inference API. It is the fallback provider for machines without a
// local Ollama server.
type EmbeddingsClient struct {
	baseURL    string
	modelID    string
	token      string
	httpClient *http.Client
}

// embeddingsRequest is the JSON payload sent to the Inference API.
// wait_for_model keeps the request open while a cold model spins up
// instead of failing immediately.
type embeddingsRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// NewEmbeddingsClient creates a client for the given model. An empty
// token falls back to the HF_TOKEN environment variable; requests
// without any token still work for public models at reduced rate
// limits.
func NewEmbeddingsClient(modelID, token string) *EmbeddingsClient {
	if token == "" {
		token = os.Getenv("HF_TOKEN")
	}
	return &EmbeddingsClient{
		baseURL:    defaultInferenceAPIURL,
		modelID:    modelID,
		token:      token,
		httpClient: &http.Client{},
	}
}

// Embed converts the provided text into a vector embedding using the
// Inference API's feature-extraction pipeline. Empty input returns nil
// without making a request.
func (embeddingsClient *EmbeddingsClient) Embed(inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	requestPayload := embeddingsRequest{
		Inputs:  inputText,
		Options: map[string]bool{"wait_for_model": true},
	}

	jsonRequestBody, marshalError := json.Marshal(requestPayload)
	if marshalError != nil {
		return nil, fmt.Errorf("marshal request: %w", marshalError)
	}

	endpointURL := fmt.Sprintf("%s/pipeline/feature-extraction/%s", embeddingsClient.baseURL, embeddingsClient.modelID)
	httpRequest, requestError := http.NewRequest(http.MethodPost, endpointURL, bytes.NewReader(jsonRequestBody))
	if requestError != nil {
		return nil, fmt.Errorf("create request: %w", requestError)
	}

	httpRequest.Header.Set("Content-Type", "application/json")
	if embeddingsClient.token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+embeddingsClient.token)
	}

	httpResponse, postError := embeddingsClient.httpClient.Do(httpRequest)
	if postError != nil {
		return nil, fmt.Errorf("post request: %w", postError)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		var errorBody map[string]any
		json.NewDecoder(httpResponse.Body).Decode(&errorBody)
		return nil, fmt.Errorf("API error %d: %v", httpResponse.StatusCode, errorBody)
	}

	// Single-input feature extraction returns a nested array with one
	// embedding: [[...]].
	var parsedResponse [][]float32
	if decodeError := json.NewDecoder(httpResponse.Body).Decode(&parsedResponse); decodeError != nil {
		return nil, fmt.Errorf("decode response: %w", decodeError)
	}

	if len(parsedResponse) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return parsedResponse[0], nil
}
