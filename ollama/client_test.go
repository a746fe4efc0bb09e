package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbed_SendsModelAndInput(t *testing.T) {
	var receivedRequest embeddingRequest
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/embed" {
			t.Errorf("request path = %q, want /api/embed", request.URL.Path)
		}
		if decodeError := json.NewDecoder(request.Body).Decode(&receivedRequest); decodeError != nil {
			t.Errorf("failed to decode request body: %v", decodeError)
		}
		json.NewEncoder(responseWriter).Encode(embeddingResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer testServer.Close()

	client := NewClient(testServer.URL, "nomic-embed-text")
	embeddingVector, embedError := client.Embed("hello")
	if embedError != nil {
		t.Fatalf("Embed returned error: %v", embedError)
	}

	if receivedRequest.Model != "nomic-embed-text" {
		t.Errorf("request model = %q, want nomic-embed-text", receivedRequest.Model)
	}
	if receivedRequest.Input != "hello" {
		t.Errorf("request input = %q, want hello", receivedRequest.Input)
	}
	if len(embeddingVector) != 3 {
		t.Errorf("embedding length = %d, want 3", len(embeddingVector))
	}
}

func TestEmbed_EmptyInputSkipsRequest(t *testing.T) {
	requestCount := 0
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		requestCount++
	}))
	defer testServer.Close()

	client := NewClient(testServer.URL, "nomic-embed-text")
	embeddingVector, embedError := client.Embed("")
	if embedError != nil {
		t.Fatalf("Embed returned error: %v", embedError)
	}
	if embeddingVector != nil {
		t.Errorf("expected nil vector for empty input, got %v", embeddingVector)
	}
	if requestCount != 0 {
		t.Errorf("expected no HTTP requests for empty input, got %d", requestCount)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		http.Error(responseWriter, "model not found", http.StatusNotFound)
	}))
	defer testServer.Close()

	client := NewClient(testServer.URL, "missing-model")
	if _, embedError := client.Embed("hello"); embedError == nil {
		t.Error("expected error for non-200 response, got nil")
	}
}

func TestEmbed_NoEmbeddingsReturned(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		json.NewEncoder(responseWriter).Encode(embeddingResponse{})
	}))
	defer testServer.Close()

	client := NewClient(testServer.URL, "nomic-embed-text")
	if _, embedError := client.Embed("hello"); embedError == nil {
		t.Error("expected error for empty embeddings array, got nil")
	}
}
