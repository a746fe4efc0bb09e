package huggingface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitsResponseParsing(t *testing.T) {
	jsonData := `{"splits":[{"dataset":"test/dataset","config":"default","split":"train"},{"dataset":"test/dataset","config":"default","split":"test"}]}`

	var parsedResponse SplitsResponse
	if unmarshalError := json.Unmarshal([]byte(jsonData), &parsedResponse); unmarshalError != nil {
		t.Fatalf("failed to unmarshal: %v", unmarshalError)
	}

	if len(parsedResponse.Splits) != 2 {
		t.Errorf("expected 2 splits, got %d", len(parsedResponse.Splits))
	}
	if parsedResponse.Splits[0].Config != "default" {
		t.Errorf("expected config 'default', got %s", parsedResponse.Splits[0].Config)
	}
}

func TestExtractColumnTexts(t *testing.T) {
	rows := []RowWrapper{
		{RowIdx: 0, Row: map[string]any{"text": "first", "label": 1}},
		{RowIdx: 1, Row: map[string]any{"text": "  second  ", "label": 0}},
		{RowIdx: 2, Row: map[string]any{"text": "   ", "label": 0}},
		{RowIdx: 3, Row: map[string]any{"other": "value"}},
		{RowIdx: 4, Row: map[string]any{"text": 42}},
	}

	texts := extractColumnTexts(rows, "text")

	if len(texts) != 2 {
		t.Fatalf("expected 2 texts, got %d: %v", len(texts), texts)
	}
	if texts[0] != "first" || texts[1] != "second" {
		t.Errorf("unexpected texts: %v", texts)
	}
}

func TestFetchTexts_PaginatesUntilExhausted(t *testing.T) {
	// Serve 150 rows so FetchTexts needs two pages.
	totalRows := 150
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		offset := 0
		fmt.Sscanf(request.URL.Query().Get("offset"), "%d", &offset)
		length := 0
		fmt.Sscanf(request.URL.Query().Get("length"), "%d", &length)

		var rows []RowWrapper
		for rowIndex := offset; rowIndex < offset+length && rowIndex < totalRows; rowIndex++ {
			rows = append(rows, RowWrapper{
				RowIdx: rowIndex,
				Row:    map[string]any{"text": fmt.Sprintf("row %d", rowIndex)},
			})
		}
		json.NewEncoder(responseWriter).Encode(RowsResponse{Rows: rows})
	}))
	defer testServer.Close()

	client := NewClientWithBaseURL(testServer.URL)
	texts, fetchError := client.FetchTexts("test/dataset", "default", "train", "text", 0)
	if fetchError != nil {
		t.Fatalf("FetchTexts returned error: %v", fetchError)
	}

	if len(texts) != totalRows {
		t.Errorf("expected %d texts, got %d", totalRows, len(texts))
	}
	if texts[0] != "row 0" || texts[len(texts)-1] != fmt.Sprintf("row %d", totalRows-1) {
		t.Errorf("unexpected first/last texts: %q / %q", texts[0], texts[len(texts)-1])
	}
}

func TestFetchTexts_RespectsMaxRows(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		offset := 0
		fmt.Sscanf(request.URL.Query().Get("offset"), "%d", &offset)
		length := 0
		fmt.Sscanf(request.URL.Query().Get("length"), "%d", &length)

		var rows []RowWrapper
		for rowIndex := offset; rowIndex < offset+length; rowIndex++ {
			rows = append(rows, RowWrapper{
				RowIdx: rowIndex,
				Row:    map[string]any{"text": fmt.Sprintf("row %d", rowIndex)},
			})
		}
		json.NewEncoder(responseWriter).Encode(RowsResponse{Rows: rows})
	}))
	defer testServer.Close()

	client := NewClientWithBaseURL(testServer.URL)
	texts, fetchError := client.FetchTexts("test/dataset", "default", "train", "text", 25)
	if fetchError != nil {
		t.Fatalf("FetchTexts returned error: %v", fetchError)
	}

	if len(texts) != 25 {
		t.Errorf("expected 25 texts, got %d", len(texts))
	}
}

func TestGetSplits_APIError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		http.Error(responseWriter, `{"error":"dataset not found"}`, http.StatusNotFound)
	}))
	defer testServer.Close()

	client := NewClientWithBaseURL(testServer.URL)
	if _, splitsError := client.GetSplits("missing/dataset"); splitsError == nil {
		t.Error("expected error for 404 response, got nil")
	}
}
