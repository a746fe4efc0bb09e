// Package huggingface talks to two Hugging Face services: the Dataset
// Viewer API for pulling text columns out of public datasets, and the
// Inference API for generating embeddings when no local Ollama server
// is available.
package huggingface

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultDatasetViewerURL = "https://datasets-server.huggingface.co"

// datasetPageSize is the Dataset Viewer API's maximum rows per request.
const datasetPageSize = 100

// Client fetches dataset rows from the Hugging Face Dataset Viewer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against the public Dataset Viewer API.
func NewClient() *Client {
	return &Client{
		baseURL:    defaultDatasetViewerURL,
		httpClient: &http.Client{},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// SplitsResponse is the response from the /splits endpoint.
type SplitsResponse struct {
	Splits []Split `json:"splits"`
}

// Split identifies one split of a dataset.
type Split struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// RowsResponse is the response from the /rows endpoint.
type RowsResponse struct {
	Rows []RowWrapper `json:"rows"`
}

// RowWrapper wraps an individual dataset row with its index.
type RowWrapper struct {
	RowIdx int            `json:"row_idx"`
	Row    map[string]any `json:"row"`
}

// GetSplits fetches the available splits for a dataset.
func (client *Client) GetSplits(dataset string) (*SplitsResponse, error) {
	requestURL := fmt.Sprintf("%s/splits?dataset=%s", client.baseURL, url.QueryEscape(dataset))

	var result SplitsResponse
	if requestError := client.getJSON(requestURL, &result); requestError != nil {
		return nil, requestError
	}
	return &result, nil
}

// GetRows fetches a window of rows from a dataset split.
func (client *Client) GetRows(dataset, config, split string, offset, length int) (*RowsResponse, error) {
	requestURL := fmt.Sprintf("%s/rows?dataset=%s&config=%s&split=%s&offset=%s&length=%s",
		client.baseURL,
		url.QueryEscape(dataset),
		url.QueryEscape(config),
		url.QueryEscape(split),
		strconv.Itoa(offset),
		strconv.Itoa(length),
	)

	var result RowsResponse
	if requestError := client.getJSON(requestURL, &result); requestError != nil {
		return nil, requestError
	}
	return &result, nil
}

// getJSON performs a GET request and decodes the JSON body into target.
func (client *Client) getJSON(requestURL string, target any) error {
	httpResponse, getError := client.httpClient.Get(requestURL)
	if getError != nil {
		return fmt.Errorf("request failed: %w", getError)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(httpResponse.Body)
		return fmt.Errorf("API error %d: %s", httpResponse.StatusCode, string(responseBody))
	}

	if decodeError := json.NewDecoder(httpResponse.Body).Decode(target); decodeError != nil {
		return fmt.Errorf("decode response: %w", decodeError)
	}
	return nil
}

// FetchTexts pulls the non-empty values of one text column from a
// dataset split, paginating until maxRows texts are collected or the
// split runs out. A maxRows of 0 means no limit.
func (client *Client) FetchTexts(dataset, config, split, column string, maxRows int) ([]string, error) {
	var texts []string
	offset := 0

	for {
		if maxRows > 0 && offset >= maxRows {
			break
		}

		remaining := datasetPageSize
		if maxRows > 0 && offset+datasetPageSize > maxRows {
			remaining = maxRows - offset
		}

		rowsResponse, rowsError := client.GetRows(dataset, config, split, offset, remaining)
		if rowsError != nil {
			return nil, rowsError
		}
		if len(rowsResponse.Rows) == 0 {
			break
		}

		texts = append(texts, extractColumnTexts(rowsResponse.Rows, column)...)
		offset += len(rowsResponse.Rows)

		if len(rowsResponse.Rows) < remaining {
			break
		}
	}

	return texts, nil
}

// extractColumnTexts pulls the trimmed string values of one column,
// skipping rows where the column is missing, non-string or blank.
func extractColumnTexts(rows []RowWrapper, column string) []string {
	var texts []string
	for _, wrapper := range rows {
		columnValue, present := wrapper.Row[column]
		if !present {
			continue
		}
		textValue, isString := columnValue.(string)
		if !isString {
			continue
		}
		trimmedText := strings.TrimSpace(textValue)
		if trimmedText != "" {
			texts = append(texts, trimmedText)
		}
	}
	return texts
}
