// Package dataimport loads texts to embed from local dataset files.
// Supported formats: CSV with a "text" column, JSON arrays of strings
// or objects with a "text" field, and plain text with one entry per
// line. JSON objects may also carry precomputed vectors.
package dataimport

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TextWithVector pairs a text with a precomputed embedding vector.
type TextWithVector struct {
	Text   string
	Vector []float32
}

type jsonTextObject struct {
	Text   string    `json:"text"`
	Vector []float32 `json:"vector,omitempty"`
}

// LoadTexts reads all texts from a dataset file, dispatching on the
// file extension. Texts are trimmed and deduplicated; order of first
// appearance is preserved.
func LoadTexts(path string) ([]string, error) {
	extension := strings.ToLower(filepath.Ext(path))

	var texts []string
	var loadError error
	switch extension {
	case ".csv":
		texts, loadError = loadCSV(path)
	case ".json":
		texts, loadError = loadJSON(path)
	case ".txt":
		texts, loadError = loadLines(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", extension)
	}
	if loadError != nil {
		return nil, loadError
	}

	return dedupeTexts(texts), nil
}

// LoadWithVectors reads text/vector pairs from a JSON file. Every entry
// must carry both fields; partial entries are an error rather than a
// silent skip, since a missing vector usually means the export step
// went wrong.
func LoadWithVectors(path string) ([]TextWithVector, error) {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return nil, fmt.Errorf("vectors can only be loaded from JSON files")
	}

	fileContents, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf("reading file: %w", readError)
	}

	var objects []jsonTextObject
	if unmarshalError := json.Unmarshal(fileContents, &objects); unmarshalError != nil {
		return nil, fmt.Errorf("parsing JSON: %w", unmarshalError)
	}

	results := make([]TextWithVector, 0, len(objects))
	for entryIndex, object := range objects {
		if strings.TrimSpace(object.Text) == "" {
			return nil, fmt.Errorf("entry %d missing text field", entryIndex)
		}
		if len(object.Vector) == 0 {
			return nil, fmt.Errorf("entry %d missing vector field", entryIndex)
		}
		results = append(results, TextWithVector{
			Text:   strings.TrimSpace(object.Text),
			Vector: object.Vector,
		})
	}

	return results, nil
}

func loadCSV(path string) ([]string, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return nil, fmt.Errorf("opening CSV file: %w", openError)
	}
	defer file.Close()

	records, readError := csv.NewReader(file).ReadAll()
	if readError != nil {
		return nil, fmt.Errorf("reading CSV: %w", readError)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	textColumn := -1
	for columnIndex, header := range records[0] {
		if strings.EqualFold(strings.TrimSpace(header), "text") {
			textColumn = columnIndex
			break
		}
	}
	if textColumn == -1 {
		return nil, fmt.Errorf("CSV missing 'text' column header")
	}

	texts := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if textColumn < len(row) && strings.TrimSpace(row[textColumn]) != "" {
			texts = append(texts, strings.TrimSpace(row[textColumn]))
		}
	}
	return texts, nil
}

func loadJSON(path string) ([]string, error) {
	fileContents, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf("reading JSON file: %w", readError)
	}

	// A JSON dataset is either a plain array of strings or an array of
	// objects carrying a "text" field. Try the simple shape first.
	var stringArray []string
	if json.Unmarshal(fileContents, &stringArray) == nil {
		return trimTexts(stringArray), nil
	}

	var objectArray []jsonTextObject
	if unmarshalError := json.Unmarshal(fileContents, &objectArray); unmarshalError != nil {
		return nil, fmt.Errorf("parsing JSON: expected array of strings or objects with 'text' field: %w", unmarshalError)
	}

	texts := make([]string, 0, len(objectArray))
	for entryIndex, object := range objectArray {
		if strings.TrimSpace(object.Text) == "" {
			return nil, fmt.Errorf("entry %d missing text field", entryIndex)
		}
		texts = append(texts, strings.TrimSpace(object.Text))
	}
	return texts, nil
}

func loadLines(path string) ([]string, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return nil, fmt.Errorf("opening text file: %w", openError)
	}
	defer file.Close()

	var texts []string
	lineScanner := bufio.NewScanner(file)
	for lineScanner.Scan() {
		line := strings.TrimSpace(lineScanner.Text())
		if line != "" {
			texts = append(texts, line)
		}
	}
	if scanError := lineScanner.Err(); scanError != nil {
		return nil, fmt.Errorf("reading text file: %w", scanError)
	}
	return texts, nil
}

func trimTexts(texts []string) []string {
	trimmed := make([]string, 0, len(texts))
	for _, text := range texts {
		if cleanText := strings.TrimSpace(text); cleanText != "" {
			trimmed = append(trimmed, cleanText)
		}
	}
	return trimmed
}

func dedupeTexts(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	deduped := make([]string, 0, len(texts))
	for _, text := range texts {
		if !seen[text] {
			seen[text] = true
			deduped = append(deduped, text)
		}
	}
	return deduped
}
