package election

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DecodeHistory parses an election-history document.
func DecodeHistory(data []byte) (*HistoryDocument, error) {
	var doc HistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling election history: %w", err)
	}
	return &doc, nil
}

// DecodeFilings parses a candidate/incumbent document.
func DecodeFilings(data []byte) (*FilingsDocument, error) {
	var doc FilingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling candidate filings: %w", err)
	}
	return &doc, nil
}

// LoadHistory reads an election-history document from disk.
func LoadHistory(path string) (*HistoryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading election history: %w", err)
	}
	return DecodeHistory(data)
}

// LoadFilings reads a candidate/incumbent document from disk.
func LoadFilings(path string) (*FilingsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate filings: %w", err)
	}
	return DecodeFilings(data)
}

// SaveHistory writes an election-history document to disk as indented JSON.
func SaveHistory(path string, doc *HistoryDocument) error {
	return WriteJSON(path, doc)
}

// WriteJSON marshals v with two-space indentation and writes it to path,
// creating parent directories as needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
