// Package storage persists the bibliography library: CSL items in a JSONL
// file as the source of truth, with a rebuildable SQLite query cache.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/jats/internal/csl"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all items from a JSONL file.
func ReadAll(path string) ([]csl.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty library
		}
		return nil, fmt.Errorf("opening bibliography file: %w", err)
	}
	defer f.Close()

	var items []csl.Item
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item csl.Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if item.ID == "" {
			return nil, fmt.Errorf("line %d: item has no id", lineNum)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bibliography file: %w", err)
	}

	return items, nil
}

// Append adds an item to the end of a JSONL file.
func Append(path string, item csl.Item) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening bibliography file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", item.ID, err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing item %s: %w", item.ID, err)
	}
	return nil
}

// WriteAll writes all items to a JSONL file, replacing existing content.
func WriteAll(path string, items []csl.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bibliography file: %w", err)
	}
	defer f.Close()

	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing item %d: %w", i, err)
		}
	}

	return nil
}

// FindByID searches for an item by ID.
func FindByID(items []csl.Item, id string) (int, bool) {
	for i, item := range items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByDOI searches for an item by DOI.
func FindByDOI(items []csl.Item, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, item := range items {
		if item.DOI == doi {
			return i, true
		}
	}
	return -1, false
}
