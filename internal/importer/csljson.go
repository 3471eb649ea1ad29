// Package importer provides functions to import bibliography items from
// external CSL-JSON exports.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/jats/internal/csl"
)

// ParseCSLJSON parses a CSL-JSON export: either an array of items (as written
// by Zotero, Paperpile and Mendeley) or a single item object. Entries that
// cannot be used are reported individually and skipped.
func ParseCSLJSON(data []byte) ([]csl.Item, []error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if data[0] == '{' {
		raw = []json.RawMessage{data}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []error{fmt.Errorf("parsing CSL-JSON: %w", err)}
	}

	var items []csl.Item
	var errs []error
	for i, entry := range raw {
		item, err := parseEntry(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, item.ID, err))
			continue
		}
		items = append(items, item)
	}
	return items, errs
}

func parseEntry(data json.RawMessage) (csl.Item, error) {
	var item csl.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return item, err
	}
	if item.ID == "" {
		return item, fmt.Errorf("missing required field 'id'")
	}
	if item.Type == "" && item.Literal == "" {
		return item, fmt.Errorf("missing required field 'type'")
	}
	item.DOI = normalizeDOI(item.DOI)
	return item, nil
}

// normalizeDOI strips resolver prefixes so DOIs compare equal across exports.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			return doi[len(prefix):]
		}
	}
	return doi
}

// Skip records an incoming item that was not added.
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Merge returns the incoming items that are new relative to existing, by id
// and by DOI. Duplicates within incoming are skipped after their first
// occurrence.
func Merge(existing, incoming []csl.Item) ([]csl.Item, []Skip) {
	ids := make(map[string]bool, len(existing)+len(incoming))
	dois := make(map[string]string, len(existing)+len(incoming))
	for _, item := range existing {
		ids[item.ID] = true
		if item.DOI != "" {
			dois[strings.ToLower(item.DOI)] = item.ID
		}
	}

	var added []csl.Item
	var skipped []Skip
	for _, item := range incoming {
		if ids[item.ID] {
			skipped = append(skipped, Skip{ID: item.ID, Reason: "duplicate id"})
			continue
		}
		doiKey := strings.ToLower(item.DOI)
		if owner, ok := dois[doiKey]; ok && doiKey != "" {
			skipped = append(skipped, Skip{ID: item.ID, Reason: "DOI already used by " + owner})
			continue
		}
		ids[item.ID] = true
		if doiKey != "" {
			dois[doiKey] = item.ID
		}
		added = append(added, item)
	}
	return added, skipped
}
