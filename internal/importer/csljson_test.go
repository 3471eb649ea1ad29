package importer

import (
	"testing"

	"github.com/matsen/jats/internal/csl"
)

func TestParseCSLJSON_Array(t *testing.T) {
	data := []byte(`[
		{
			"id": "Smith2026-ab",
			"type": "article-journal",
			"title": "A Test Paper",
			"container-title": "Nature",
			"author": [{"family": "Smith", "given": "John"}],
			"issued": {"date-parts": [[2026, "1", 15]]},
			"DOI": "https://doi.org/10.1234/test"
		},
		{"id": "lit", "literal": "An unstructured reference."}
	]`)

	items, errs := ParseCSLJSON(data)
	if len(errs) > 0 {
		t.Fatalf("ParseCSLJSON() errors = %v", errs)
	}
	if len(items) != 2 {
		t.Fatalf("ParseCSLJSON() returned %d items, want 2", len(items))
	}

	item := items[0]
	if item.Type != csl.ArticleJournal {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if item.DOI != "10.1234/test" {
		t.Errorf("DOI = %q, want resolver prefix stripped", item.DOI)
	}
	if item.Issued.Year() != 2026 || item.Issued.Month() != 1 || item.Issued.Day() != 15 {
		t.Errorf("Issued = %v", item.Issued.DateParts)
	}
	if items[1].Literal != "An unstructured reference." {
		t.Errorf("Literal = %q", items[1].Literal)
	}
}

func TestParseCSLJSON_SingleObject(t *testing.T) {
	items, errs := ParseCSLJSON([]byte(`  {"id": "one", "type": "book", "title": "Only"}  `))
	if len(errs) > 0 {
		t.Fatalf("ParseCSLJSON() errors = %v", errs)
	}
	if len(items) != 1 || items[0].ID != "one" {
		t.Errorf("ParseCSLJSON() = %+v", items)
	}
}

func TestParseCSLJSON_EntryErrors(t *testing.T) {
	data := []byte(`[
		{"type": "book", "title": "No id"},
		{"id": "notype", "title": "No type"},
		{"id": "ok", "type": "book", "title": "Fine"}
	]`)

	items, errs := ParseCSLJSON(data)
	if len(errs) != 2 {
		t.Errorf("ParseCSLJSON() returned %d errors, want 2: %v", len(errs), errs)
	}
	if len(items) != 1 || items[0].ID != "ok" {
		t.Errorf("ParseCSLJSON() items = %+v, want only ok", items)
	}
}

func TestParseCSLJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `[{"id": "a"`},
		{"not an array or object", `"just a string"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, errs := ParseCSLJSON([]byte(tt.input))
			if len(errs) != 1 || items != nil {
				t.Errorf("ParseCSLJSON() = %v, %v; want one error", items, errs)
			}
		})
	}
}

func TestParseCSLJSON_Empty(t *testing.T) {
	items, errs := ParseCSLJSON([]byte("  \n"))
	if items != nil || errs != nil {
		t.Errorf("ParseCSLJSON(empty) = %v, %v", items, errs)
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.1234/x", "10.1234/x"},
		{" 10.1234/x ", "10.1234/x"},
		{"https://doi.org/10.1234/x", "10.1234/x"},
		{"HTTPS://DX.DOI.ORG/10.1234/x", "10.1234/x"},
		{"doi:10.1234/x", "10.1234/x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeDOI(tt.in); got != tt.want {
			t.Errorf("normalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	existing := []csl.Item{
		{ID: "a", DOI: "10.1/A"},
		{ID: "b"},
	}
	incoming := []csl.Item{
		{ID: "a", Title: "same id"},
		{ID: "c", DOI: "10.1/a"},
		{ID: "d", DOI: "10.1/d"},
		{ID: "d", Title: "repeated in batch"},
		{ID: "e", DOI: "10.1/d"},
		{ID: "f"},
	}

	added, skipped := Merge(existing, incoming)

	var addedIDs []string
	for _, item := range added {
		addedIDs = append(addedIDs, item.ID)
	}
	if len(addedIDs) != 2 || addedIDs[0] != "d" || addedIDs[1] != "f" {
		t.Errorf("added = %v, want [d f]", addedIDs)
	}

	want := []Skip{
		{ID: "a", Reason: "duplicate id"},
		{ID: "c", Reason: "DOI already used by a"},
		{ID: "d", Reason: "duplicate id"},
		{ID: "e", Reason: "DOI already used by d"},
	}
	if len(skipped) != len(want) {
		t.Fatalf("skipped = %+v, want %+v", skipped, want)
	}
	for i := range want {
		if skipped[i] != want[i] {
			t.Errorf("skipped[%d] = %+v, want %+v", i, skipped[i], want[i])
		}
	}
}
