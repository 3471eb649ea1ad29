package csl

import (
	"encoding/json"
	"testing"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
		month int
		day   int
		iso   string
	}{
		{"numbers", `{"date-parts": [[2020, 3, 5]]}`, 2020, 3, 5, "2020-03-05"},
		{"strings", `{"date-parts": [["2019", "11"]]}`, 2019, 11, 0, "2019-11"},
		{"year only", `{"date-parts": [[2001]]}`, 2001, 0, 0, "2001"},
		{"literal", `{"literal": "Spring 2020"}`, 0, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if d.Year() != tt.year || d.Month() != tt.month || d.Day() != tt.day {
				t.Errorf("parts = %d-%d-%d, want %d-%d-%d", d.Year(), d.Month(), d.Day(), tt.year, tt.month, tt.day)
			}
			if got := d.ISO8601(); got != tt.iso {
				t.Errorf("ISO8601() = %q, want %q", got, tt.iso)
			}
		})
	}
}

func TestDate_UnmarshalJSON_Invalid(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`{"date-parts": [["spring"]]}`), &d); err == nil {
		t.Error("Unmarshal() should reject non-numeric date parts")
	}
}

func TestItem_Decode(t *testing.T) {
	data := `{"id": "ref-1", "type": "article-journal", "author": [{"family": "Smith", "given": "John"}],
		"issued": {"date-parts": [[2020]]}, "container-title": "Nature", "DOI": "10.1/x", "page": "1-10"}`

	var item Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if item.Type != ArticleJournal {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if item.Author[0].Family != "Smith" || item.Issued.Year() != 2020 {
		t.Errorf("unexpected decode: %+v", item)
	}
	if item.ContainerTitle != "Nature" || item.DOI != "10.1/x" {
		t.Errorf("unexpected decode: %+v", item)
	}
}
