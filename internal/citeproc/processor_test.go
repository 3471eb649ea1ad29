package citeproc

import (
	"errors"
	"testing"

	"github.com/matsen/jats/internal/csl"
)

func year(y int) csl.Date {
	return csl.Date{DateParts: [][]int{{y}}}
}

func testItems() map[string]*csl.Item {
	items := []*csl.Item{
		{
			ID: "a", Type: csl.ArticleJournal,
			Author:         []csl.Name{{Family: "Smith", Given: "John Adam"}},
			Title:          "Gene flow",
			ContainerTitle: "Nature", Volume: "12", Issue: "3", Page: "100-110",
			Issued: year(2020), DOI: "10.1/a",
		},
		{
			ID: "b", Type: csl.Book,
			Author: []csl.Name{{Family: "Doe", Given: "Jane"}},
			Title:  "A book", Publisher: "Press", PublisherPlace: "Boston",
			Issued: year(2019),
		},
		{ID: "c", Literal: "Unstructured ref."},
		{
			ID: "x", Type: csl.ArticleJournal,
			Author: []csl.Name{{Family: "Zeta", Given: "Ann"}, {Family: "Roe", Given: "Bob"}},
			Title:  "Pairs", Issued: year(2021),
		},
		{
			ID: "y", Type: csl.Report,
			Author: []csl.Name{{Family: "First"}, {Family: "Second"}, {Family: "Third"}},
			Title:  "Crowds",
		},
	}
	m := make(map[string]*csl.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func lookupIn(items map[string]*csl.Item) LookupFunc {
	return func(id string) (*csl.Item, bool) {
		it, ok := items[id]
		return it, ok
	}
}

func newTestProcessor(t *testing.T, style string) *Processor {
	t.Helper()
	p, err := New(Options{Style: style, Locale: "en-US", Lookup: lookupIn(testItems())})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestCollapseRanges(t *testing.T) {
	tests := []struct {
		nums []int
		want string
	}{
		{[]int{1}, "1"},
		{[]int{1, 2}, "1,2"},
		{[]int{1, 2, 3, 5}, "1–3,5"},
		{[]int{1, 2, 3, 4, 6, 7}, "1–4,6,7"},
	}
	for _, tt := range tests {
		if got := collapseRanges(tt.nums); got != tt.want {
			t.Errorf("collapseRanges(%v) = %q, want %q", tt.nums, got, tt.want)
		}
	}
}

func TestVancouver_CiteNumbersInFirstCitedOrder(t *testing.T) {
	p := newTestProcessor(t, "vancouver")

	got, err := p.Cite([]Citation{
		{ID: "c1", ItemIDs: []string{"b"}},
		{ID: "c2", ItemIDs: []string{"a", "b"}},
		{ID: "c3", ItemIDs: []string{"a", "missing"}},
		{ID: "c4", ItemIDs: []string{"missing"}},
	})
	if err != nil {
		t.Fatalf("Cite() error = %v", err)
	}

	want := []Rendered{
		{ID: "c1", Text: "[1]"},
		{ID: "c2", Text: "[1,2]"},
		{ID: "c3", Text: "[2]"},
	}
	if len(got) != len(want) {
		t.Fatalf("Cite() returned %d clusters, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cluster %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestVancouver_Bibliography(t *testing.T) {
	p := newTestProcessor(t, "vancouver")

	if _, err := p.Cite([]Citation{{ID: "c1", ItemIDs: []string{"b", "a"}}}); err != nil {
		t.Fatalf("Cite() error = %v", err)
	}
	missing := p.Register("c", "zz")
	if len(missing) != 1 || missing[0] != "zz" {
		t.Errorf("Register() missing = %v, want [zz]", missing)
	}

	entries, err := p.Bibliography()
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}

	want := []struct{ id, text string }{
		{"b", "1. Doe J. A book. Boston: Press; 2019."},
		{"a", "2. Smith JA. Gene flow. Nature. 2020;12(3):100-110. doi:10.1/a."},
		{"c", "3. "},
	}
	if len(entries) != len(want) {
		t.Fatalf("Bibliography() returned %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].ID != w.id || entries[i].Text != w.text {
			t.Errorf("entry %d = (%s, %q), want (%s, %q)", i, entries[i].ID, entries[i].Text, w.id, w.text)
		}
	}
}

func TestAPA_Citation(t *testing.T) {
	p := newTestProcessor(t, "apa")

	got, err := p.Cite([]Citation{
		{ID: "c1", ItemIDs: []string{"x", "a"}},
		{ID: "c2", ItemIDs: []string{"y"}},
	})
	if err != nil {
		t.Fatalf("Cite() error = %v", err)
	}
	if got[0].Text != "(Smith, 2020; Zeta & Roe, 2021)" {
		t.Errorf("c1 = %q", got[0].Text)
	}
	if got[1].Text != "(First et al., n.d.)" {
		t.Errorf("c2 = %q", got[1].Text)
	}
}

func TestAPA_Entry(t *testing.T) {
	p := newTestProcessor(t, "apa")
	p.Register("a")

	entries, err := p.Bibliography()
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}
	want := "Smith, J. A. (2020). Gene flow. Nature, 12(3), 100-110. https://doi.org/10.1/a"
	if entries[0].Text != want {
		t.Errorf("entry = %q\nwant    %q", entries[0].Text, want)
	}
}

func TestAPA_CollatedSort(t *testing.T) {
	items := map[string]*csl.Item{
		"baker": {ID: "baker", Type: csl.Book, Author: []csl.Name{{Family: "Baker"}}, Title: "B"},
		"ang":   {ID: "ang", Type: csl.Book, Author: []csl.Name{{Family: "Ångström"}}, Title: "A"},
		"adams": {ID: "adams", Type: csl.Book, Author: []csl.Name{{Family: "adams"}}, Title: "C"},
	}
	p, err := New(Options{Style: "apa", Lookup: lookupIn(items)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.Register("baker", "ang", "adams")

	entries, err := p.Bibliography()
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}
	var order []string
	for _, e := range entries {
		order = append(order, e.ID)
	}
	want := []string{"adams", "ang", "baker"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	lookup := lookupIn(nil)

	if _, err := New(Options{Style: "chicago", Lookup: lookup}); !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("unknown style error = %v, want ErrUnknownStyle", err)
	}
	if _, err := New(Options{Format: "rtf", Lookup: lookup}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format error = %v, want ErrUnknownFormat", err)
	}
	if _, err := New(Options{Locale: "not a locale!!", Lookup: lookup}); err == nil {
		t.Error("New() should reject an invalid locale")
	}
	if _, err := New(Options{}); err == nil {
		t.Error("New() should require a lookup function")
	}
}

func TestRegistry_EnsureIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	build := func() *Format {
		calls++
		return &Format{}
	}

	first := reg.Ensure("custom", build)
	second := reg.Ensure("custom", build)
	if first != second {
		t.Error("Ensure() returned different formats for the same name")
	}
	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}
	if first.Name != "custom" {
		t.Errorf("Name = %q, want custom", first.Name)
	}
	if !reg.Has("text") || !reg.Has("html") {
		t.Error("built-in formats missing")
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		given, with, want string
	}{
		{"John Adam", "", "JA"},
		{"Jean-Paul", "", "JP"},
		{"john adam", ". ", "J. A."},
		{"J.A.", ". ", "J. A."},
	}
	for _, tt := range tests {
		if got := Initials(tt.given, tt.with); got != tt.want {
			t.Errorf("Initials(%q, %q) = %q, want %q", tt.given, tt.with, got, tt.want)
		}
	}
}

func TestHTMLFormat_Decorates(t *testing.T) {
	items := map[string]*csl.Item{
		"b": {ID: "b", Type: csl.Book, Author: []csl.Name{{Family: "Doe", Given: "Jane"}}, Title: "Tom & Jerry", Issued: year(2019)},
	}
	p, err := New(Options{Style: "apa", Format: "html", Lookup: lookupIn(items)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.Register("b")
	entries, _ := p.Bibliography()

	want := `<div class="csl-entry">Doe, J. (2019). <i>Tom &amp; Jerry</i>.</div>`
	if entries[0].Text != want {
		t.Errorf("entry = %q\nwant    %q", entries[0].Text, want)
	}
}
