package doctree

import (
	"strings"
	"testing"
)

const sampleDoc = `{
  "type": "manuscript",
  "attrs": {"id": "MPManuscript:1"},
  "content": [
    {"type": "title", "content": [{"type": "text", "text": "A title"}]},
    {"type": "body", "content": [
      {"type": "section", "attrs": {"id": "MPSection:1", "category": "introduction"}, "content": [
        {"type": "section_title", "content": [{"type": "text", "text": "Intro"}]},
        {"type": "paragraph", "attrs": {"id": "p1"}, "content": [
          {"type": "text", "text": "Hello "},
          {"type": "text", "text": "world", "marks": [{"type": "bold"}]}
        ]}
      ]}
    ]}
  ]
}`

func TestParse(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if root.ID() != "MPManuscript:1" {
		t.Errorf("ID() = %q, want MPManuscript:1", root.ID())
	}

	sections := root.FindAll(Section)
	if len(sections) != 1 {
		t.Fatalf("FindAll(Section) returned %d nodes, want 1", len(sections))
	}
	if got := sections[0].Attrs.String("category"); got != "introduction" {
		t.Errorf("category = %q, want introduction", got)
	}

	p := root.FindFirst(Paragraph)
	if p == nil {
		t.Fatal("FindFirst(Paragraph) = nil")
	}
	if got := p.TextContent(); got != "Hello world" {
		t.Errorf("TextContent() = %q, want %q", got, "Hello world")
	}
	if p.Content[1].Marks[0].Type != Bold {
		t.Errorf("mark = %q, want bold", p.Content[1].Marks[0].Type)
	}
}

func TestParse_UnknownType(t *testing.T) {
	doc := `{"type": "manuscript", "content": [{"type": "widget"}]}`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("Parse() should fail on unknown node type")
	}
	if !strings.Contains(err.Error(), "widget") {
		t.Errorf("error should name the type, got %v", err)
	}
}

func TestParse_WrongRoot(t *testing.T) {
	if _, err := Parse([]byte(`{"type": "paragraph"}`)); err == nil {
		t.Error("Parse() should reject a non-manuscript root")
	}
}

func TestDescendants_PreOrderWithParent(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var order []string
	root.Descendants(func(n, parent *Node) bool {
		if n.Type == Paragraph && parent.Type != Section {
			t.Errorf("paragraph parent = %q, want section", parent.Type)
		}
		order = append(order, string(n.Type))
		return n.Type != Paragraph
	})

	want := "title,text,body,section,section_title,text,paragraph"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestAttrs(t *testing.T) {
	a := Attrs{
		"s":     "x",
		"n":     float64(3),
		"ns":    "42",
		"b":     true,
		"list":  []any{"a", "b", 1},
		"obj":   map[string]any{"family": "Smith"},
		"objs":  []any{map[string]any{"vocabTerm": "Software"}},
		"nil":   nil,
		"float": 2.5,
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"String", a.String("s"), "x"},
		{"String from number", a.String("n"), "3"},
		{"String float", a.String("float"), "2.5"},
		{"Int", a.Int("n"), 3},
		{"Int from string", a.Int("ns"), 42},
		{"Bool", a.Bool("b"), true},
		{"Has nil", a.Has("nil"), false},
		{"Has", a.Has("s"), true},
		{"Strings", strings.Join(a.Strings("list"), ","), "a,b"},
		{"Map", a.Map("obj").String("family"), "Smith"},
		{"Maps", a.Maps("objs")[0].String("vocabTerm"), "Software"},
		{"missing", a.String("missing"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}
