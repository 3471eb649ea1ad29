package doctree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Parse decodes a JSON document tree and checks every node and mark type
// against the vocabulary.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Read decodes a document tree from r.
func Read(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data)
}

// Load reads a document tree from a JSON file.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data)
}

var knownMarks = map[MarkType]bool{
	Bold: true, Italic: true, SmallCaps: true, Strikethrough: true, Styled: true,
	Subscript: true, Superscript: true, Underline: true, Code: true,
	TrackedInsert: true, TrackedDelete: true,
}

// Validate checks that the root is a manuscript and that every node and
// mark type is known.
func Validate(root *Node) error {
	if root.Type != Manuscript {
		return fmt.Errorf("root node must be %q, got %q", Manuscript, root.Type)
	}
	var err error
	root.Descendants(func(n, parent *Node) bool {
		if err != nil {
			return false
		}
		if !Known(n.Type) {
			err = fmt.Errorf("unknown node type %q under %q", n.Type, parent.Type)
			return false
		}
		for _, m := range n.Marks {
			if !knownMarks[m.Type] {
				err = fmt.Errorf("unknown mark type %q on %q", m.Type, n.Type)
				return false
			}
		}
		return true
	})
	return err
}
