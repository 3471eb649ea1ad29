package storage

import (
	"fmt"

	"github.com/matsen/jats/internal/csl"
)

// Library is an in-memory bibliography keyed by item id. It serves as the
// citation processor's lookup callback.
type Library struct {
	items map[string]*csl.Item
	order []string
}

// NewLibrary indexes items by id. Later duplicates replace earlier ones.
func NewLibrary(items []csl.Item) *Library {
	lib := &Library{items: make(map[string]*csl.Item, len(items))}
	for i := range items {
		item := &items[i]
		if _, dup := lib.items[item.ID]; !dup {
			lib.order = append(lib.order, item.ID)
		}
		lib.items[item.ID] = item
	}
	return lib
}

// LoadLibrary reads a JSONL bibliography file.
func LoadLibrary(path string) (*Library, error) {
	items, err := ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("loading library: %w", err)
	}
	return NewLibrary(items), nil
}

// Lookup returns the item with the given id.
func (l *Library) Lookup(id string) (*csl.Item, bool) {
	item, ok := l.items[id]
	return item, ok
}

// Len returns the number of distinct items.
func (l *Library) Len() int {
	return len(l.order)
}

// IDs returns item ids in file order.
func (l *Library) IDs() []string {
	return append([]string(nil), l.order...)
}
