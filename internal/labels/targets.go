// Package labels assigns human-facing captions ("Figure 1", "Table 2") to
// labelled document elements and letter or number labels to footnotes.
package labels

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matsen/jats/internal/doctree"
)

// Target is the label assigned to one labelled element.
type Target struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Label   string `json:"label"`
	Caption string `json:"caption,omitempty"`
}

// labelledTypes maps labelled node types to their label type names.
var labelledTypes = map[doctree.NodeType]string{
	doctree.FigureElement:   "figure",
	doctree.TableElement:    "table",
	doctree.EquationElement: "equation",
	doctree.ListingElement:  "listing",
	doctree.BoxElement:      "box",
	doctree.Embed:           "media",
	doctree.ImageElement:    "image",
}

// excludedParents hold elements that are never numbered.
var excludedParents = map[doctree.NodeType]bool{
	doctree.GraphicalAbstractSection: true,
}

// Targets holds the labels of one document, keyed by node id, in document
// order.
type Targets struct {
	byID  map[string]Target
	order []string
}

// Get returns the target for a node id.
func (t *Targets) Get(id string) (Target, bool) {
	target, ok := t.byID[id]
	return target, ok
}

// All returns the targets in document order.
func (t *Targets) All() []Target {
	out := make([]Target, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Len returns the number of targets.
func (t *Targets) Len() int {
	return len(t.order)
}

// Count returns how many targets of the given label type exist.
func (t *Targets) Count(labelType string) int {
	n := 0
	for _, target := range t.byID {
		if target.Type == labelType {
			n++
		}
	}
	return n
}

// BuildTargets numbers labelled elements per type in pre-order.
func BuildTargets(root *doctree.Node) *Targets {
	targets := &Targets{byID: make(map[string]Target)}
	counters := make(map[string]int)
	title := cases.Title(language.English)

	root.Descendants(func(n, parent *doctree.Node) bool {
		labelType, ok := labelledTypes[n.Type]
		if !ok {
			return true
		}
		if parent != nil && excludedParents[parent.Type] {
			return true
		}
		if n.Type == doctree.BoxElement {
			if first := n.FirstChild(); first == nil || first.Type != doctree.Figcaption {
				return true
			}
		}

		counters[labelType]++
		id := n.ID()
		if _, dup := targets.byID[id]; !dup {
			targets.order = append(targets.order, id)
		}
		targets.byID[id] = Target{
			Type:    labelType,
			ID:      id,
			Label:   title.String(labelType) + " " + strconv.Itoa(counters[labelType]),
			Caption: captionTitle(n),
		}
		return true
	})
	return targets
}

func captionTitle(n *doctree.Node) string {
	fc := n.ChildOfType(doctree.Figcaption)
	if fc == nil {
		return ""
	}
	if ct := fc.ChildOfType(doctree.CaptionTitle); ct != nil {
		return ct.TextContent()
	}
	return ""
}
