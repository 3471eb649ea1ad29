package labels

import (
	"strconv"

	"github.com/matsen/jats/internal/doctree"
)

// AlphaLabel returns the bijective base-26 letter label for a zero-based
// index: 0 → "a", 25 → "z", 26 → "aa", 701 → "zz", 702 → "aaa".
func AlphaLabel(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('a'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// FootnoteLabels labels the footnotes of every footnotes element. Numbering
// restarts in each container: numeric inside table footers, alphabetic
// elsewhere.
func FootnoteLabels(root *doctree.Node) map[string]string {
	out := make(map[string]string)
	root.Descendants(func(n, parent *doctree.Node) bool {
		if n.Type != doctree.FootnotesElement {
			return true
		}
		numeric := parent != nil && parent.Type == doctree.TableElementFooter
		for i, fn := range n.ChildrenOfType(doctree.Footnote) {
			if numeric {
				out[fn.ID()] = strconv.Itoa(i + 1)
			} else {
				out[fn.ID()] = AlphaLabel(i)
			}
		}
		return true
	})
	return out
}
