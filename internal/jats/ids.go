package jats

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// IDGenerator returns the new id for an element with the given lowercased
// tag. An empty result removes the element's id.
type IDGenerator func(tag string) string

// SequentialIDs numbers ids per tag: "fig-1", "fig-2", "sec-1".
func SequentialIDs() IDGenerator {
	counters := make(map[string]int)
	return func(tag string) string {
		counters[tag]++
		return tag + "-" + strconv.Itoa(counters[tag])
	}
}

// UUIDIDs generates random ids prefixed by the tag.
func UUIDIDs() IDGenerator {
	return func(tag string) string {
		return tag + "-" + uuid.NewString()
	}
}

// rewriteIDs replaces every id below root with a generated one and rewrites
// rid references to match. Unresolvable rid tokens are dropped, as is an
// rid left empty.
func rewriteIDs(root *etree.Element, gen IDGenerator) {
	mapping := make(map[string]string)

	walk(root, func(el *etree.Element) {
		a := el.SelectAttr("id")
		if a == nil {
			return
		}
		old := a.Value
		// Local name only: generated ids must be NCNames, so mml:math counts as math.
		next := gen(strings.ToLower(el.Tag))
		if next == "" {
			el.RemoveAttr("id")
			return
		}
		a.Value = next
		if _, seen := mapping[old]; !seen {
			mapping[old] = next
		}
	})

	walk(root, func(el *etree.Element) {
		a := el.SelectAttr("rid")
		if a == nil {
			return
		}
		var resolved []string
		for _, token := range strings.Fields(a.Value) {
			if id, ok := mapping[token]; ok {
				resolved = append(resolved, id)
			}
		}
		if len(resolved) == 0 {
			el.RemoveAttr("rid")
			return
		}
		a.Value = strings.Join(resolved, " ")
	})
}
