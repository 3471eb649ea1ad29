package jats

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	xlinkNS = "http://www.w3.org/1999/xlink"
	mathNS  = "http://www.w3.org/1998/Math/MathML"
)

// newElement creates a detached element with attributes given as key/value
// pairs. Empty values are skipped.
func newElement(tag string, attrs ...string) *etree.Element {
	el := etree.NewElement(tag)
	setAttrs(el, attrs...)
	return el
}

// child creates a sub-element of parent.
func child(parent *etree.Element, tag string, attrs ...string) *etree.Element {
	el := parent.CreateElement(tag)
	setAttrs(el, attrs...)
	return el
}

// textChild creates a sub-element holding text, unless text is empty.
func textChild(parent *etree.Element, tag, text string, attrs ...string) *etree.Element {
	if text == "" {
		return nil
	}
	el := child(parent, tag, attrs...)
	el.SetText(text)
	return el
}

func setAttrs(el *etree.Element, attrs ...string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] != "" {
			el.CreateAttr(attrs[i], attrs[i+1])
		}
	}
}

// setID sets an id attribute from a document node id.
func setID(el *etree.Element, id string) {
	if id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
}

// normalizeID makes a document id usable as an XML id.
func normalizeID(id string) string {
	return strings.ReplaceAll(id, ":", "_")
}

func normalizeRIDs(ids []string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, normalizeID(id))
		}
	}
	return strings.Join(out, " ")
}

func attr(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

// walk visits el and its descendant elements in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// findAll returns descendant elements of el matching pred, in document order.
func findAll(el *etree.Element, pred func(*etree.Element) bool) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		walk(c, func(d *etree.Element) {
			if pred(d) {
				out = append(out, d)
			}
		})
	}
	return out
}

// findSecs returns sec elements below el with the given sec-type.
func findSecs(el *etree.Element, secType string) []*etree.Element {
	return findAll(el, func(d *etree.Element) bool {
		return d.Tag == "sec" && attr(d, "sec-type") == secType
	})
}

func tagIs(tags ...string) func(*etree.Element) bool {
	return func(el *etree.Element) bool {
		for _, t := range tags {
			if el.Tag == t {
				return true
			}
		}
		return false
	}
}

// detach removes t from its parent, if any.
func detach(t etree.Token) {
	if p := t.Parent(); p != nil {
		p.RemoveChild(t)
	}
}

// insertBefore inserts el before the first child of parent whose tag is one
// of tags, or appends it when there is none.
func insertBefore(parent, el *etree.Element, tags ...string) {
	detach(el)
	if ref := firstChild(parent, tags...); ref != nil {
		parent.InsertChildAt(ref.Index(), el)
		return
	}
	parent.AddChild(el)
}

// insertAfter inserts el directly after anchor.
func insertAfter(anchor, el *etree.Element) {
	detach(el)
	parent := anchor.Parent()
	parent.InsertChildAt(anchor.Index()+1, el)
}

func firstChild(parent *etree.Element, tags ...string) *etree.Element {
	match := tagIs(tags...)
	for _, c := range parent.ChildElements() {
		if match(c) {
			return c
		}
	}
	return nil
}

func lastChild(parent *etree.Element, tags ...string) *etree.Element {
	match := tagIs(tags...)
	var last *etree.Element
	for _, c := range parent.ChildElements() {
		if match(c) {
			last = c
		}
	}
	return last
}

// moveChildren re-parents all child tokens of from onto to.
func moveChildren(from, to *etree.Element) {
	for _, t := range append([]etree.Token(nil), from.Child...) {
		to.AddChild(t)
	}
}

// textContent concatenates all character data below el.
func textContent(el *etree.Element) string {
	var b strings.Builder
	for _, t := range el.Child {
		switch v := t.(type) {
		case *etree.CharData:
			b.WriteString(v.Data)
		case *etree.Element:
			b.WriteString(textContent(v))
		}
	}
	return b.String()
}

// isEmpty reports whether el has no element children besides those named in
// ignore and no non-whitespace text.
func isEmpty(el *etree.Element, ignore ...string) bool {
	skip := tagIs(ignore...)
	for _, t := range el.Child {
		switch v := t.(type) {
		case *etree.Element:
			if !skip(v) {
				return false
			}
		case *etree.CharData:
			if strings.TrimSpace(v.Data) != "" {
				return false
			}
		}
	}
	return true
}

// parseFragment parses an XML fragment that may contain several top-level
// nodes and returns them detached.
func parseFragment(s string) ([]etree.Token, error) {
	doc := etree.NewDocument()
	src := `<fragment xmlns:xlink="` + xlinkNS + `" xmlns:mml="` + mathNS + `">` + s + `</fragment>`
	if err := doc.ReadFromString(src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}
	root := doc.Root()
	tokens := append([]etree.Token(nil), root.Child...)
	for _, t := range tokens {
		root.RemoveChild(t)
	}
	return tokens, nil
}

// appendTokens appends tokens to parent.
func appendTokens(parent *etree.Element, tokens []etree.Token) {
	for _, t := range tokens {
		parent.AddChild(t)
	}
}
