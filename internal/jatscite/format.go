// Package jatscite makes the citation processor emit JATS XML fragments.
//
// It registers a "jats" output format whose decorations, name renderer and
// variable wrapper produce JATS inline elements, and whose bibliography
// entries are complete <ref> elements.
package jatscite

import (
	"strings"

	"github.com/matsen/jats/internal/citeproc"
)

// FormatName is the registry name of the JATS output format.
const FormatName = "jats"

// TypePlaceholder is substituted with the publication type once the item
// being rendered is known.
const TypePlaceholder = "%%TYPE%%"

// Init registers the JATS format on reg. It is safe to call repeatedly and
// from multiple goroutines.
func Init(reg *citeproc.Registry) *citeproc.Format {
	return reg.Ensure(FormatName, NewFormat)
}

// NewFormat builds the JATS output format.
func NewFormat() *citeproc.Format {
	tpl := func(tag string) string {
		return "<" + tag + ">" + citeproc.Placeholder + "</" + tag + ">"
	}
	return &citeproc.Format{
		Name:   FormatName,
		Escape: Escape,
		Decorations: map[citeproc.Decoration]string{
			citeproc.Italic:        tpl("italic"),
			citeproc.Oblique:       tpl("italic"),
			citeproc.NormalStyle:   "",
			citeproc.Bold:          tpl("bold"),
			citeproc.NormalWeight:  "",
			citeproc.SmallCaps:     tpl("sc"),
			citeproc.NormalVariant: "",
			citeproc.Underline:     tpl("underline"),
			citeproc.NoDecoration:  "",
			citeproc.Superscript:   tpl("sup"),
			citeproc.Subscript:     tpl("sub"),
			citeproc.Baseline:      "",
		},
		LeftMargin: func(s string) string {
			return "<label>" + s + "</label>"
		},
		RightInline: func(s string) string {
			return `<mixed-citation publication-type="` + TypePlaceholder + `">` + s + "</mixed-citation>"
		},
		BibliographyEntry: RenderEntry,
		Names: func(base citeproc.NameRenderer) citeproc.NameRenderer {
			return Names{Base: base}
		},
		Wrap: WrapVariable,
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Escape escapes character data.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes a double-quoted attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
