package citeproc

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/matsen/jats/internal/csl"
)

// Decoration is an inline formatting feature, keyed the way CSL names them.
type Decoration string

const (
	Italic        Decoration = "@font-style/italic"
	Oblique       Decoration = "@font-style/oblique"
	NormalStyle   Decoration = "@font-style/normal"
	Bold          Decoration = "@font-weight/bold"
	NormalWeight  Decoration = "@font-weight/normal"
	SmallCaps     Decoration = "@font-variant/small-caps"
	NormalVariant Decoration = "@font-variant/normal"
	Underline     Decoration = "@text-decoration/underline"
	NoDecoration  Decoration = "@text-decoration/none"
	Superscript   Decoration = "@vertical-align/sup"
	Subscript     Decoration = "@vertical-align/sub"
	Baseline      Decoration = "@vertical-align/baseline"
)

// Placeholder is replaced by the decorated text in decoration templates.
const Placeholder = "%%STRING%%"

// Format is a named output format. Decoration templates contain Placeholder;
// an empty template suppresses wrapping.
type Format struct {
	Name        string
	Escape      func(string) string
	Decorations map[Decoration]string

	// LeftMargin and RightInline wrap the two halves of a bibliography entry
	// in styles that align the second field.
	LeftMargin  func(string) string
	RightInline func(string) string

	// BibliographyEntry wraps one fully formatted entry.
	BibliographyEntry func(item *csl.Item, text string) string

	// Names decorates the processor's name renderer. Optional.
	Names func(base NameRenderer) NameRenderer

	// Wrap post-processes formatted variables. Optional.
	Wrap VariableWrapper
}

// Area tells hooks whether output is for an in-text citation or the bibliography.
type Area int

const (
	AreaCitation Area = iota
	AreaBibliography
)

// VariableWrapper receives each rendered variable with the area it is
// rendered in and returns the text to emit.
type VariableWrapper func(area Area, variable, text string, item *csl.Item) string

func (f *Format) escape(s string) string {
	if f.Escape == nil {
		return s
	}
	return f.Escape(s)
}

// Decorate applies a decoration template to s.
func (f *Format) Decorate(d Decoration, s string) string {
	if s == "" {
		return ""
	}
	tpl := f.Decorations[d]
	if tpl == "" {
		return s
	}
	return strings.ReplaceAll(tpl, Placeholder, s)
}

func (f *Format) leftMargin(s string) string {
	if f.LeftMargin == nil {
		return s
	}
	return f.LeftMargin(s)
}

func (f *Format) rightInline(s string) string {
	if f.RightInline == nil {
		return s
	}
	return f.RightInline(s)
}

func (f *Format) entry(item *csl.Item, s string) string {
	if f.BibliographyEntry == nil {
		return s
	}
	return f.BibliographyEntry(item, s)
}

// Registry holds output formats shared across processors. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	formats map[string]*Format
}

// NewRegistry returns a registry holding the built-in "text" and "html" formats.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]*Format)}
	r.formats["text"] = textFormat()
	r.formats["html"] = htmlFormat()
	return r
}

// Ensure registers the format built by build unless one with the same name
// already exists, and returns the registered format.
func (r *Registry) Ensure(name string, build func() *Format) *Format {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.formats[name]; ok {
		return f
	}
	f := build()
	f.Name = name
	r.formats[name] = f
	return f
}

// Has reports whether a format is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.formats[name]
	return ok
}

// Lookup returns a registered format.
func (r *Registry) Lookup(name string) (*Format, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.formats[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return f, nil
}

func textFormat() *Format {
	return &Format{
		Name:        "text",
		Decorations: map[Decoration]string{},
		LeftMargin:  func(s string) string { return s + ". " },
	}
}

func htmlFormat() *Format {
	return &Format{
		Name:   "html",
		Escape: html.EscapeString,
		Decorations: map[Decoration]string{
			Italic:      "<i>" + Placeholder + "</i>",
			Oblique:     "<em>" + Placeholder + "</em>",
			Bold:        "<b>" + Placeholder + "</b>",
			SmallCaps:   `<span style="font-variant:small-caps;">` + Placeholder + "</span>",
			Underline:   `<span style="text-decoration:underline;">` + Placeholder + "</span>",
			Superscript: "<sup>" + Placeholder + "</sup>",
			Subscript:   "<sub>" + Placeholder + "</sub>",
		},
		LeftMargin:  func(s string) string { return `<div class="csl-left-margin">` + s + "</div>" },
		RightInline: func(s string) string { return `<div class="csl-right-inline">` + s + "</div>" },
		BibliographyEntry: func(_ *csl.Item, s string) string {
			return `<div class="csl-entry">` + s + "</div>"
		},
	}
}
